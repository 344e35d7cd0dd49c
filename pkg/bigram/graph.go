// Package bigram builds weighted directed graphs of word bigrams.
//
// A node is a pair of adjacent words ("the cat"); an edge goes from bigram
// (w1, w2) to bigram (w2, w3) and its weight counts how many times that
// transition occurs in the source token stream. Nodes live in an arena and are
// addressed by integer IDs assigned in first-encountered order, which makes
// every enumeration over the graph deterministic.
package bigram

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Separator joins the two words of a bigram into its node label.
const Separator = " "

var (
	// ErrInsufficientData is returned when the input cannot form a single bigram.
	ErrInsufficientData = errors.New("insufficient data: at least 2 tokens are required to form a bigram")
	// ErrInvalidToken is returned for empty tokens or tokens containing whitespace.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptyFilteredGraph is returned when filtering removes every node.
	ErrEmptyFilteredGraph = errors.New("filtered graph is empty: threshold removed every node")
)

// Edge is an outgoing connection stored in a node's adjacency list.
type Edge struct {
	To     int
	Weight int
}

// Triple is the serialized form of an edge: (source, target, weight).
// It encodes to JSON as a 3-element array.
type Triple struct {
	Source string
	Target string
	Weight int
}

func (t Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.Source, t.Target, t.Weight})
}

func (t *Triple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("triple must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &t.Source); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &t.Target); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &t.Weight)
}

// Graph is an arena-indexed weighted directed graph of bigrams.
// It is not safe for concurrent mutation; once built it is only read.
type Graph struct {
	labels []string
	words  [][2]string
	index  map[string]int

	out [][]Edge
	// edgePos maps (from, to) to the position of the edge in out[from].
	edgePos map[[2]int]int
	edges   int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index:   make(map[string]int),
		edgePos: make(map[[2]int]int),
	}
}

// Label joins two words into a node label.
func Label(first, second string) string {
	return first + Separator + second
}

// Split returns the two words of a node label.
func Split(label string) (string, string, bool) {
	first, second, ok := strings.Cut(label, Separator)
	if !ok || first == "" || second == "" || strings.Contains(second, Separator) {
		return "", "", false
	}
	return first, second, true
}

func validToken(tok string) bool {
	if tok == "" {
		return false
	}
	return strings.IndexFunc(tok, unicode.IsSpace) < 0
}

// addNode returns the ID of the bigram, creating it on first sight.
func (g *Graph) addNode(first, second string) int {
	label := Label(first, second)
	if id, ok := g.index[label]; ok {
		return id
	}
	id := len(g.labels)
	g.labels = append(g.labels, label)
	g.words = append(g.words, [2]string{first, second})
	g.index[label] = id
	g.out = append(g.out, nil)
	return id
}

// addEdge increments the weight of from->to by w. Non-positive weights are ignored.
func (g *Graph) addEdge(from, to, w int) {
	if w <= 0 {
		return
	}
	key := [2]int{from, to}
	if pos, ok := g.edgePos[key]; ok {
		g.out[from][pos].Weight += w
		return
	}
	g.edgePos[key] = len(g.out[from])
	g.out[from] = append(g.out[from], Edge{To: to, Weight: w})
	g.edges++
}

// NumNodes returns the number of distinct bigrams.
func (g *Graph) NumNodes() int { return len(g.labels) }

// NumEdges returns the number of distinct transitions.
func (g *Graph) NumEdges() int { return g.edges }

// Label returns the label of node id.
func (g *Graph) Label(id int) string { return g.labels[id] }

// Labels returns node labels in ID order. The slice must not be modified.
func (g *Graph) Labels() []string { return g.labels }

// Words returns the two words of node id.
func (g *Graph) Words(id int) (string, string) {
	w := g.words[id]
	return w[0], w[1]
}

// ID looks up the node ID of a label.
func (g *Graph) ID(label string) (int, bool) {
	id, ok := g.index[label]
	return id, ok
}

// Out returns the outgoing edges of node id in insertion order.
// The slice must not be modified.
func (g *Graph) Out(id int) []Edge { return g.out[id] }

// Weight returns the weight of from->to, 0 when absent.
func (g *Graph) Weight(from, to int) int {
	pos, ok := g.edgePos[[2]int{from, to}]
	if !ok {
		return 0
	}
	return g.out[from][pos].Weight
}

// OutWeight sums the outgoing edge weights of node id.
func (g *Graph) OutWeight(id int) int {
	total := 0
	for _, e := range g.out[id] {
		total += e.Weight
	}
	return total
}

// TotalWeight sums every edge weight in the graph.
func (g *Graph) TotalWeight() int {
	total := 0
	for id := range g.out {
		total += g.OutWeight(id)
	}
	return total
}

// In derives the incoming edges of node id. Edge.To holds the source node.
func (g *Graph) In(id int) []Edge {
	var in []Edge
	for from, edges := range g.out {
		for _, e := range edges {
			if e.To == id {
				in = append(in, Edge{To: from, Weight: e.Weight})
			}
		}
	}
	return in
}

// Transpose returns a new graph with every edge reversed.
// Node IDs are preserved, so scores computed on the transpose index the same nodes.
func (g *Graph) Transpose() *Graph {
	t := NewGraph()
	for id := range g.labels {
		t.addNode(g.words[id][0], g.words[id][1])
	}
	for from, edges := range g.out {
		for _, e := range edges {
			t.addEdge(e.To, from, e.Weight)
		}
	}
	return t
}

// Triples lists every edge as (source, target, weight), ordered by source node
// ID and then by edge insertion order.
func (g *Graph) Triples() []Triple {
	triples := make([]Triple, 0, g.edges)
	for from, edges := range g.out {
		for _, e := range edges {
			triples = append(triples, Triple{
				Source: g.labels[from],
				Target: g.labels[e.To],
				Weight: e.Weight,
			})
		}
	}
	return triples
}

// FromTriples rebuilds a graph from serialized edges. See Restore.
func FromTriples(triples []Triple) (*Graph, error) {
	return Restore(nil, triples)
}

// Restore rebuilds a graph from its node labels and edges. Nodes listed in
// nodes are created first, in order, which keeps isolated bigrams and the
// original ID assignment; nodes only mentioned by triples follow in first
// appearance order. Malformed labels and triples whose source's second word
// differs from the target's first word are rejected.
func Restore(nodes []string, triples []Triple) (*Graph, error) {
	g := NewGraph()
	for _, label := range nodes {
		first, second, ok := Split(label)
		if !ok {
			return nil, fmt.Errorf("%w: node %q", ErrInvalidToken, label)
		}
		g.addNode(first, second)
	}
	for i, t := range triples {
		s1, s2, ok := Split(t.Source)
		if !ok {
			return nil, fmt.Errorf("triple %d: %w: source %q", i, ErrInvalidToken, t.Source)
		}
		t1, t2, ok := Split(t.Target)
		if !ok {
			return nil, fmt.Errorf("triple %d: %w: target %q", i, ErrInvalidToken, t.Target)
		}
		if s2 != t1 {
			return nil, fmt.Errorf("triple %d: %q does not overlap %q", i, t.Source, t.Target)
		}
		from := g.addNode(s1, s2)
		to := g.addNode(t1, t2)
		g.addEdge(from, to, t.Weight)
	}
	return g, nil
}
