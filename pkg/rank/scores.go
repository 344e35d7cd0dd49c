package rank

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/floats"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// NodeScore pairs a node label with its score. It encodes to JSON as a
// 2-element array, matching the reference output files.
type NodeScore struct {
	Node  string
	Score float64

	id int
}

func (ns NodeScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{ns.Node, ns.Score})
}

func (ns *NodeScore) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("node score must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &ns.Node); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &ns.Score)
}

// byScoreDesc orders by descending score, then ascending node ID.
func byScoreDesc(a, b NodeScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.id < b.id
}

// ScoreMap holds one score per node of the graph it was computed on, along
// with the solver diagnostics.
type ScoreMap struct {
	g      *bigram.Graph
	scores []float64
	order  *btree.BTreeG[NodeScore]

	// Iterations is the number of solver iterations that ran.
	Iterations int
	// Delta is the L1 distance between the last two iterations.
	Delta float64
	// Converged is false when the iteration cap was hit first. The scores are
	// still the best available estimate.
	Converged bool
}

func newScoreMap(g *bigram.Graph, sol solution) *ScoreMap {
	s := &ScoreMap{
		g:          g,
		scores:     sol.scores,
		Iterations: sol.iterations,
		Delta:      sol.delta,
		Converged:  sol.converged,
	}
	s.order = btree.NewBTreeG[NodeScore](byScoreDesc)
	for id, v := range s.scores {
		s.order.Set(NodeScore{Node: g.Label(id), Score: v, id: id})
	}
	return s
}

// Score returns the score of a node label, 0 for unknown labels.
func (s *ScoreMap) Score(label string) float64 {
	id, ok := s.g.ID(label)
	if !ok {
		return 0
	}
	return s.scores[id]
}

// At returns the score of node id.
func (s *ScoreMap) At(id int) float64 { return s.scores[id] }

// Len returns the number of scored nodes.
func (s *ScoreMap) Len() int { return len(s.scores) }

// Sum returns the total mass, 1 within the solver threshold.
func (s *ScoreMap) Sum() float64 { return floats.Sum(s.scores) }

// Max returns the best node and its score.
func (s *ScoreMap) Max() NodeScore {
	best, _ := s.order.Min()
	return best
}

// Sorted lists every node by descending score, ties in first-encountered order.
func (s *ScoreMap) Sorted() []NodeScore {
	return s.Top(s.order.Len())
}

// Top lists the k best nodes. k larger than the node count is clamped.
func (s *ScoreMap) Top(k int) []NodeScore {
	k = min(max(k, 0), s.order.Len())
	out := make([]NodeScore, 0, k)
	s.order.Scan(func(ns NodeScore) bool {
		if len(out) == k {
			return false
		}
		out = append(out, ns)
		return true
	})
	return out
}

// Map copies the scores into a label-keyed map.
func (s *ScoreMap) Map() map[string]float64 {
	m := make(map[string]float64, len(s.scores))
	for id, v := range s.scores {
		m[s.g.Label(id)] = v
	}
	return m
}
