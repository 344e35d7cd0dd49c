// Package summary turns a filtered bigram graph into candidate summaries.
//
// A breadth-first tree is grown from the most trusted node; every root-to-leaf
// path of that tree is a chain of overlapping bigrams and therefore spells out
// a contiguous run of words.
package summary

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sanonone/trustsum/pkg/bigram"
)

var (
	// ErrNoRootAvailable is returned when the graph has no node to start from.
	ErrNoRootAvailable = errors.New("no root available: graph has no nodes")
	// ErrInvalidLength is returned for a maximum summary length below 1.
	ErrInvalidLength = errors.New("max summarize length must be >= 1")
)

// Tree is a BFS tree over a bigram graph. Tree nodes are graph node IDs; each
// graph node appears at most once.
type Tree struct {
	g        *bigram.Graph
	root     int
	children map[int][]int
	// leaves in BFS discovery order
	leaves []int
	parent map[int]int
}

// SelectRoot picks the node with the highest score. Ties go to the node that
// comes first in seeds; if no tied node is a seed, the first-encountered node
// wins.
func SelectRoot(g *bigram.Graph, scores bigram.Scorer, seeds []string) (string, error) {
	if g.NumNodes() == 0 {
		return "", ErrNoRootAvailable
	}

	best := []int{0}
	bestScore := scores.Score(g.Label(0))
	for id := 1; id < g.NumNodes(); id++ {
		s := scores.Score(g.Label(id))
		switch {
		case s > bestScore:
			best = append(best[:0], id)
			bestScore = s
		case s == bestScore:
			best = append(best, id)
		}
	}

	if len(best) > 1 {
		for _, seed := range seeds {
			id, ok := g.ID(seed)
			if ok && slices.Contains(best, id) {
				return seed, nil
			}
		}
	}
	return g.Label(best[0]), nil
}

// BuildTree grows a BFS tree from root, at most maxLength nodes deep (the root
// is at depth 1). Successors are explored by descending score, ties in edge
// insertion order. A node is marked visited when first discovered, which
// breaks cycles and diamonds.
func BuildTree(g *bigram.Graph, scores bigram.Scorer, root string, maxLength int) (*Tree, error) {
	if maxLength < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, maxLength)
	}
	rootID, ok := g.ID(root)
	if !ok {
		return nil, fmt.Errorf("%w: root %q not in graph", ErrNoRootAvailable, root)
	}

	t := &Tree{
		g:        g,
		root:     rootID,
		children: make(map[int][]int),
		parent:   map[int]int{rootID: -1},
	}

	type item struct {
		id    int
		depth int
	}
	visited := make([]bool, g.NumNodes())
	visited[rootID] = true
	queue := []item{{id: rootID, depth: 1}}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr.depth < maxLength {
			for _, next := range successors(g, scores, curr.id) {
				if visited[next] {
					continue
				}
				visited[next] = true
				t.children[curr.id] = append(t.children[curr.id], next)
				t.parent[next] = curr.id
				queue = append(queue, item{id: next, depth: curr.depth + 1})
			}
		}
		if len(t.children[curr.id]) == 0 {
			t.leaves = append(t.leaves, curr.id)
		}
	}
	return t, nil
}

func successors(g *bigram.Graph, scores bigram.Scorer, id int) []int {
	out := g.Out(id)
	next := make([]int, 0, len(out))
	for _, e := range out {
		next = append(next, e.To)
	}
	slices.SortStableFunc(next, func(a, b int) int {
		sa, sb := scores.Score(g.Label(a)), scores.Score(g.Label(b))
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return next
}

// Root returns the label of the root node.
func (t *Tree) Root() string { return t.g.Label(t.root) }

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int { return len(t.parent) }

// Children returns the labels of the children of label, in exploration order.
func (t *Tree) Children(label string) []string {
	id, ok := t.g.ID(label)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t.children[id]))
	for _, c := range t.children[id] {
		out = append(out, t.g.Label(c))
	}
	return out
}

// Paths returns every root-to-leaf path as a list of node labels, ordered by
// the BFS discovery order of the leaf.
func (t *Tree) Paths() [][]string {
	paths := make([][]string, 0, len(t.leaves))
	for _, leaf := range t.leaves {
		var rev []string
		for id := leaf; id >= 0; id = t.parent[id] {
			rev = append(rev, t.g.Label(id))
		}
		slices.Reverse(rev)
		paths = append(paths, rev)
	}
	return paths
}
