package rank

import (
	"fmt"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// InversePageRank computes PageRank over the transpose of g, so a node is
// rewarded by the bigrams that follow it rather than those preceding it.
// Scores start at 1/N and teleport uniformly.
func InversePageRank(g *bigram.Graph, p Params) (*ScoreMap, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	uniform := make([]float64, n)
	for i := range uniform {
		uniform[i] = 1 / float64(n)
	}
	sol := solve(g.Transpose(), uniform, uniform, p)
	return newScoreMap(g, sol), nil
}

// Seeds returns the labels of the k best nodes of s, best first, ties broken by
// first-encountered order. k is clamped to the number of nodes.
func Seeds(s *ScoreMap, k int) ([]string, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeedCount, k)
	}
	top := s.Top(k)
	seeds := make([]string, len(top))
	for i, ns := range top {
		seeds[i] = ns.Node
	}
	return seeds, nil
}

// TrustRank propagates trust along the forward graph from the seed set.
// Each seed starts with 1/K of the mass and teleportation only returns to
// seeds. Labels not present in g are ignored, duplicates count once.
func TrustRank(g *bigram.Graph, seeds []string, p Params) (*ScoreMap, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	seedIDs := make([]int, 0, len(seeds))
	seen := make(map[int]struct{}, len(seeds))
	for _, label := range seeds {
		id, ok := g.ID(label)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		seedIDs = append(seedIDs, id)
	}
	if len(seedIDs) == 0 {
		return nil, fmt.Errorf("%w: none of %d seeds found in graph", ErrInvalidSeedCount, len(seeds))
	}

	teleport := make([]float64, n)
	for _, id := range seedIDs {
		teleport[id] = 1 / float64(len(seedIDs))
	}
	sol := solve(g, teleport, teleport, p)
	return newScoreMap(g, sol), nil
}
