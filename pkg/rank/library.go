package rank

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// LibraryInversePageRank is the library-backed alternative to InversePageRank.
// It hands the transposed, weighted graph to gonum's PageRank, which uses its
// own convergence criterion (2-norm), so scores are close to but not
// bit-identical with the custom solver. The result is renormalized to sum to 1.
// Self-loops are dropped, as in the custom solver.
func LibraryInversePageRank(g *bigram.Graph, p Params) (*ScoreMap, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	wg := simple.NewWeightedDirectedGraph(0, 0)
	for id := 0; id < n; id++ {
		wg.AddNode(simple.Node(id))
	}
	for from := 0; from < n; from++ {
		for _, e := range g.Out(from) {
			if e.To == from {
				continue
			}
			wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e.To), simple.Node(from), float64(e.Weight)))
		}
	}

	ranks := network.PageRank(wg, p.Damping, p.Threshold)
	scores := make([]float64, n)
	for id := range scores {
		scores[id] = ranks[int64(id)]
	}
	if sum := floats.Sum(scores); sum > 0 {
		floats.Scale(1/sum, scores)
	}

	return newScoreMap(g, solution{scores: scores, converged: true}), nil
}
