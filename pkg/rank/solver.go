// Package rank scores bigram graph nodes with Inverse PageRank and TrustRank.
//
// Both algorithms run on the same power-iteration solver and differ only in the
// direction of the graph and in the teleport distribution: Inverse PageRank
// walks the transposed graph and teleports uniformly, TrustRank walks the
// forward graph and teleports only to a seed set.
package rank

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// DefaultDamping is the probability of following an edge instead of teleporting.
const DefaultDamping = 0.85

var (
	// ErrEmptyGraph is returned when ranking is requested on a graph with no nodes.
	ErrEmptyGraph = errors.New("cannot rank an empty graph")
	// ErrInvalidSeedCount is returned when TrustRank has no usable seed.
	ErrInvalidSeedCount = errors.New("trustrank requires at least one seed node")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid ranking parameters")
)

// Params controls the iterative solver. It is passed by value and never mutated.
type Params struct {
	Damping       float64
	Threshold     float64 // stop when the L1 delta between iterations drops below this
	MaxIterations int
}

// DefaultParams mirrors the reference configuration.
func DefaultParams() Params {
	return Params{
		Damping:       DefaultDamping,
		Threshold:     1e-5,
		MaxIterations: 200,
	}
}

func (p Params) Validate() error {
	// negated comparisons so NaN fails too
	if !(p.Damping > 0 && p.Damping < 1) {
		return fmt.Errorf("%w: damping must be in (0, 1), got %g", ErrInvalidParams, p.Damping)
	}
	if !(p.Threshold > 0) {
		return fmt.Errorf("%w: threshold must be > 0, got %g", ErrInvalidParams, p.Threshold)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be >= 1, got %d", ErrInvalidParams, p.MaxIterations)
	}
	return nil
}

type solution struct {
	scores     []float64
	iterations int
	delta      float64
	converged  bool
}

// solve runs power iteration over g:
//
//	next(n) = (1-d)*teleport(n) + d*(sum_{m->n} s(m)*w(m,n)/out(m) + dangling/N)
//
// teleport must sum to 1. Self-loops are skipped: they neither carry mass nor
// count toward out(m), so a node whose only edge is a self-loop is dangling.
// The mass of dangling nodes is spread uniformly over all N nodes, which keeps
// the total at 1.
func solve(g *bigram.Graph, teleport, initial []float64, p Params) solution {
	n := g.NumNodes()
	outWeight := make([]float64, n)
	for from := 0; from < n; from++ {
		for _, e := range g.Out(from) {
			if e.To != from {
				outWeight[from] += float64(e.Weight)
			}
		}
	}

	scores := make([]float64, n)
	copy(scores, initial)
	next := make([]float64, n)
	nf := float64(n)
	d := p.Damping

	sol := solution{}
	for iter := 1; iter <= p.MaxIterations; iter++ {
		dangling := 0.0
		for i, w := range outWeight {
			if w == 0 {
				dangling += scores[i]
			}
		}

		spread := d * dangling / nf
		for i := range next {
			next[i] = (1-d)*teleport[i] + spread
		}
		for from := 0; from < n; from++ {
			if outWeight[from] == 0 {
				continue
			}
			share := d * scores[from] / outWeight[from]
			for _, e := range g.Out(from) {
				if e.To == from {
					continue
				}
				next[e.To] += share * float64(e.Weight)
			}
		}

		sol.delta = floats.Distance(next, scores, 1)
		sol.iterations = iter
		scores, next = next, scores
		if sol.delta < p.Threshold {
			sol.converged = true
			break
		}
	}

	sol.scores = scores
	return sol
}
