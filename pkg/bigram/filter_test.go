package bigram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapScorer map[string]float64

func (m mapScorer) Score(label string) float64 { return m[label] }

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(strings.Fields("the cat sat on the mat"))
	require.NoError(t, err)
	return g
}

func TestFilter_KeepsNodesAtOrAboveThreshold(t *testing.T) {
	g := sampleGraph(t)
	scores := mapScorer{"the cat": 0.4, "cat sat": 0.3, "sat on": 0.05, "on the": 0.2, "the mat": 0.05}

	f, err := Filter(g, scores, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []string{"the cat", "cat sat", "on the"}, f.Labels())
	assert.Equal(t, []Triple{{Source: "the cat", Target: "cat sat", Weight: 1}}, f.Triples())
}

func TestFilter_ZeroThresholdKeepsEverything(t *testing.T) {
	g := sampleGraph(t)
	f, err := Filter(g, mapScorer{}, 0)
	require.NoError(t, err)
	assert.Equal(t, g.Labels(), f.Labels())
	assert.Equal(t, g.Triples(), f.Triples())
}

func TestFilter_Monotonic(t *testing.T) {
	g := sampleGraph(t)
	scores := mapScorer{"the cat": 0.4, "cat sat": 0.3, "sat on": 0.1, "on the": 0.15, "the mat": 0.05}

	prev := g.NumNodes()
	for _, tau := range []float64{0, 0.05, 0.1, 0.2, 0.35, 0.4} {
		f, err := Filter(g, scores, tau)
		require.NoError(t, err)
		assert.LessOrEqual(t, f.NumNodes(), prev, "tau=%g", tau)
		prev = f.NumNodes()
	}
}

func TestFilter_Empty(t *testing.T) {
	g := sampleGraph(t)
	_, err := Filter(g, mapScorer{"the cat": 0.4}, 0.5)
	assert.ErrorIs(t, err, ErrEmptyFilteredGraph)
}
