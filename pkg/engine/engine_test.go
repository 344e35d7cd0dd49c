package engine

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/trustsum/pkg/bigram"
	"github.com/sanonone/trustsum/pkg/cache"
	"github.com/sanonone/trustsum/pkg/dataset"
	"github.com/sanonone/trustsum/pkg/summary"
)

const article = `Heavy rain flooded the river valley on Monday. Rescue teams evacuated
families from the river valley while heavy rain kept falling. Officials said the
river valley flood was the worst in decades, and rescue teams worked through the night.`

func newEngine(t *testing.T, mutate func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	eng, err := New(opts)
	require.NoError(t, err)
	return eng
}

func TestSummarize(t *testing.T) {
	eng := newEngine(t, nil)
	res, err := eng.Summarize(context.Background(), &dataset.Document{Name: "flood.json", Texts: []string{article}})
	require.NoError(t, err)

	assert.Equal(t, "flood.json", res.Name)
	assert.Positive(t, res.Diagnostics.Nodes)
	assert.Len(t, res.InversePageRank, res.Diagnostics.Nodes)
	assert.Len(t, res.TrustRank, res.Diagnostics.Nodes)
	assert.Len(t, res.Seeds, DefaultParams().TrustRankBiasAmount)
	assert.InDelta(t, 1.0, res.Diagnostics.InversePageRank.Sum, 1e-4)
	assert.InDelta(t, 1.0, res.Diagnostics.TrustRank.Sum, 1e-4)
	assert.LessOrEqual(t, res.Diagnostics.FilteredNodes, res.Diagnostics.Nodes)
	assert.Nil(t, res.Validation)

	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, res.Candidates[0].Path[0], res.Root)
	assert.Equal(t, summary.Texts(res.Candidates), res.Summaries)
	for _, c := range res.Candidates {
		assert.LessOrEqual(t, len(c.Path), DefaultParams().MaxSummarizeLength)
		assert.Len(t, strings.Fields(c.Text), len(c.Path)+1)
		assert.Equal(t, res.Root, c.Path[0])
	}
	for _, stage := range []string{StagePreprocess, StageBuild, StageInverse, StageTrust, StageFilter, StageGenerate} {
		assert.Contains(t, res.Diagnostics.StageMillis, stage)
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	eng := newEngine(t, nil)
	doc := &dataset.Document{Name: "d", Texts: []string{article}}
	a, err := eng.Summarize(context.Background(), doc)
	require.NoError(t, err)
	b, err := eng.Summarize(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, a.Summaries, b.Summaries)
	assert.Equal(t, a.TrustRank, b.TrustRank)
	assert.Equal(t, a.FilteredGraph, b.FilteredGraph)
}

func TestSummarize_Validation(t *testing.T) {
	eng := newEngine(t, nil)
	res, err := eng.Summarize(context.Background(), &dataset.Document{
		Name:      "flood.json",
		Texts:     []string{article},
		Reference: "heavy rain flooded river valley rescue teams evacuated families",
	})
	require.NoError(t, err)

	require.Len(t, res.Validation, len(res.Summaries))
	for i := 1; i < len(res.Validation); i++ {
		assert.GreaterOrEqual(t, res.Validation[i-1].RougeL.FMeasure, res.Validation[i].RougeL.FMeasure)
	}
	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, res.Validation[0], best)
	assert.Contains(t, res.Diagnostics.StageMillis, StageValidate)
}

func TestSummarize_ThresholdAboveEveryScore(t *testing.T) {
	eng := newEngine(t, func(o *Options) { o.Params.TrustRankFilterThreshold = 0.99 })
	_, err := eng.Summarize(context.Background(), &dataset.Document{Name: "d", Texts: []string{article}})
	assert.ErrorIs(t, err, bigram.ErrEmptyFilteredGraph)
	assert.Equal(t, "empty_filtered_graph", ErrorKind(err))
}

func TestSummarize_InsufficientData(t *testing.T) {
	eng := newEngine(t, nil)
	_, err := eng.Summarize(context.Background(), &dataset.Document{Name: "d", Texts: []string{"the flood", "and"}})
	assert.ErrorIs(t, err, bigram.ErrInsufficientData)
	assert.Equal(t, "insufficient_data", ErrorKind(err))
}

func TestSummarize_LengthOneYieldsRootOnly(t *testing.T) {
	eng := newEngine(t, func(o *Options) { o.Params.MaxSummarizeLength = 1 })
	res, err := eng.Summarize(context.Background(), &dataset.Document{Name: "d", Texts: []string{article}})
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, res.Root, res.Summaries[0])
}

func TestSummarize_LibraryRanking(t *testing.T) {
	custom := newEngine(t, nil)
	lib := newEngine(t, func(o *Options) { o.Params.UseLibraryRanking = true })
	doc := &dataset.Document{Name: "d", Texts: []string{article}}

	a, err := custom.Summarize(context.Background(), doc)
	require.NoError(t, err)
	b, err := lib.Summarize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, a.Diagnostics.Nodes, b.Diagnostics.Nodes)
	assert.InDelta(t, 1.0, b.Diagnostics.InversePageRank.Sum, 1e-9)
}

func TestSummarize_Canceled(t *testing.T) {
	eng := newEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Summarize(ctx, &dataset.Document{Name: "d", Texts: []string{article}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize_UsesCache(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	eng := newEngine(t, func(o *Options) { o.Cache = c })
	doc := &dataset.Document{Name: "d", Texts: []string{article}}

	first, err := eng.Summarize(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, first.Diagnostics.CacheHit)

	second, err := eng.Summarize(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, second.Diagnostics.CacheHit)
	assert.NotContains(t, second.Diagnostics.StageMillis, StagePreprocess)
	assert.Equal(t, first.Graph, second.Graph)
	assert.Equal(t, first.Summaries, second.Summaries)
}

func TestRank(t *testing.T) {
	eng := newEngine(t, nil)
	r, err := eng.Rank(context.Background(), &dataset.Document{Name: "d", Texts: []string{article}})
	require.NoError(t, err)
	assert.Equal(t, r.Graph.NumNodes(), r.Trust.Len())
	assert.Equal(t, r.Inverse.Max().Node, r.Seeds[0])
}

func TestBuildGraph_SequencesStayApart(t *testing.T) {
	g, err := BuildGraph([][]string{{"a", "b"}, {"b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumNodes())
	assert.Zero(t, g.NumEdges())
}

func TestNew_InvalidParams(t *testing.T) {
	opts := DefaultOptions()
	opts.Params.Damping = 0
	opts.Params.MaxSummarizeLength = 0
	_, err := New(opts)
	require.Error(t, err)
	assert.ErrorContains(t, err, "damping")
	assert.ErrorContains(t, err, "max_summarize_length")
}

func TestParamsValidate_RejectsNaN(t *testing.T) {
	for name, mutate := range map[string]func(*Params){
		"damping":                    func(p *Params) { p.Damping = math.NaN() },
		"calculation_threshold":      func(p *Params) { p.CalculationThreshold = math.NaN() },
		"trustrank_filter_threshold": func(p *Params) { p.TrustRankFilterThreshold = math.NaN() },
	} {
		p := DefaultParams()
		mutate(&p)
		assert.ErrorContains(t, p.Validate(), name)
	}

	p := DefaultParams()
	p.TrustRankFilterThreshold = math.Inf(1)
	assert.ErrorContains(t, p.Validate(), "trustrank_filter_threshold")
}

func TestWithParams(t *testing.T) {
	eng := newEngine(t, nil)
	p := eng.Options().Params
	p.TrustRankBiasAmount = 2

	other, err := eng.WithParams(p)
	require.NoError(t, err)
	assert.Equal(t, 2, other.Options().Params.TrustRankBiasAmount)
	assert.Equal(t, DefaultParams().TrustRankBiasAmount, eng.Options().Params.TrustRankBiasAmount)

	p.Damping = 2
	_, err = eng.WithParams(p)
	assert.Error(t, err)
}

func TestParams_TrustIterationsDefault(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, p.MaxCalculationIteration, p.trustParams().MaxIterations)
	p.MaxTrustRankIteration = 7
	assert.Equal(t, 7, p.trustParams().MaxIterations)
	assert.Equal(t, p.MaxCalculationIteration, p.inverseParams().MaxIterations)
}
