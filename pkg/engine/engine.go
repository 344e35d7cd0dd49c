// Package engine provides the high-level interface of the summarizer.
//
// It chains preprocessing, bigram graph construction, Inverse PageRank,
// TrustRank, trust filtering, BFS candidate generation and ROUGE validation
// into a single call, with an optional on-disk cache for built graphs.
//
// Basic usage:
//
//	eng, err := engine.New(engine.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := eng.Summarize(ctx, &dataset.Document{Name: "doc", Texts: texts})
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sanonone/trustsum/pkg/bigram"
	"github.com/sanonone/trustsum/pkg/cache"
	"github.com/sanonone/trustsum/pkg/dataset"
	"github.com/sanonone/trustsum/pkg/metrics"
	"github.com/sanonone/trustsum/pkg/rank"
	"github.com/sanonone/trustsum/pkg/rouge"
	"github.com/sanonone/trustsum/pkg/summary"
	"github.com/sanonone/trustsum/pkg/textanalyzer"
)

// Pipeline stage names, used as metric labels and Diagnostics.StageMillis keys.
const (
	StagePreprocess = "preprocess"
	StageBuild      = "build"
	StageInverse    = "inverse_pagerank"
	StageTrust      = "trustrank"
	StageFilter     = "filter"
	StageGenerate   = "generate"
	StageValidate   = "validate"
)

// Options configures an Engine.
type Options struct {
	Params     Params
	Preprocess textanalyzer.Options

	// Cache stores built graphs keyed by the raw texts and Preprocess.
	// Nil disables caching.
	Cache *cache.Cache

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the reference parameters, English preprocessing and
// no cache.
func DefaultOptions() Options {
	return Options{
		Params:     DefaultParams(),
		Preprocess: textanalyzer.DefaultOptions(),
	}
}

// Engine runs the summarization pipeline. It holds no per-document state and
// is safe for concurrent use.
type Engine struct {
	opts     Options
	analyzer textanalyzer.Analyzer
	log      *slog.Logger
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		opts:     opts,
		analyzer: textanalyzer.New(opts.Preprocess),
		log:      logger,
	}, nil
}

// Options returns the configuration of e.
func (e *Engine) Options() Options { return e.opts }

// WithParams returns a copy of e using p. The cache and preprocessing are shared.
func (e *Engine) WithParams(p Params) (*Engine, error) {
	opts := e.opts
	opts.Params = p
	opts.Logger = e.log
	return New(opts)
}

type run struct {
	e    *Engine
	ctx  context.Context
	diag *Diagnostics
}

// stage times fn and records it. It refuses to start once ctx is done.
func (r *run) stage(name string, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	r.diag.StageMillis[name] = float64(elapsed.Microseconds()) / 1000
	return err
}

// Summarize runs the full pipeline on doc. Validation runs only when
// doc.Reference is not empty. Cancellation is checked between stages.
func (e *Engine) Summarize(ctx context.Context, doc *dataset.Document) (*Result, error) {
	res, err := e.summarize(ctx, doc)
	metrics.DocumentsTotal.WithLabelValues(ErrorKind(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", doc.Name, err)
	}
	return res, nil
}

// Ranking is a document graph with both score vectors.
type Ranking struct {
	Graph   *bigram.Graph
	Inverse *rank.ScoreMap
	Seeds   []string
	Trust   *rank.ScoreMap
}

// Rank builds doc's graph and computes Inverse PageRank, the seeds and
// TrustRank, stopping before the filter.
func (e *Engine) Rank(ctx context.Context, doc *dataset.Document) (*Ranking, error) {
	r := &run{e: e, ctx: ctx, diag: &Diagnostics{StageMillis: make(map[string]float64)}}
	return e.rank(r, doc)
}

func (e *Engine) rank(r *run, doc *dataset.Document) (*Ranking, error) {
	p := e.opts.Params
	g, err := e.graph(r, doc)
	if err != nil {
		return nil, err
	}
	r.diag.Nodes = g.NumNodes()
	r.diag.Edges = g.NumEdges()
	metrics.GraphNodes.Observe(float64(g.NumNodes()))

	var inverse *rank.ScoreMap
	err = r.stage(StageInverse, func() error {
		var err error
		if p.UseLibraryRanking {
			inverse, err = rank.LibraryInversePageRank(g, p.inverseParams())
		} else {
			inverse, err = rank.InversePageRank(g, p.inverseParams())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	e.observeRank(doc.Name, StageInverse, inverse)
	r.diag.InversePageRank = rankDiagnostics(inverse)

	seeds, err := rank.Seeds(inverse, p.TrustRankBiasAmount)
	if err != nil {
		return nil, err
	}

	var trust *rank.ScoreMap
	err = r.stage(StageTrust, func() error {
		var err error
		trust, err = rank.TrustRank(g, seeds, p.trustParams())
		return err
	})
	if err != nil {
		return nil, err
	}
	e.observeRank(doc.Name, StageTrust, trust)
	r.diag.TrustRank = rankDiagnostics(trust)

	return &Ranking{Graph: g, Inverse: inverse, Seeds: seeds, Trust: trust}, nil
}

func (e *Engine) summarize(ctx context.Context, doc *dataset.Document) (*Result, error) {
	res := &Result{
		Name:        doc.Name,
		Diagnostics: Diagnostics{StageMillis: make(map[string]float64)},
	}
	r := &run{e: e, ctx: ctx, diag: &res.Diagnostics}
	p := e.opts.Params

	ranking, err := e.rank(r, doc)
	if err != nil {
		return nil, err
	}
	g, trust := ranking.Graph, ranking.Trust
	seeds := ranking.Seeds
	res.Graph = g.Triples()
	res.InversePageRank = ranking.Inverse.Sorted()
	res.TrustRank = trust.Sorted()
	res.Seeds = seeds

	var filtered *bigram.Graph
	err = r.stage(StageFilter, func() error {
		var err error
		filtered, err = bigram.Filter(g, trust, p.TrustRankFilterThreshold)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.FilteredGraph = filtered.Triples()
	res.Diagnostics.FilteredNodes = filtered.NumNodes()
	res.Diagnostics.FilteredEdges = filtered.NumEdges()

	err = r.stage(StageGenerate, func() error {
		var err error
		res.Candidates, err = summary.Generate(filtered, trust, seeds, p.summaryOptions())
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Summaries = summary.Texts(res.Candidates)
	if len(res.Candidates) > 0 {
		res.Root = res.Candidates[0].Path[0]
	}
	metrics.Candidates.Observe(float64(len(res.Candidates)))

	if doc.Reference != "" {
		err = r.stage(StageValidate, func() error {
			res.Validation = rouge.Validate(res.Summaries, doc.Reference)
			rouge.SortByRougeL(res.Validation)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	e.log.Debug("[ENGINE] Document summarized",
		"doc", doc.Name,
		"nodes", res.Diagnostics.Nodes,
		"filtered_nodes", res.Diagnostics.FilteredNodes,
		"candidates", len(res.Candidates))
	return res, nil
}

// Graph preprocesses doc and builds its bigram graph, consulting the cache.
func (e *Engine) Graph(ctx context.Context, doc *dataset.Document) (*bigram.Graph, error) {
	r := &run{e: e, ctx: ctx, diag: &Diagnostics{StageMillis: make(map[string]float64)}}
	return e.graph(r, doc)
}

func (e *Engine) graph(r *run, doc *dataset.Document) (*bigram.Graph, error) {
	var key string
	if e.opts.Cache != nil {
		key = e.cacheKey(doc)
		if g, ok := e.lookup(doc.Name, key); ok {
			r.diag.CacheHit = true
			return g, nil
		}
	}

	var sequences [][]string
	err := r.stage(StagePreprocess, func() error {
		sequences = make([][]string, 0, len(doc.Texts))
		for _, text := range doc.Texts {
			sequences = append(sequences, e.analyzer.Analyze(text))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var g *bigram.Graph
	err = r.stage(StageBuild, func() error {
		var err error
		g, err = BuildGraph(sequences)
		return err
	})
	if err != nil {
		return nil, err
	}

	if e.opts.Cache != nil {
		if err := e.opts.Cache.Put(key, cache.NewEntry(g)); err != nil {
			e.log.Warn("[ENGINE] Failed to write cache entry", "doc", doc.Name, "error", err)
		}
	}
	return g, nil
}

// BuildGraph builds one graph from independent token sequences. No transition
// crosses a sequence boundary.
func BuildGraph(sequences [][]string) (*bigram.Graph, error) {
	b := bigram.NewBuilder()
	for i, tokens := range sequences {
		if err := b.Add(tokens); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return b.Graph()
}

func (e *Engine) lookup(name, key string) (*bigram.Graph, bool) {
	entry, ok, err := e.opts.Cache.Get(key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		e.log.Warn("[ENGINE] Ignoring unreadable cache entry", "doc", name, "error", err)
		return nil, false
	case !ok:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	g, err := entry.Graph()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		e.log.Warn("[ENGINE] Ignoring invalid cached graph", "doc", name, "error", err)
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return g, true
}

func (e *Engine) cacheKey(doc *dataset.Document) string {
	parts := make([]string, 0, len(doc.Texts)+1)
	parts = append(parts, fmt.Sprintf("%+v", e.opts.Preprocess))
	parts = append(parts, doc.Texts...)
	return cache.Key(parts...)
}

func (e *Engine) observeRank(doc, algorithm string, s *rank.ScoreMap) {
	metrics.RankIterations.WithLabelValues(algorithm).Observe(float64(s.Iterations))
	if !s.Converged {
		metrics.RankNotConverged.WithLabelValues(algorithm).Inc()
		e.log.Warn("[ENGINE] Ranking stopped at the iteration cap",
			"doc", doc,
			"algorithm", algorithm,
			"iterations", s.Iterations,
			"delta", s.Delta)
	}
}
