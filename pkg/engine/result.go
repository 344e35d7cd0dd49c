package engine

import (
	"errors"

	"github.com/sanonone/trustsum/pkg/bigram"
	"github.com/sanonone/trustsum/pkg/rank"
	"github.com/sanonone/trustsum/pkg/rouge"
	"github.com/sanonone/trustsum/pkg/summary"
)

// Result holds every artifact of one document's run.
type Result struct {
	Name            string              `json:"name"`
	Graph           []bigram.Triple     `json:"graph"`
	FilteredGraph   []bigram.Triple     `json:"filtered_graph"`
	InversePageRank []rank.NodeScore    `json:"inverse_pagerank"`
	TrustRank       []rank.NodeScore    `json:"trustrank"`
	Seeds           []string            `json:"seeds"`
	Root            string              `json:"root"`
	Candidates      []summary.Candidate `json:"candidates"`
	Summaries       []string            `json:"summaries"`
	// Validation is nil when the document has no reference.
	Validation  []rouge.Result `json:"validation,omitempty"`
	Diagnostics Diagnostics    `json:"diagnostics"`
}

// Best returns the candidate with the highest ROUGE-L F-measure.
func (r *Result) Best() (rouge.Result, bool) {
	return rouge.Best(r.Validation)
}

// RankDiagnostics describes how one ranking ended.
type RankDiagnostics struct {
	Iterations int     `json:"iterations"`
	Delta      float64 `json:"delta"`
	Converged  bool    `json:"converged"`
	Sum        float64 `json:"sum"`
}

func rankDiagnostics(s *rank.ScoreMap) RankDiagnostics {
	return RankDiagnostics{
		Iterations: s.Iterations,
		Delta:      s.Delta,
		Converged:  s.Converged,
		Sum:        s.Sum(),
	}
}

// Diagnostics collects sizes, solver outcomes and stage timings.
type Diagnostics struct {
	Nodes           int                `json:"nodes"`
	Edges           int                `json:"edges"`
	FilteredNodes   int                `json:"filtered_nodes"`
	FilteredEdges   int                `json:"filtered_edges"`
	CacheHit        bool               `json:"cache_hit"`
	InversePageRank RankDiagnostics    `json:"inverse_pagerank"`
	TrustRank       RankDiagnostics    `json:"trustrank"`
	StageMillis     map[string]float64 `json:"stage_ms"`
}

// ErrorKind maps pipeline errors to a short label for metrics and reports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, bigram.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, rank.ErrEmptyGraph):
		return "empty_graph"
	case errors.Is(err, bigram.ErrEmptyFilteredGraph):
		return "empty_filtered_graph"
	case errors.Is(err, summary.ErrNoRootAvailable):
		return "no_root"
	default:
		return "error"
	}
}
