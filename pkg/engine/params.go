package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/sanonone/trustsum/pkg/rank"
	"github.com/sanonone/trustsum/pkg/summary"
)

// Params are the numeric knobs of one summarization run. They are copied into
// every call and never read from global state.
type Params struct {
	// Damping is the solver damping factor shared by both rankings.
	Damping float64 `yaml:"damping" json:"damping"`
	// CalculationThreshold stops the solver once the L1 delta drops below it.
	CalculationThreshold float64 `yaml:"calculation_threshold" json:"calculation_threshold"`
	// MaxCalculationIteration caps Inverse PageRank iterations.
	MaxCalculationIteration int `yaml:"max_calculation_iteration" json:"max_calculation_iteration"`
	// MaxTrustRankIteration caps TrustRank iterations; 0 means MaxCalculationIteration.
	MaxTrustRankIteration int `yaml:"max_trustrank_iteration" json:"max_trustrank_iteration"`
	// TrustRankBiasAmount is K, the size of the seed set.
	TrustRankBiasAmount int `yaml:"trustrank_bias_amount" json:"trustrank_bias_amount"`
	// TrustRankFilterThreshold is τ: nodes with a lower trust are pruned.
	TrustRankFilterThreshold float64 `yaml:"trustrank_filter_threshold" json:"trustrank_filter_threshold"`
	// MaxSummarizeLength is L, the BFS depth and path length cap.
	MaxSummarizeLength int `yaml:"max_summarize_length" json:"max_summarize_length"`
	// SummaryRoots is how many top-trust nodes root their own tree.
	SummaryRoots int `yaml:"summary_roots" json:"summary_roots"`
	// UseLibraryRanking computes Inverse PageRank with gonum instead of the
	// built-in solver.
	UseLibraryRanking bool `yaml:"use_library_ranking" json:"use_library_ranking"`
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		Damping:                  rank.DefaultDamping,
		CalculationThreshold:     1e-5,
		MaxCalculationIteration:  200,
		TrustRankBiasAmount:      5,
		TrustRankFilterThreshold: 1e-3,
		MaxSummarizeLength:       20,
		SummaryRoots:             1,
	}
}

// Validate reports every invalid field at once.
func (p Params) Validate() error {
	var errs []error
	// negated comparisons so NaN fails too
	if !(p.Damping > 0 && p.Damping < 1) {
		errs = append(errs, fmt.Errorf("damping must be in (0, 1), got %g", p.Damping))
	}
	if !(p.CalculationThreshold > 0) {
		errs = append(errs, fmt.Errorf("calculation_threshold must be > 0, got %g", p.CalculationThreshold))
	}
	if p.MaxCalculationIteration < 1 {
		errs = append(errs, fmt.Errorf("max_calculation_iteration must be >= 1, got %d", p.MaxCalculationIteration))
	}
	if p.MaxTrustRankIteration < 0 {
		errs = append(errs, fmt.Errorf("max_trustrank_iteration must be >= 0, got %d", p.MaxTrustRankIteration))
	}
	if p.TrustRankBiasAmount < 1 {
		errs = append(errs, fmt.Errorf("trustrank_bias_amount must be >= 1, got %d", p.TrustRankBiasAmount))
	}
	if !(p.TrustRankFilterThreshold >= 0) || math.IsInf(p.TrustRankFilterThreshold, 1) {
		errs = append(errs, fmt.Errorf("trustrank_filter_threshold must be a finite value >= 0, got %g", p.TrustRankFilterThreshold))
	}
	if p.MaxSummarizeLength < 1 {
		errs = append(errs, fmt.Errorf("max_summarize_length must be >= 1, got %d", p.MaxSummarizeLength))
	}
	if p.SummaryRoots < 0 {
		errs = append(errs, fmt.Errorf("summary_roots must be >= 0, got %d", p.SummaryRoots))
	}
	return errors.Join(errs...)
}

func (p Params) inverseParams() rank.Params {
	return rank.Params{
		Damping:       p.Damping,
		Threshold:     p.CalculationThreshold,
		MaxIterations: p.MaxCalculationIteration,
	}
}

func (p Params) trustParams() rank.Params {
	rp := p.inverseParams()
	if p.MaxTrustRankIteration > 0 {
		rp.MaxIterations = p.MaxTrustRankIteration
	}
	return rp
}

func (p Params) summaryOptions() summary.Options {
	return summary.Options{
		MaxLength: p.MaxSummarizeLength,
		Roots:     p.SummaryRoots,
	}
}
