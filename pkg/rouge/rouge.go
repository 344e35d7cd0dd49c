// Package rouge scores candidate summaries against a reference text with
// ROUGE-1, ROUGE-2 and ROUGE-L.
//
// Texts are compared on case-folded whitespace tokens. Every metric yields a
// precision, a recall and an F-measure in [0, 1].
package rouge

import (
	"slices"
	"strings"
)

// Score is one metric's result. Field names match the validation files.
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FMeasure  float64 `json:"f-measure"`
}

// Result holds the three metrics for one candidate.
type Result struct {
	Text   string `json:"text"`
	Rouge1 Score  `json:"rouge1"`
	Rouge2 Score  `json:"rouge2"`
	RougeL Score  `json:"rougeL"`
}

func tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func newScore(overlap, candidateLen, referenceLen int) Score {
	var s Score
	if candidateLen > 0 {
		s.Precision = float64(overlap) / float64(candidateLen)
	}
	if referenceLen > 0 {
		s.Recall = float64(overlap) / float64(referenceLen)
	}
	if s.Precision+s.Recall > 0 {
		s.FMeasure = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ngrams(toks []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(toks); i++ {
		counts[strings.Join(toks[i:i+n], " ")]++
	}
	return counts
}

// N computes ROUGE-N with clipped n-gram counts.
func N(candidate, reference string, n int) Score {
	c, r := tokens(candidate), tokens(reference)
	cg, rg := ngrams(c, n), ngrams(r, n)

	overlap := 0
	for gram, cc := range cg {
		overlap += min(cc, rg[gram])
	}
	return newScore(overlap, max(len(c)-n+1, 0), max(len(r)-n+1, 0))
}

// L computes ROUGE-L from the longest common subsequence of tokens.
func L(candidate, reference string) Score {
	c, r := tokens(candidate), tokens(reference)
	return newScore(lcs(c, r), len(c), len(r))
}

func lcs(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Validate scores every candidate against reference, keeping candidate order.
func Validate(candidates []string, reference string) []Result {
	out := make([]Result, len(candidates))
	for i, c := range candidates {
		out[i] = Result{
			Text:   c,
			Rouge1: N(c, reference, 1),
			Rouge2: N(c, reference, 2),
			RougeL: L(c, reference),
		}
	}
	return out
}

// SortByRougeL orders results by descending ROUGE-L F-measure. Equal scores
// keep their relative order.
func SortByRougeL(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.RougeL.FMeasure > b.RougeL.FMeasure:
			return -1
		case a.RougeL.FMeasure < b.RougeL.FMeasure:
			return 1
		}
		return 0
	})
}

// Best returns the result with the highest ROUGE-L F-measure, the earliest one
// on ties.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.RougeL.FMeasure > best.RougeL.FMeasure {
			best = r
		}
	}
	return best, true
}
