package summary

import (
	"fmt"
	"slices"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// Options controls candidate generation.
type Options struct {
	// MaxLength caps both the tree depth and the number of bigrams per path.
	MaxLength int
	// Roots is how many of the best surviving nodes each grow their own tree.
	// Values below 1 mean 1.
	Roots int
}

// Candidate is one extractive summary.
type Candidate struct {
	Text string   `json:"text"`
	Path []string `json:"path"`
	// Score is the summed score of the path's nodes. It is informational;
	// candidates keep BFS discovery order.
	Score float64 `json:"score"`
}

// Generate grows BFS trees over the filtered graph and returns the
// reconstructed text of every root-to-leaf path. The first tree is rooted at
// SelectRoot's choice; with Options.Roots > 1 the next best surviving nodes
// root further trees. A text produced by more than one tree is kept once, at
// its first position.
func Generate(g *bigram.Graph, scores bigram.Scorer, seeds []string, opts Options) ([]Candidate, error) {
	roots, err := pickRoots(g, scores, seeds, opts.Roots)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	seen := make(map[string]struct{})
	for _, root := range roots {
		tree, err := BuildTree(g, scores, root, opts.MaxLength)
		if err != nil {
			return nil, err
		}
		for _, path := range tree.Paths() {
			text, err := Reconstruct(path)
			if err != nil {
				return nil, fmt.Errorf("reconstruct path from %q: %w", root, err)
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}

			total := 0.0
			for _, label := range path {
				total += scores.Score(label)
			}
			out = append(out, Candidate{Text: text, Path: path, Score: total})
		}
	}
	return out, nil
}

// Texts extracts the text of each candidate.
func Texts(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Text
	}
	return out
}

// pickRoots returns SelectRoot's choice followed by the next best surviving
// nodes, n in total at most.
func pickRoots(g *bigram.Graph, scores bigram.Scorer, seeds []string, n int) ([]string, error) {
	first, err := SelectRoot(g, scores, seeds)
	if err != nil {
		return nil, err
	}
	if n <= 1 {
		return []string{first}, nil
	}

	rest := make([]string, 0, g.NumNodes()-1)
	for _, label := range g.Labels() {
		if label != first {
			rest = append(rest, label)
		}
	}
	slices.SortStableFunc(rest, func(a, b string) int {
		sa, sb := scores.Score(a), scores.Score(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})

	roots := []string{first}
	for _, label := range rest {
		if len(roots) == n {
			break
		}
		roots = append(roots, label)
	}
	return roots, nil
}
