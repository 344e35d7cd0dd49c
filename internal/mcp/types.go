package mcp

import (
	"github.com/sanonone/trustsum/pkg/rank"
	"github.com/sanonone/trustsum/pkg/rouge"
)

// --- Tool Arguments ---

type SummarizeTextArgs struct {
	Text               string  `json:"text" jsonschema:"The text to summarize"`
	Reference          string  `json:"reference,omitempty" jsonschema:"Optional human summary; enables ROUGE validation of the candidates"`
	MaxSummarizeLength int     `json:"max_summarize_length,omitempty" jsonschema:"Maximum number of bigrams per summary"`
	BiasAmount         int     `json:"trustrank_bias_amount,omitempty" jsonschema:"Number of TrustRank seed bigrams"`
	FilterThreshold    float64 `json:"trustrank_filter_threshold,omitempty" jsonschema:"Bigrams with a lower TrustRank are pruned before generation"`
	Limit              int     `json:"limit,omitempty" jsonschema:"Max number of summaries returned (default 10)"`
}

type SummarizeTextResult struct {
	Root      string        `json:"root"`
	Summaries []string      `json:"summaries"`
	Total     int           `json:"total"`
	Best      *rouge.Result `json:"best,omitempty"`
}

type RankBigramsArgs struct {
	Text      string `json:"text" jsonschema:"The text whose bigrams are ranked"`
	Algorithm string `json:"algorithm,omitempty" jsonschema:"Either trustrank (default) or inverse_pagerank"`
	Top       int    `json:"top,omitempty" jsonschema:"Number of bigrams returned (default 10)"`
}

type RankBigramsResult struct {
	Algorithm  string           `json:"algorithm"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Seeds      []string         `json:"seeds"`
	Ranking    []rank.NodeScore `json:"ranking"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
}
