// Package textanalyzer cleans raw text into the word tokens the bigram graph is
// built from: Unicode normalization, URL stripping, case folding, contraction
// expansion, tokenization and stop-word removal.
package textanalyzer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Analyzer turns a text into a slice of tokens.
type Analyzer interface {
	Analyze(text string) []string
}

// Options selects the cleaning steps. The zero value only tokenizes.
type Options struct {
	// Language picks the stop-word list and contraction table: "english" or "italian".
	Language           string `yaml:"language" json:"language"`
	Lowercase          bool   `yaml:"lowercase" json:"lowercase"`
	ExpandContractions bool   `yaml:"expand_contractions" json:"expand_contractions"`
	RemoveStopWords    bool   `yaml:"remove_stopwords" json:"remove_stopwords"`
	StripURLs          bool   `yaml:"strip_urls" json:"strip_urls"`
}

// DefaultOptions enables every step for English text.
func DefaultOptions() Options {
	return Options{
		Language:           "english",
		Lowercase:          true,
		ExpandContractions: true,
		RemoveStopWords:    true,
		StripURLs:          true,
	}
}

// tokenizerRegex matches words made of letters or digits, keeping inner
// apostrophes so contractions survive until they are expanded.
var tokenizerRegex = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

var urlRegex = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// Tokenize splits text into words. Punctuation is dropped.
func Tokenize(text string) []string {
	return tokenizerRegex.FindAllString(text, -1)
}

// StripURLs removes http(s) and www links.
func StripURLs(text string) string {
	return urlRegex.ReplaceAllString(text, " ")
}

// Preprocessor is the Analyzer configured by Options.
type Preprocessor struct {
	opts Options
}

// New returns a Preprocessor for opts.
func New(opts Options) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// Options returns the configuration of p.
func (p *Preprocessor) Options() Options { return p.opts }

// Analyze implements Analyzer.
func (p *Preprocessor) Analyze(text string) []string {
	text = norm.NFKC.String(text)
	if p.opts.StripURLs {
		text = StripURLs(text)
	}
	if p.opts.Lowercase {
		text = strings.ToLower(text)
	}

	raw := Tokenize(text)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ReplaceAll(tok, "’", "'")
		if p.opts.ExpandContractions {
			tokens = append(tokens, expandContraction(tok, p.opts.Language)...)
			continue
		}
		tokens = append(tokens, strings.ReplaceAll(tok, "'", ""))
	}

	if p.opts.RemoveStopWords {
		tokens = FilterStopWords(tokens, p.opts.Language)
	}
	return tokens
}
