package textanalyzer

import "strings"

// Whole-word English contractions that suffix rules get wrong.
var englishContractions = map[string][]string{
	"can't":   {"can", "not"},
	"won't":   {"will", "not"},
	"shan't":  {"shall", "not"},
	"ain't":   {"is", "not"},
	"let's":   {"let", "us"},
	"y'all":   {"you", "all"},
	"o'clock": {"oclock"},
}

var englishSuffixes = []struct {
	suffix string
	word   string
}{
	{"n't", "not"},
	{"'re", "are"},
	{"'ve", "have"},
	{"'ll", "will"},
	{"'d", "would"},
	{"'m", "am"},
	{"'s", ""}, // possessive or "is": ambiguous, dropped
}

// expandContraction rewrites one token into its expanded words. Tokens without
// an apostrophe come back unchanged; leftover apostrophes are removed.
func expandContraction(tok, language string) []string {
	if !strings.Contains(tok, "'") {
		return []string{tok}
	}
	if language == "" || language == "english" {
		lower := strings.ToLower(tok)
		if words, ok := englishContractions[lower]; ok {
			return words
		}
		for _, s := range englishSuffixes {
			if strings.HasSuffix(lower, s.suffix) && len(lower) > len(s.suffix) {
				stem := strings.ReplaceAll(tok[:len(tok)-len(s.suffix)], "'", "")
				if s.word == "" {
					return []string{stem}
				}
				return []string{stem, s.word}
			}
		}
	}
	// Italian elisions ("dell'anno") split into article and word.
	if language == "italian" {
		if head, tail, ok := strings.Cut(tok, "'"); ok && head != "" && tail != "" {
			return []string{head, strings.ReplaceAll(tail, "'", "")}
		}
	}
	return []string{strings.ReplaceAll(tok, "'", "")}
}
