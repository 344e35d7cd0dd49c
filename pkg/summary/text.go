package summary

import (
	"fmt"
	"strings"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// Reconstruct turns a path of overlapping bigrams into text: both words of the
// first bigram, then the second word of each following one.
func Reconstruct(path []string) (string, error) {
	if len(path) == 0 {
		return "", nil
	}
	first, second, ok := bigram.Split(path[0])
	if !ok {
		return "", fmt.Errorf("%w: %q", bigram.ErrInvalidToken, path[0])
	}

	var b strings.Builder
	b.WriteString(first)
	b.WriteString(bigram.Separator)
	b.WriteString(second)

	prev := second
	for _, label := range path[1:] {
		w1, w2, ok := bigram.Split(label)
		if !ok {
			return "", fmt.Errorf("%w: %q", bigram.ErrInvalidToken, label)
		}
		if w1 != prev {
			return "", fmt.Errorf("bigram %q does not continue %q", label, prev)
		}
		b.WriteString(bigram.Separator)
		b.WriteString(w2)
		prev = w2
	}
	return b.String(), nil
}

// Bigrams splits text back into its overlapping bigram labels.
func Bigrams(text string) []string {
	words := strings.Fields(text)
	if len(words) < 2 {
		return nil
	}
	out := make([]string, 0, len(words)-1)
	for i := 1; i < len(words); i++ {
		out = append(out, bigram.Label(words[i-1], words[i]))
	}
	return out
}
