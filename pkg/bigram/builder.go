package bigram

import "fmt"

// Builder accumulates one or more token sequences into a single graph.
// Transitions never cross the boundary between two sequences.
type Builder struct {
	g       *Graph
	bigrams int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: NewGraph()}
}

// Add slides a window of two over tokens to produce bigrams, then a window of
// two over the bigrams to produce transitions, incrementing edge weights.
// Sequences shorter than two tokens contribute nothing.
func (b *Builder) Add(tokens []string) error {
	for i, tok := range tokens {
		if !validToken(tok) {
			return fmt.Errorf("%w at position %d: %q", ErrInvalidToken, i, tok)
		}
	}
	if len(tokens) < 2 {
		return nil
	}

	prev := b.g.addNode(tokens[0], tokens[1])
	b.bigrams++
	for i := 2; i < len(tokens); i++ {
		curr := b.g.addNode(tokens[i-1], tokens[i])
		b.bigrams++
		b.g.addEdge(prev, curr, 1)
		prev = curr
	}
	return nil
}

// Bigrams returns how many bigrams (with repetitions) were seen so far.
func (b *Builder) Bigrams() int { return b.bigrams }

// Graph returns the accumulated graph. It fails with ErrInsufficientData when
// no sequence was long enough to form a bigram.
func (b *Builder) Graph() (*Graph, error) {
	if b.bigrams == 0 {
		return nil, ErrInsufficientData
	}
	return b.g, nil
}

// Build converts one ordered token sequence into a bigram graph.
func Build(tokens []string) (*Graph, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(tokens))
	}
	b := NewBuilder()
	if err := b.Add(tokens); err != nil {
		return nil, err
	}
	return b.Graph()
}
