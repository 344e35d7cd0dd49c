package bigram

// Scorer exposes a per-node score by label.
type Scorer interface {
	Score(label string) float64
}

// Filter keeps the nodes whose score is >= threshold and the edges whose both
// endpoints are kept. Surviving nodes keep their relative order, so the
// first-encountered order of the source graph carries over.
//
// Raising threshold never brings a removed node back.
func Filter(g *Graph, scores Scorer, threshold float64) (*Graph, error) {
	keep := make([]int, len(g.labels))
	f := NewGraph()
	for id := range g.labels {
		keep[id] = -1
		if scores.Score(g.labels[id]) >= threshold {
			keep[id] = f.addNode(g.words[id][0], g.words[id][1])
		}
	}
	if f.NumNodes() == 0 {
		return nil, ErrEmptyFilteredGraph
	}

	for from, edges := range g.out {
		if keep[from] < 0 {
			continue
		}
		for _, e := range edges {
			if keep[e.To] < 0 {
				continue
			}
			f.addEdge(keep[from], keep[e.To], e.Weight)
		}
	}
	return f, nil
}
