package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/trustsum/pkg/bigram"
	"github.com/sanonone/trustsum/pkg/engine"
	"github.com/sanonone/trustsum/pkg/rank"
	"github.com/sanonone/trustsum/pkg/rouge"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Name:            "doc_01.json",
		Graph:           []bigram.Triple{{Source: "a b", Target: "b c", Weight: 2}},
		FilteredGraph:   []bigram.Triple{},
		InversePageRank: []rank.NodeScore{{Node: "a b", Score: 0.6}, {Node: "b c", Score: 0.4}},
		TrustRank:       []rank.NodeScore{{Node: "b c", Score: 0.7}, {Node: "a b", Score: 0.3}},
		Summaries:       []string{"a b c"},
	}
}

func TestWriter_Layout(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, true)

	paths, err := w.Write(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "graph", "graph_doc_01.json"),
		filepath.Join(dir, "graph", "filtered_graph_doc_01.json"),
		filepath.Join(dir, "inverse_pagerank", "inverse_pagerank_doc_01.json"),
		filepath.Join(dir, "trustrank", "trustrank_doc_01.json"),
		filepath.Join(dir, "summary", "summary_doc_01.json"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.JSONEq(t, `[["a b","b c",2]]`, string(data))

	data, err = os.ReadFile(paths[3])
	require.NoError(t, err)
	assert.JSONEq(t, `[["b c",0.7],["a b",0.3]]`, string(data))
}

func TestWriter_SkipsGraphAndWritesValidation(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()
	res.Validation = rouge.Validate(res.Summaries, "a b c d")

	paths, err := NewWriter(dir, false).Write(res)
	require.NoError(t, err)
	assert.NotContains(t, paths, filepath.Join(dir, "graph", "graph_doc_01.json"))
	assert.Contains(t, paths, filepath.Join(dir, "validation", "validation_doc_01.json"))

	var got []rouge.Result
	data, err := os.ReadFile(filepath.Join(dir, "validation", "validation_doc_01.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, res.Validation, got)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "doc", Stem("doc.json"))
	assert.Equal(t, "doc", Stem("dir/doc.txt"))
	assert.Equal(t, "noext", Stem("noext"))
}
