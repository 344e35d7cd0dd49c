// Package output writes the JSON artifacts of a summarization run:
//
//	<dir>/graph/graph_<name>.json
//	<dir>/graph/filtered_graph_<name>.json
//	<dir>/inverse_pagerank/inverse_pagerank_<name>.json
//	<dir>/trustrank/trustrank_<name>.json
//	<dir>/summary/summary_<name>.json
//	<dir>/validation/validation_<name>.json
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanonone/trustsum/pkg/engine"
)

// Artifact directories under the output root.
const (
	GraphDir      = "graph"
	InverseDir    = "inverse_pagerank"
	TrustDir      = "trustrank"
	SummaryDir    = "summary"
	ValidationDir = "validation"
)

// Writer stores artifacts under a root directory.
type Writer struct {
	dir string
	// Graph controls whether the unfiltered graph is written.
	Graph bool
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, graph bool) *Writer {
	return &Writer{dir: dir, Graph: graph}
}

// Dir returns the output root.
func (w *Writer) Dir() string { return w.dir }

// Path returns where an artifact of kind for document name is stored.
func (w *Writer) Path(kind, prefix, name string) string {
	return filepath.Join(w.dir, kind, prefix+"_"+Stem(name)+".json")
}

// Stem strips the extension of a document file name.
func Stem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// Write stores every artifact of res and returns the written paths.
func (w *Writer) Write(res *engine.Result) ([]string, error) {
	type artifact struct {
		kind, prefix string
		v            any
	}
	artifacts := []artifact{
		{GraphDir, "filtered_graph", res.FilteredGraph},
		{InverseDir, "inverse_pagerank", res.InversePageRank},
		{TrustDir, "trustrank", res.TrustRank},
		{SummaryDir, "summary", res.Summaries},
	}
	if w.Graph {
		artifacts = append([]artifact{{GraphDir, "graph", res.Graph}}, artifacts...)
	}
	if res.Validation != nil {
		artifacts = append(artifacts, artifact{ValidationDir, "validation", res.Validation})
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := w.Path(a.kind, a.prefix, res.Name)
		if err := WriteJSON(p, a.v); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
