package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONLoader extracts texts from a JSON file by key path.
//
// TargetKey is walked one key at a time; arrays met along the way are walked
// element by element, so ["articles", "full_text"] collects the full_text of
// every article. Every string found at the end of the path becomes one text.
// An empty TargetKey collects every string in the file.
type JSONLoader struct {
	TargetKey []string
}

func NewJSONLoader(targetKey []string) *JSONLoader {
	return &JSONLoader{TargetKey: targetKey}
}

func (l *JSONLoader) Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root any
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	texts, err := Extract(root, l.TargetKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Name: filepath.Base(path), Texts: texts}, nil
}

// Extract collects the strings found under key in a decoded JSON value.
func Extract(v any, key []string) ([]string, error) {
	var out []string
	found := false
	var walk func(v any, depth int)
	walk = func(v any, depth int) {
		switch node := v.(type) {
		case []any:
			for _, item := range node {
				walk(item, depth)
			}
		case map[string]any:
			if depth == len(key) {
				for _, k := range sortedKeys(node) {
					walk(node[k], depth)
				}
				return
			}
			child, ok := node[key[depth]]
			if !ok {
				return
			}
			walk(child, depth+1)
		case string:
			if depth == len(key) {
				found = true
				if node != "" {
					out = append(out, node)
				}
			}
		}
	}
	walk(v, 0)

	if !found && len(key) > 0 {
		return nil, fmt.Errorf("key %q not found", joinKey(key))
	}
	return out, nil
}
