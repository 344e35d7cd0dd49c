package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinKey(key []string) string {
	return strings.Join(key, ".")
}

// CheckName rejects names that do not denote a file directly inside the
// dataset directory, such as "../x.txt", "/etc/passwd" or "sub/a.json".
func CheckName(name string) error {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ListFiles returns the sorted names of the supported files directly inside
// dir. When include is non-empty only those names are returned, each checked
// with CheckName and required to exist; names in exclude are skipped.
func ListFiles(dir string, include, exclude []string) ([]string, error) {
	if len(include) > 0 {
		for _, name := range include {
			if err := CheckName(name); err != nil {
				return nil, err
			}
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("dataset file %q: %w", name, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%w: %q is a directory", ErrInvalidName, name)
			}
		}
		return slices.DeleteFunc(slices.Clone(include), func(name string) bool {
			return slices.Contains(exclude, name)
		}), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !slices.Contains(SupportedExtensions, ext) {
			continue
		}
		if slices.Contains(exclude, e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// LoadReferences reads a JSON object mapping document file names to their
// reference summaries.
func LoadReferences(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]string)
	if err := json.Unmarshal(content, &refs); err != nil {
		return nil, fmt.Errorf("failed to parse references %s: %w", path, err)
	}
	return refs, nil
}
