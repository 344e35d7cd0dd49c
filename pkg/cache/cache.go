// Package cache stores preprocessed bigram graphs on disk, keyed by the
// identity of their input, so repeated runs over the same documents skip
// tokenization and graph construction.
//
// Each entry is one file holding a single checksummed frame whose payload is
// msgpack-encoded.
package cache

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sanonone/trustsum/pkg/bigram"
)

// Entry is the cached form of a bigram graph.
type Entry struct {
	Nodes   []string `msgpack:"n"`
	Sources []string `msgpack:"s"`
	Targets []string `msgpack:"t"`
	Weights []int    `msgpack:"w"`
}

// NewEntry snapshots g.
func NewEntry(g *bigram.Graph) Entry {
	triples := g.Triples()
	e := Entry{
		Nodes:   append([]string(nil), g.Labels()...),
		Sources: make([]string, len(triples)),
		Targets: make([]string, len(triples)),
		Weights: make([]int, len(triples)),
	}
	for i, t := range triples {
		e.Sources[i], e.Targets[i], e.Weights[i] = t.Source, t.Target, t.Weight
	}
	return e
}

// Graph rebuilds the cached graph.
func (e Entry) Graph() (*bigram.Graph, error) {
	if len(e.Sources) != len(e.Targets) || len(e.Sources) != len(e.Weights) {
		return nil, fmt.Errorf("corrupted cache entry: column lengths differ")
	}
	triples := make([]bigram.Triple, len(e.Sources))
	for i := range triples {
		triples[i] = bigram.Triple{Source: e.Sources[i], Target: e.Targets[i], Weight: e.Weights[i]}
	}
	return bigram.Restore(e.Nodes, triples)
}

// Key derives a cache key from the parts identifying an input, typically the
// preprocessing options followed by the raw texts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a directory of entries. It is safe for concurrent use by multiple
// goroutines as long as they do not write the same key at once; writes go
// through a temporary file and an atomic rename.
type Cache struct {
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".tsc")
}

// Get returns the entry stored under key. A missing entry is (nil, false, nil);
// an unreadable one is reported as an error and should be treated as a miss.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	payload, err := readFrame(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	var e Entry
	if err := msgpack.Unmarshal(payload, &e); err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	return &e, true, nil
}

// Put stores e under key, replacing any previous entry.
func (c *Cache) Put(key string, e Entry) error {
	payload, err := msgpack.Marshal(&e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := writeFrame(w, payload); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// Delete removes the entry under key, if any.
func (c *Cache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
