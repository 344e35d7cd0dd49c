package dataset

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJSONLoader_KeyPathThroughArrays(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "news.json", `{
		"articles": [
			{"title": "One", "full_text": "first article text"},
			{"title": "Two", "full_text": "second article text"},
			{"title": "Three"}
		]
	}`)

	doc, err := NewJSONLoader([]string{"articles", "full_text"}).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "news.json", doc.Name)
	assert.Equal(t, []string{"first article text", "second article text"}, doc.Texts)
}

func TestJSONLoader_EmptyKeyCollectsEveryString(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"b": "beta", "a": ["alpha", 3, {"c": "gamma"}]}`)

	doc, err := NewJSONLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma", "beta"}, doc.Texts)
}

func TestJSONLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"text": "hello"}`)
	_, err := NewJSONLoader([]string{"full_text"}).Load(path)
	assert.ErrorContains(t, err, `key "full_text" not found`)

	bad := writeFile(t, dir, "bad.json", `{`)
	_, err = NewJSONLoader(nil).Load(bad)
	assert.Error(t, err)
}

func TestAutoLoader(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", "plain words here")
	js := writeFile(t, dir, "data.json", `{"full_text": "json words"}`)
	other := writeFile(t, dir, "image.png", "x")

	l := NewAutoLoader([]string{"full_text"})

	doc, err := l.Load(txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"plain words here"}, doc.Texts)

	doc, err = l.Load(js)
	require.NoError(t, err)
	assert.Equal(t, []string{"json words"}, doc.Texts)

	_, err = l.Load(other)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDocxLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	doc, err := NewAutoLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world\n\nSecond paragraph"}, doc.Texts)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "c.txt", "skip.png", ".hidden.json"} {
		writeFile(t, dir, name, "{}")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	names, err := ListFiles(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "c.txt"}, names)

	names, err = ListFiles(dir, nil, []string{"b.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "c.txt"}, names)

	names, err = ListFiles(dir, []string{"c.txt", "a.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt", "a.json"}, names)

	_, err = ListFiles(dir, []string{"missing.json"}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListFiles_RejectsNamesOutsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dataset")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, root, "secret.txt", "whole team")
	writeFile(t, filepath.Join(dir, "sub"), "a.json", "{}")

	for _, name := range []string{"../secret.txt", filepath.Join(root, "secret.txt"), "sub/a.json", "..", ""} {
		_, err := ListFiles(dir, []string{name}, nil)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	_, err := ListFiles(dir, []string{"sub"}, nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.NoError(t, CheckName("a.json"))
}

func TestLoadReferences(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "validation.json", `{"a.json": "the reference summary"}`)

	refs, err := LoadReferences(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.json": "the reference summary"}, refs)

	_, err = LoadReferences(filepath.Join(dir, "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
