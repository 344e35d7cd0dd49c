// Package dataset reads input documents for summarization.
//
// A document may hold several independent texts (for example every
// "full_text" field of a JSON file); each text becomes its own token sequence
// in the bigram graph.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidName is returned for dataset file names outside the dataset directory.
	ErrInvalidName = errors.New("invalid dataset file name")
)

// Document is one unit of summarization.
type Document struct {
	Name  string   `json:"name"`
	Texts []string `json:"texts"`
	// Reference is the human summary used for validation, empty when unknown.
	Reference string `json:"reference,omitempty"`
}

// Loader reads the file at path into a Document.
type Loader interface {
	Load(path string) (*Document, error)
}

// TextLoader reads plain text and markdown files as a single text.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{
		Name:  filepath.Base(path),
		Texts: []string{string(content)},
	}, nil
}

// SupportedExtensions lists the extensions AutoLoader understands.
var SupportedExtensions = []string{".json", ".txt", ".md", ".markdown", ".pdf", ".docx"}

// AutoLoader picks a loader from the file extension.
type AutoLoader struct {
	jsonLoader Loader
	textLoader Loader
	pdfLoader  Loader
	docxLoader Loader
}

// NewAutoLoader returns an AutoLoader whose JSON loader extracts targetKey.
func NewAutoLoader(targetKey []string) *AutoLoader {
	return &AutoLoader{
		jsonLoader: NewJSONLoader(targetKey),
		textLoader: NewTextLoader(),
		pdfLoader:  NewPDFLoader(),
		docxLoader: NewDocxLoader(),
	}
}

func (l *AutoLoader) Load(path string) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return l.jsonLoader.Load(path)
	case ".txt", ".md", ".markdown":
		return l.textLoader.Load(path)
	case ".pdf":
		return l.pdfLoader.Load(path)
	case ".docx":
		return l.docxLoader.Load(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
