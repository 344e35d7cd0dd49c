package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DocxLoader extracts paragraphs from .docx files. The whole body is one text;
// paragraphs are separated by blank lines.
type DocxLoader struct{}

func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

func (l *DocxLoader) Load(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("invalid docx: word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return nil, err
	}
	return &Document{
		Name:  filepath.Base(path),
		Texts: []string{strings.Join(paragraphs, "\n\n")},
	}, nil
}

// docxParagraphs streams WordprocessingML and returns the text of each
// non-blank <w:p>, concatenating its <w:t> runs.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		paragraphs []string
		para       strings.Builder
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab", "br":
				para.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				para.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(para.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
			}
		}
	}
	return paragraphs, nil
}
