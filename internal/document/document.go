// Package document reads resume text from plain text, PDF and DOCX files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupported is returned for file types ReadText cannot read.
var ErrUnsupported = errors.New("unsupported document type")

var (
	docxParagraph = regexp.MustCompile(`</w:p>`)
	docxTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// ReadText returns the text of the file at path, chosen by extension.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text, err := Extract(strings.ToLower(filepath.Ext(path)), data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Extract returns the text of data for the given extension (".txt", ".md",
// ".pdf" or ".docx").
func Extract(ext string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch ext {
	case ".txt", ".md", "":
		text = string(data)
	case ".pdf":
		text, err = pdfText(bytes.NewReader(data), int64(len(data)))
	case ".docx":
		text, err = docxText(bytes.NewReader(data), int64(len(data)))
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), nil
}

func pdfText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(r io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(r, size)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	return stripDocxMarkup(doc.Editable().GetContent()), nil
}

// stripDocxMarkup turns document.xml into text with one line per paragraph.
func stripDocxMarkup(content string) string {
	content = docxParagraph.ReplaceAllString(content, "\n")
	content = docxTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return blankLines.ReplaceAllString(content, "\n\n")
}
