// Package reader turns uploaded files into plain text chunks ready for embedding.
package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

// Metadata keys stored with every chunk.
const (
	MetaSource = "source"
	MetaTitle  = "title"
)

var ErrUnsupported = errors.New("unsupported document")

// Document is the extracted text of one file.
type Document struct {
	Path     string
	Text     string
	Metadata map[string]string
}

// Load extracts text from the file at path based on its extension.
func Load(path string) (*Document, error) {
	doc := &Document{
		Path: path,
		Metadata: map[string]string{
			MetaSource: filepath.Base(path),
		},
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := ReadPDF(path)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	case ".md", ".markdown":
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		meta, body, err := SplitFrontMatter(source)
		if err != nil {
			linerag.Logger.Error("Metadata extraction problem", "error", err, "file", path)
		}
		if meta != nil && meta.Title != "" {
			doc.Metadata[MetaTitle] = meta.Title
		}
		doc.Text = strings.Join(ParseMarkdown(body), "\n\n")
	default:
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(source) {
			return nil, fmt.Errorf("%w: %s is not text", ErrUnsupported, filepath.Base(path))
		}
		doc.Text = string(source)
	}
	return doc, nil
}

// LoadDir loads every regular file of dir, sorted by name.
// Files that are not text are skipped with a warning.
func LoadDir(dir string) ([]Document, error) {
	log := linerag.Logger
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		doc, err := Load(filepath.Join(dir, e.Name()))
		if errors.Is(err, ErrUnsupported) {
			log.Warn("Skipping document", "file", e.Name(), "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info("Loaded document", "file", e.Name(), "chars", len(doc.Text))
		docs = append(docs, *doc)
	}
	return docs, nil
}
