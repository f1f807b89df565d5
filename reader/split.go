package reader

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter cuts document text into chunks.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	minSize      int
}

type SplitterOption func(*Splitter)

func WithChunkSize(size int) SplitterOption {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

func WithChunkOverlap(overlap int) SplitterOption {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithMinSize sets the length neighbouring chunks are merged up to.
func WithMinSize(size int) SplitterOption {
	return func(s *Splitter) {
		s.minSize = size
	}
}

func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		chunkSize:    1024,
		chunkOverlap: 20,
		minSize:      300,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 4
	}
	return s
}

// Split returns the non-empty chunks of text.
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return CompressChunks(chunks, s.minSize), nil
}

// CompressChunks combines consecutive chunks until the combined length
// exceeds size. The last group is emitted as is.
func CompressChunks(chunks []string, size int) []string {
	if size <= 0 {
		return chunks
	}
	result := []string{}
	combined := ""
	for i, chunk := range chunks {
		if combined == "" {
			combined = chunk
		} else {
			combined = combined + "\n" + chunk
		}
		if len(combined) > size || i == len(chunks)-1 {
			result = append(result, combined)
			combined = ""
		}
	}
	return result
}
