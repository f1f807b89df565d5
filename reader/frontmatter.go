package reader

import (
	"bytes"

	"gopkg.in/yaml.v2"
)

// Metadata is the YAML front matter of a markdown document.
type Metadata struct {
	Title  string
	Author string `yaml:"author"`
	Tags   []string
	Date   string
}

var frontMatterDelim = []byte("---")

// SplitFrontMatter separates a leading "---" delimited YAML block from the body.
// Sources without front matter return nil metadata and the full source.
func SplitFrontMatter(source []byte) (*Metadata, []byte, error) {
	trimmed := bytes.TrimPrefix(source, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return nil, source, nil
	}
	rest := trimmed[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, source, nil
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	var header, body []byte
	switch {
	case bytes.HasPrefix(rest, frontMatterDelim):
		header, body = nil, rest[len(frontMatterDelim):]
	case end >= 0:
		header, body = rest[:end+1], rest[end+1+len(frontMatterDelim):]
	default:
		return nil, source, nil
	}

	meta := &Metadata{}
	if err := yaml.Unmarshal(header, meta); err != nil {
		return nil, source, err
	}
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}
