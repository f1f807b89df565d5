package reader

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

// ParseMarkdown returns the text blocks of a markdown source in document order.
// Headings are kept with the paragraph that follows them.
func ParseMarkdown(source []byte) []string {
	log := linerag.Logger
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	blocks := make([]string, 0)
	heading := ""
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if heading != "" {
			s = heading + "\n" + s
			heading = ""
		}
		blocks = append(blocks, s)
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		log.Debug("Node", "kind", n.Kind().String())
		switch n := n.(type) {
		case *ast.Heading:
			if heading != "" {
				blocks = append(blocks, heading)
			}
			heading = strings.TrimSpace(string(n.Text(source)))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			add(linesText(n.Lines(), source))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			add(linesText(n.Lines(), source))
			return ast.WalkSkipChildren, nil
		case *ast.List:
			add(extractTextFromList(n, source))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			add(extractTextFromParagraph(n, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if heading != "" {
		blocks = append(blocks, heading)
	}
	return blocks
}

func linesText(lines *text.Segments, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// extractTextFromParagraph flattens inline nodes. Links keep their label.
func extractTextFromParagraph(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			buf.Write(t.Text(source))
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			buf.Write(t.URL(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractTextFromList(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.ListItem:
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString("- ")
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			buf.Write(t.Text(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	lines := strings.Split(buf.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
