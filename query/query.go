// Package query answers a question from retrieved index context.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/llm"
)

// DefaultTemplate injects the retrieved context and the question.
const DefaultTemplate = `Context information is below.
---------------------
{{.context}}
---------------------
Given the context information and not prior knowledge, answer the query.
Query: {{.question}}
Answer: `

// Retriever finds the chunks relevant to a question.
type Retriever interface {
	Query(ctx context.Context, question string, n int) ([]linerag.RagDocument, error)
}

type Engine struct {
	retriever Retriever
	completer llm.Completer
	prompt    prompts.PromptTemplate
	topK      int
	separator string
}

type Option func(*Engine)

func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithTemplate replaces the prompt. It must use {{.context}} and {{.question}}.
func WithTemplate(tmpl string) Option {
	return func(e *Engine) {
		e.prompt = prompts.NewPromptTemplate(tmpl, []string{"context", "question"})
	}
}

// WithSeparator wraps every excerpt in <separator> tags.
func WithSeparator(tag string) Option {
	return func(e *Engine) {
		e.separator = tag
	}
}

func New(r Retriever, c llm.Completer, opts ...Option) *Engine {
	e := &Engine{
		retriever: r,
		completer: c,
		prompt:    prompts.NewPromptTemplate(DefaultTemplate, []string{"context", "question"}),
		topK:      3,
		separator: "document",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prompt renders the template for question and the given excerpts.
func (e *Engine) Prompt(question string, docs []linerag.RagDocument) (string, error) {
	pre := fmt.Sprintf("<%v>\n", e.separator)
	post := fmt.Sprintf("</%v>\n", e.separator)
	var excerpts strings.Builder
	for _, d := range docs {
		excerpts.WriteString(pre)
		excerpts.WriteString(d.Content + "\n")
		excerpts.WriteString(post)
	}
	return e.prompt.Format(map[string]any{
		"context":  strings.TrimSuffix(excerpts.String(), "\n"),
		"question": question,
	})
}

// Answer retrieves context for question and asks the completer.
func (e *Engine) Answer(ctx context.Context, question string) (*linerag.Response, error) {
	log := linerag.Logger
	log.Info("Question received", "question", question)

	docs, err := e.retriever.Query(ctx, question, e.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	for _, d := range docs {
		log.Debug("Found", "id", d.ID, "similarity", d.Similarity, "source", d.Source)
	}

	prompt, err := e.Prompt(question, docs)
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	answer, err := e.completer.Complete(ctx, llm.User(prompt))
	if err != nil {
		return nil, err
	}
	log.Info("Answer received", "length", len(answer))
	return &linerag.Response{
		Answer:    answer,
		Documents: docs,
	}, nil
}
