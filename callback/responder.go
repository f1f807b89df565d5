package callback

import (
	"context"
	"fmt"
	"os"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/llm"
	"github.com/hsmtkk/turbo-octo-pancake/localstore"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/query"
)

// Responder produces the reply text for a user message.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// Echo replies with the user's own text.
type Echo struct{}

func (Echo) Respond(_ context.Context, text string) (string, error) {
	return text, nil
}

// Completion replies with a raw completion of the user's text.
type Completion struct {
	Completer llm.Completer
}

func (c Completion) Respond(ctx context.Context, text string) (string, error) {
	return c.Completer.Complete(ctx, llm.User(text))
}

// IndexSource loads the index a question is answered from.
type IndexSource interface {
	LoadIndex(ctx context.Context) (query.Retriever, error)
}

// RAG reconstructs the index and answers with retrieved context.
type RAG struct {
	Source    IndexSource
	Completer llm.Completer
	Options   []query.Option
}

func (r RAG) Respond(ctx context.Context, text string) (string, error) {
	idx, err := r.Source.LoadIndex(ctx)
	if err != nil {
		return "", fmt.Errorf("load index: %w", err)
	}
	resp, err := query.New(idx, r.Completer, r.Options...).Answer(ctx, text)
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// BucketIndex downloads the artifact set from the vector bucket on every load.
type BucketIndex struct {
	Store    *objectstore.Store
	Bucket   string
	Embedder embedding.Embedder
	TempRoot string
}

func (b BucketIndex) LoadIndex(ctx context.Context) (query.Retriever, error) {
	tmp, err := os.MkdirTemp(b.TempRoot, "index-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	linerag.Logger.Info("Downloading index", "bucket", b.Bucket)
	if err := b.Store.DownloadAll(ctx, b.Bucket, localstore.ArtifactNames(), tmp); err != nil {
		return nil, err
	}
	return localstore.Load(ctx, tmp, b.Embedder)
}
