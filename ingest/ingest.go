// Package ingest turns uploaded documents into an index artifact set in the
// vector bucket.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/events"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/localstore"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
	"github.com/hsmtkk/turbo-octo-pancake/reader"
)

var ErrNoDocuments = errors.New("no readable documents")

// Result summarises one event.
type Result struct {
	Processed int
	Failed    int
}

type Pipeline struct {
	store        *objectstore.Store
	vectorBucket string
	embedder     embedding.Embedder
	splitter     *reader.Splitter
	tempRoot     string
}

type Option func(*Pipeline)

// WithTempRoot sets where scratch directories are created. Default os.TempDir().
func WithTempRoot(dir string) Option {
	return func(p *Pipeline) {
		p.tempRoot = dir
	}
}

func WithSplitter(s *reader.Splitter) Option {
	return func(p *Pipeline) {
		p.splitter = s
	}
}

func New(store *objectstore.Store, vectorBucket string, e embedding.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:        store,
		vectorBucket: vectorBucket,
		embedder:     e,
		splitter:     reader.NewSplitter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleEvent processes every record independently. A failing record does
// not stop the ones after it; all failures are returned joined.
func (p *Pipeline) HandleEvent(ctx context.Context, event events.S3Event) (Result, error) {
	log := linerag.Logger
	var res Result
	var errs []error
	for i, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key := objectstore.DecodeKey(record.S3.Object.Key)
		log.Info("Processing record", "index", i, "bucket", bucket, "key", key)
		if err := p.ProcessObject(ctx, bucket, key); err != nil {
			log.Error("Record failed", "index", i, "bucket", bucket, "key", key, "error", err)
			errs = append(errs, fmt.Errorf("s3://%s/%s: %w", bucket, key, err))
			res.Failed++
			continue
		}
		res.Processed++
	}
	return res, errors.Join(errs...)
}

// ProcessObject downloads one object into a scratch directory, indexes it and
// uploads the artifact set. The scratch directory is removed on every path.
func (p *Pipeline) ProcessObject(ctx context.Context, bucket, key string) error {
	tmp, err := os.MkdirTemp(p.tempRoot, "ingest-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	dataDir := filepath.Join(tmp, "data")
	if err := os.Mkdir(dataDir, 0o755); err != nil {
		return err
	}
	if _, err := p.store.Download(ctx, bucket, key, dataDir); err != nil {
		return err
	}
	_, err = p.IngestDir(ctx, dataDir, tmp)
	return err
}

// IngestDir indexes every document in dataDir, persists the artifacts under
// scratch/storage and uploads them. It returns the uploaded generation.
func (p *Pipeline) IngestDir(ctx context.Context, dataDir, scratch string) (string, error) {
	log := linerag.Logger
	docs, err := reader.LoadDir(dataDir)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", ErrNoDocuments
	}
	idx, err := localstore.Build(ctx, docs, p.splitter, p.embedder)
	if err != nil {
		return "", err
	}

	persistDir := filepath.Join(scratch, "storage")
	if err := os.MkdirAll(persistDir, 0o755); err != nil {
		return "", err
	}
	if err := idx.Persist(persistDir); err != nil {
		return "", err
	}
	keys, err := p.store.UploadJSON(ctx, p.vectorBucket, persistDir, localstore.CommitArtifact)
	if err != nil {
		return "", fmt.Errorf("upload artifacts (uploaded %v): %w", keys, err)
	}
	log.Info("Uploaded index", "bucket", p.vectorBucket, "generation", idx.Generation(), "artifacts", keys)
	return idx.Generation(), nil
}
