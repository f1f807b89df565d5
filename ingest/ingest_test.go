package ingest_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"gotest.tools/v3/assert"

	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/ingest"
	"github.com/hsmtkk/turbo-octo-pancake/localstore"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
)

func s3Event(bucket string, keys ...string) events.S3Event {
	var ev events.S3Event
	for _, k := range keys {
		ev.Records = append(ev.Records, events.S3EventRecord{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: k},
			},
		})
	}
	return ev
}

func newPipeline(t *testing.T, mem *objectstore.Memory) (*ingest.Pipeline, string) {
	t.Helper()
	scratch := t.TempDir()
	p := ingest.New(objectstore.New(mem), "vectors", embedding.NewLocal(64), ingest.WithTempRoot(scratch))
	return p, scratch
}

func TestHandleEvent(t *testing.T) {
	mem := objectstore.NewMemory()
	mem.Put("uploads", "faq/office hours.txt", []byte("The office opens at 9am."))
	p, scratch := newPipeline(t, mem)

	res, err := p.HandleEvent(context.Background(), s3Event("uploads", "faq/office+hours.txt"))
	assert.NilError(t, err)
	assert.DeepEqual(t, res, ingest.Result{Processed: 1})

	puts := mem.Puts()
	assert.Equal(t, len(puts), 5)
	assert.Equal(t, puts[len(puts)-1], "vectors/"+localstore.CommitArtifact)
	for _, name := range localstore.ArtifactNames() {
		_, ok := mem.Get("vectors", name)
		assert.Assert(t, ok, name)
	}

	body, _ := mem.Get("vectors", localstore.IndexStoreFile)
	var index struct {
		EmbeddingModel string   `json:"embedding_model"`
		DocIDs         []string `json:"doc_ids"`
	}
	assert.NilError(t, json.Unmarshal(body, &index))
	assert.Equal(t, index.EmbeddingModel, "local/hashed-bow-64")
	assert.Equal(t, len(index.DocIDs), 1)

	entries, err := os.ReadDir(scratch)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 0, "scratch directory left behind")
}

func TestHandleEventContinuesAfterFailure(t *testing.T) {
	mem := objectstore.NewMemory()
	mem.Put("uploads", "empty.txt", []byte("   "))
	mem.Put("uploads", "good.txt", []byte("Lunch is served at noon."))
	p, scratch := newPipeline(t, mem)

	res, err := p.HandleEvent(context.Background(), s3Event("uploads", "missing.pdf", "empty.txt", "good.txt"))
	assert.ErrorContains(t, err, "s3://uploads/missing.pdf")
	assert.ErrorContains(t, err, "s3://uploads/empty.txt")
	assert.ErrorIs(t, err, localstore.ErrEmptyIndex)
	assert.DeepEqual(t, res, ingest.Result{Processed: 1, Failed: 2})

	body, ok := mem.Get("vectors", localstore.DocStoreFile)
	assert.Assert(t, ok)
	assert.Assert(t, json.Valid(body))

	entries, err := os.ReadDir(scratch)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 0)
}

func TestRoundTripThroughBucket(t *testing.T) {
	ctx := context.Background()
	mem := objectstore.NewMemory()
	mem.Put("uploads", "menu.md", []byte("# Menu\n\nThe cafeteria serves curry on Mondays.\n"))
	p, _ := newPipeline(t, mem)

	_, err := p.HandleEvent(ctx, s3Event("uploads", "menu.md"))
	assert.NilError(t, err)

	dir := t.TempDir()
	store := objectstore.New(mem)
	assert.NilError(t, store.DownloadAll(ctx, "vectors", localstore.ArtifactNames(), dir))

	idx, err := localstore.Load(ctx, dir, embedding.NewLocal(64))
	assert.NilError(t, err)
	res, err := idx.Query(ctx, "what is served on Mondays", 3)
	assert.NilError(t, err)
	assert.Equal(t, len(res), 1)
	assert.Equal(t, res[0].Content, "Menu\nThe cafeteria serves curry on Mondays.")
	assert.Equal(t, res[0].Source, "menu.md")
}
