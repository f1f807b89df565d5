package main

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"gotest.tools/v3/assert"

	"github.com/hsmtkk/turbo-octo-pancake/embedding"
	"github.com/hsmtkk/turbo-octo-pancake/ingest"
	"github.com/hsmtkk/turbo-octo-pancake/objectstore"
)

func record(bucket, key string) events.S3EventRecord {
	return events.S3EventRecord{S3: events.S3Entity{
		Bucket: events.S3Bucket{Name: bucket},
		Object: events.S3Object{Key: key},
	}}
}

func TestHandler(t *testing.T) {
	mem := objectstore.NewMemory()
	mem.Put("uploads", "faq.txt", []byte("Lunch is served at noon in the cafeteria."))
	a := &app{pipeline: ingest.New(objectstore.New(mem), "vectors", embedding.NewLocal(32), ingest.WithTempRoot(t.TempDir()))}

	resp, err := a.Handler(context.Background(), events.S3Event{Records: []events.S3EventRecord{record("uploads", "faq.txt")}})
	assert.NilError(t, err)
	assert.Equal(t, resp.StatusCode, 200)
	assert.Equal(t, resp.Body, `{"message":"ok"}`)
	assert.Equal(t, len(mem.Puts()), 5)
}

func TestHandlerMissingObject(t *testing.T) {
	mem := objectstore.NewMemory()
	a := &app{pipeline: ingest.New(objectstore.New(mem), "vectors", embedding.NewLocal(32), ingest.WithTempRoot(t.TempDir()))}

	_, err := a.Handler(context.Background(), events.S3Event{Records: []events.S3EventRecord{record("uploads", "missing.txt")}})
	assert.ErrorContains(t, err, "s3://uploads/missing.txt")
	assert.Equal(t, len(mem.Puts()), 0)
}
