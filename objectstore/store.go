// Package objectstore moves documents and index artifacts between S3 and local disk.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
)

// S3API is the part of *s3.Client used here.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client S3API
}

func New(client S3API) *Store {
	return &Store{client: client}
}

// DecodeKey undoes the form encoding S3 applies to keys in event notifications.
func DecodeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}

// Download writes bucket/key to dir/<base name of key> and returns the local path.
func (s *Store) Download(ctx context.Context, bucket, key, dir string) (string, error) {
	log := linerag.Logger
	name := filepath.Base(key)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("object key %q has no file name", key)
	}
	path := filepath.Join(dir, name)
	log.Debug("Downloading object", "bucket", bucket, "key", key, "path", path)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return path, f.Close()
}

// UploadFile puts the file at path to bucket/key.
func (s *Store) UploadFile(ctx context.Context, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	linerag.Logger.Debug("Uploaded object", "bucket", bucket, "key", key)
	return nil
}

// UploadJSON uploads every *.json file of dir keyed by file name.
// Files named in last are uploaded after all others, in the given order.
func (s *Store) UploadJSON(ctx context.Context, bucket, dir string, last ...string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	rank := make(map[string]int, len(last))
	for i, name := range last {
		rank[name] = i + 1
	}
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := rank[filepath.Base(files[i])], rank[filepath.Base(files[j])]
		if ri != rj {
			return ri < rj
		}
		return files[i] < files[j]
	})

	keys := make([]string, 0, len(files))
	for _, file := range files {
		key := filepath.Base(file)
		if err := s.UploadFile(ctx, bucket, key, file); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// DownloadAll fetches each key of bucket into dir.
func (s *Store) DownloadAll(ctx context.Context, bucket string, keys []string, dir string) error {
	for _, key := range keys {
		if _, err := s.Download(ctx, bucket, key, dir); err != nil {
			return err
		}
	}
	return nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
