package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Memory is an in-process S3API for tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func memoryKey(bucket, key string) string {
	return bucket + "/" + key
}

// Put stores body under bucket/key.
func (m *Memory) Put(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memoryKey(bucket, key)] = append([]byte(nil), body...)
}

// Get returns the stored body of bucket/key.
func (m *Memory) Get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[memoryKey(bucket, key)]
	return b, ok
}

// Delete removes bucket/key.
func (m *Memory) Delete(bucket, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, memoryKey(bucket, key))
}

// Puts lists bucket/key of every PutObject call in order.
func (m *Memory) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}

// Keys lists stored objects as bucket/key, sorted.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := m.Get(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (m *Memory) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	m.Put(bucket, key, body)
	m.mu.Lock()
	m.puts = append(m.puts, memoryKey(bucket, key))
	m.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}
