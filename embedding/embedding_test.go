package embedding_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"gotest.tools/v3/assert"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/embedding"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	e := embedding.NewLocal(64)

	a, err := e.Embed(ctx, "The office opens at 9am")
	assert.NilError(t, err)
	b, err := e.Embed(ctx, "the OFFICE opens at 9AM!")
	assert.NilError(t, err)
	c, err := e.Embed(ctx, "Parking is free on weekends")
	assert.NilError(t, err)

	assert.Equal(t, len(a), 64)
	assert.Assert(t, math.Abs(norm(a)-1) < 1e-5)
	assert.DeepEqual(t, a, b)
	assert.Assert(t, dot(a, b) > dot(a, c))

	_, err = e.Embed(ctx, " ... ")
	assert.ErrorIs(t, err, embedding.ErrEmptyText)
	assert.Equal(t, e.Model(), "local/hashed-bow-64")
}

type fakeBedrock struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestTitan(t *testing.T) {
	fake := &fakeBedrock{body: `{"embedding":[0.5,0.25],"inputTextTokenCount":3}`}
	e := embedding.NewTitan(fake)

	v, err := e.Embed(context.Background(), "hello titan")
	assert.NilError(t, err)
	assert.DeepEqual(t, v, []float32{0.5, 0.25})
	assert.Equal(t, aws.ToString(fake.input.ModelId), embedding.TitanModelID)

	var req map[string]string
	assert.NilError(t, json.Unmarshal(fake.input.Body, &req))
	assert.Equal(t, req["inputText"], "hello titan")

	fake.err = errors.New("ThrottlingException")
	_, err = e.Embed(context.Background(), "again")
	assert.ErrorContains(t, err, "ThrottlingException")

	fake.err = nil
	fake.body = `{"embedding":[]}`
	_, err = e.Embed(context.Background(), "again")
	assert.ErrorContains(t, err, "no embedding")
}

func TestOpenAI(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":2,"total_tokens":2}}`)
	}))
	defer srv.Close()

	e, err := embedding.NewOpenAI("sk-test", embedding.WithBaseURL(srv.URL+"/v1"))
	assert.NilError(t, err)

	v, err := e.Embed(context.Background(), "hello")
	assert.NilError(t, err)
	assert.DeepEqual(t, v, []float32{0.1, 0.2, 0.3})
	assert.Equal(t, gotAuth, "Bearer sk-test")
	assert.Equal(t, gotReq.Model, "text-embedding-3-small")
	assert.DeepEqual(t, gotReq.Input, []string{"hello"})
	assert.Equal(t, e.Model(), "openai/text-embedding-3-small")

	_, err = embedding.NewOpenAI("")
	assert.ErrorContains(t, err, "empty")
}

func TestNew(t *testing.T) {
	e, err := embedding.New(linerag.ProviderLocal, "", nil)
	assert.NilError(t, err)
	assert.Equal(t, e.Model(), "local/hashed-bow-256")

	_, err = embedding.New(linerag.ProviderTitan, "", nil)
	assert.ErrorContains(t, err, "aws config")

	_, err = embedding.New("word2vec", "", nil)
	assert.ErrorContains(t, err, "unknown")
}
