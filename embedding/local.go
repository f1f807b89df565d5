package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const DefaultLocalDimension = 256

// Local is a deterministic hashed bag-of-words embedder. It needs no network
// and is good enough to find chunks that share words with the question.
type Local struct {
	dim int
}

func NewLocal(dim int) *Local {
	if dim < 1 {
		dim = DefaultLocalDimension
	}
	return &Local{dim: dim}
}

func (l *Local) Model() string {
	return fmt.Sprintf("local/hashed-bow-%d", l.dim)
}

func (l *Local) Embed(_ context.Context, text string) ([]float32, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	vec := make([]float32, l.dim)
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%uint32(l.dim)]++
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}
