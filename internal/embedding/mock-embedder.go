package embedding

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hyperjump/reviewcheck/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-dimension
// vector derived from the text hash so that the same text always gets the same embedding.
// It counts calls so tests can assert how often the provider was reached.
type MockEmbedder struct {
	dimensions int
	calls      atomic.Int64
	mu         sync.Mutex
	perText    map[string]int
	failures   map[string]error
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{
		dimensions: dimensions,
		perText:    make(map[string]int),
		failures:   make(map[string]error),
	}
}

// FailOn makes Embed return err for text.
func (e *MockEmbedder) FailOn(text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[text] = err
}

// Embed returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.perText[text]++
	err := e.failures[text]
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return hashVector(HashString(text), e.dimensions), nil
}

// hashVector derives a unit-length vector from h. Components are computed in
// float64 and scaled by the float64 norm before narrowing to float32.
func hashVector(h, dimensions int) []float32 {
	raw := make([]float64, dimensions)
	var sum float64
	for i := range raw {
		raw[i] = math.Sin(float64(h*(i+1)))*0.1 + 0.01
		sum += raw[i] * raw[i]
	}
	emb := make([]float32, dimensions)
	if sum == 0 {
		return emb
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range raw {
		emb[i] = float32(v * inv)
	}
	return emb
}

// Calls returns the total number of Embed calls.
func (e *MockEmbedder) Calls() int {
	return int(e.calls.Load())
}

// CallsFor returns the number of Embed calls made for text.
func (e *MockEmbedder) CallsFor(text string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.perText[text]
}

// VocabularyEmbedder embeds text as term counts over a fixed vocabulary, one
// dimension per term. Texts sharing more vocabulary terms score higher, which
// makes threshold outcomes predictable in tests. A text with no vocabulary
// terms yields a zero vector.
type VocabularyEmbedder struct {
	index map[string]int
	calls atomic.Int64
}

// NewVocabularyEmbedder returns an embedder over vocab. Terms are matched lowercased.
func NewVocabularyEmbedder(vocab ...string) *VocabularyEmbedder {
	index := make(map[string]int, len(vocab))
	for _, term := range vocab {
		for _, w := range utils.SplitWords(term) {
			if _, ok := index[w]; !ok {
				index[w] = len(index)
			}
		}
	}
	return &VocabularyEmbedder{index: index}
}

// Embed counts vocabulary terms in text.
func (e *VocabularyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	vec := make([]float32, len(e.index))
	for _, w := range utils.SplitWords(text) {
		if i, ok := e.index[w]; ok {
			vec[i]++
		}
	}
	return vec, nil
}

// Calls returns the total number of Embed calls.
func (e *VocabularyEmbedder) Calls() int {
	return int(e.calls.Load())
}

// HashString returns a deterministic, non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
