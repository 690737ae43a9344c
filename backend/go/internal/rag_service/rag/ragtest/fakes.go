// Package ragtest provides deterministic stand-ins for the embedding and
// generation models so pipelines can be exercised without network access.
package ragtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

const (
	conceptDims = 4
	hashDims    = 12
	biasDim     = conceptDims + hashDims

	// Dim is the length of every vector FakeEmbedder returns.
	Dim = biasDim + 1
)

// concepts maps known words onto shared dimensions so related words land close together.
var concepts = map[string]int{
	"company": 0, "companies": 0, "acme": 0, "globex": 0, "internship": 0, "internships": 0, "worked": 0, "employer": 0,
	"intro": 1, "introduction": 1, "hello": 1, "name": 1,
	"conclusion": 2, "thanks": 2, "summary": 2,
	"paragraph": 3,
}

// FakeEmbedder is a bag-of-words embedder. Known words count toward a concept
// dimension, other words toward a hashed bucket, and every vector carries a small bias.
type FakeEmbedder struct {
	mu    sync.Mutex
	calls int
	// Err, when set, is returned by every call.
	Err error
}

// Embed returns one vector per text.
func (f *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = Vector(t)
	}
	return out, nil
}

// Calls returns how many times Embed was invoked.
func (f *FakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Vector is the embedding FakeEmbedder produces for text.
func Vector(text string) []float32 {
	v := make([]float32, Dim)
	v[biasDim] = 0.1
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if d, ok := concepts[w]; ok {
			v[d]++
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		v[conceptDims+int(h.Sum32()%hashDims)] += 0.25
	}
	return v
}

// FakeLLM records prompts and answers with a fixed reply.
type FakeLLM struct {
	mu      sync.Mutex
	prompts []string
	// Reply is returned for every prompt. Defaults to "ok".
	Reply string
	Err   error
}

// ErrFake is a convenience error for failure-path tests.
var ErrFake = errors.New("fake failure")

// Generate records prompt and returns Reply.
func (f *FakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if f.Reply == "" {
		return "ok", nil
	}
	return f.Reply, nil
}

// Prompts returns a copy of every prompt seen so far.
func (f *FakeLLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
