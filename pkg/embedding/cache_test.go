package embedding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingProvider struct {
	calls    int
	failures int // fail this many leading calls
}

func (p *countingProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, fmt.Errorf("connection refused")
	}
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: []float32{float32(len(text)), 1, 0}},
	}, nil
}

func TestCachedProviderMemoizes(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 10)

	first, err := cached.Generate("router lights blinking", TaskQuery)
	assert.NoError(t, err)

	second, err := cached.Generate("router lights blinking", TaskQuery)
	assert.NoError(t, err)

	assert.Equal(t, first.Embedding.Values, second.Embedding.Values)
	assert.Equal(t, 1, backend.calls, "second call must be served from cache")
}

func TestCachedProviderDistinctTaskTypes(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 10)

	_, err := cached.Generate("no signal", TaskQuery)
	assert.NoError(t, err)
	_, err = cached.Generate("no signal", TaskDocument)
	assert.NoError(t, err)

	assert.Equal(t, 2, backend.calls)
}

func TestCachedProviderEvictsLeastRecentlyUsed(t *testing.T) {
	backend := &countingProvider{}
	cached := NewCachedProvider(backend, 2)

	_, _ = cached.Generate("a", TaskQuery)
	_, _ = cached.Generate("b", TaskQuery)

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = cached.Generate("a", TaskQuery)
	_, _ = cached.Generate("c", TaskQuery)

	assert.Equal(t, 2, cached.Len())

	calls := backend.calls
	_, _ = cached.Generate("a", TaskQuery)
	assert.Equal(t, calls, backend.calls, "a should still be cached")

	_, _ = cached.Generate("b", TaskQuery)
	assert.Equal(t, calls+1, backend.calls, "b should have been evicted")
}

func TestCachedProviderRetriesOnce(t *testing.T) {
	backend := &countingProvider{failures: 1}
	cached := NewCachedProvider(backend, 10)

	res, err := cached.Generate("wan port down", TaskQuery)
	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedProviderSurfacesModelUnavailable(t *testing.T) {
	backend := &countingProvider{failures: 10}
	cached := NewCachedProvider(backend, 10)

	_, err := cached.Generate("wan port down", TaskQuery)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 2, backend.calls, "exactly one retry")
}
