package embedding

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

const DefaultCacheCapacity = 1000

// CachedProvider memoizes embeddings by exact text. The cache is bounded
// with least-recently-used eviction and guarded by a mutex so it can be
// shared across conversations.
type CachedProvider struct {
	provider EmbeddingProvider
	capacity int

	mu      sync.Mutex
	order   *list.List               // front = most recently used
	entries map[string]*list.Element // text -> order element
}

type cacheEntry struct {
	text   string
	values []float32
}

func NewCachedProvider(provider EmbeddingProvider, capacity int) *CachedProvider {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &CachedProvider{
		provider: provider,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Generate returns the cached vector for text if present, otherwise asks
// the underlying provider. A failed backend call is retried exactly once
// before the error is surfaced as ErrModelUnavailable.
func (c *CachedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		values := el.Value.(*cacheEntry).values
		c.mu.Unlock()
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
	}
	c.mu.Unlock()

	res, err := c.provider.Generate(text, taskType)
	if err != nil {
		// One retry for transient backend failures.
		res, err = c.provider.Generate(text, taskType)
		if err != nil {
			if errors.Is(err, ErrModelUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
	}

	c.mu.Lock()
	c.store(key, res.Embedding.Values)
	c.mu.Unlock()

	return res, nil
}

// Len reports the number of cached entries.
func (c *CachedProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// store assumes c.mu is held.
func (c *CachedProvider) store(key string, values []float32) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).values = values
		return
	}
	el := c.order.PushFront(&cacheEntry{text: key, values: values})
	c.entries[key] = el

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).text)
	}
}
