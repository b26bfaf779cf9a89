package events

import (
	"context"
	"sync"

	"event-portal/internal/remote"
)

// cacheKey is the full parameter signature of a memoizable read.
type cacheKey struct {
	entity  string
	action  string
	eventID int64
	token   string
	profile string
	regCtx  Context
}

// ReplyCache deduplicates idempotent remote reads within one request, so a
// page render that needs the same event twice issues one round-trip. It is
// created at request start, carried through the context, and discarded with
// the request. Mutating and validating calls never consult it.
type ReplyCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*remote.Call
}

func NewReplyCache() *ReplyCache {
	return &ReplyCache{entries: make(map[cacheKey]*remote.Call)}
}

func (c *ReplyCache) get(key cacheKey) (*remote.Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	call, ok := c.entries[key]
	return call, ok
}

func (c *ReplyCache) put(key cacheKey, call *remote.Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = call
}

// Len reports the number of memoized replies.
func (c *ReplyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type cacheCtxKey struct{}

// WithReplyCache attaches a fresh per-request cache to ctx. Without it the
// gateway calls straight through on every read.
func WithReplyCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheCtxKey{}, NewReplyCache())
}

func replyCacheFrom(ctx context.Context) *ReplyCache {
	cache, _ := ctx.Value(cacheCtxKey{}).(*ReplyCache)
	return cache
}
