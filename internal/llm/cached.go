package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/veridoc/internal/cache"
	"github.com/ppiankov/veridoc/internal/worker"
)

// CachedProvider wraps a Provider with reply caching and rate limiting. A
// repeated request (same provider, model, prompts) replays from cache without
// a network call, which makes reruns over the same document replayable.
type CachedProvider struct {
	inner   Provider
	cache   cache.Cache
	limiter *worker.Limiter
	ttl     time.Duration
}

// NewCachedProvider wraps inner with the given cache and limiter. Either may
// be nil to disable that concern.
func NewCachedProvider(inner Provider, c cache.Cache, limiter *worker.Limiter, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   c,
		limiter: limiter,
		ttl:     ttl,
	}
}

// Name returns the wrapped provider name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable checks the wrapped provider
func (p *CachedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Complete serves the request from cache when possible, otherwise waits for
// rate-limit clearance and forwards to the wrapped provider.
func (p *CachedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	// Sampling parameters are part of the request identity: two requests
	// differing only in MaxTokens or Temperature must not replay each other.
	key := cache.CacheKey(p.inner.Name(), req.Model, req.SystemPrompt, req.UserPrompt,
		strconv.Itoa(req.MaxTokens), strconv.FormatFloat(req.Temperature, 'g', -1, 64))

	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			var resp CompletionResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				return &resp, nil
			}
			// Corrupt entry: drop it and fall through to the provider
			_ = p.cache.Delete(key)
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.inner.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := p.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			_ = p.cache.Set(key, data, p.ttl)
		}
	}

	return resp, nil
}
