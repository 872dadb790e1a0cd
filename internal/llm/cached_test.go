package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ppiankov/veridoc/internal/cache"
)

// countingProvider returns a distinct reply per call so cache hits and misses
// are distinguishable.
type countingProvider struct {
	calls int
}

func (p *countingProvider) Name() string                         { return "counting" }
func (p *countingProvider) IsAvailable(ctx context.Context) bool { return true }
func (p *countingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	p.calls++
	return &CompletionResponse{Text: fmt.Sprintf("reply %d", p.calls), Model: "counting"}, nil
}

func TestCachedProvider_ReplaysIdenticalRequest(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner, cache.NewMemoryCache(time.Minute, time.Minute), nil, time.Minute)

	req := CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Model: "m", MaxTokens: 100, Temperature: 0.2}

	first, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	second, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second request replays from cache)", inner.calls)
	}
	if first.Text != second.Text {
		t.Errorf("replayed reply = %q, want %q", second.Text, first.Text)
	}
}

func TestCachedProvider_KeyCoversSamplingParameters(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner, cache.NewMemoryCache(time.Minute, time.Minute), nil, time.Minute)

	base := CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Model: "m", MaxTokens: 100, Temperature: 0.2}

	first, err := p.Complete(context.Background(), base)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	moreTokens := base
	moreTokens.MaxTokens = 500
	second, err := p.Complete(context.Background(), moreTokens)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (different MaxTokens must not replay)", inner.calls)
	}
	if first.Text == second.Text {
		t.Error("request with different MaxTokens replayed the cached reply")
	}

	hotter := base
	hotter.Temperature = 0.9
	third, err := p.Complete(context.Background(), hotter)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (different Temperature must not replay)", inner.calls)
	}
	if third.Text == first.Text || third.Text == second.Text {
		t.Error("request with different Temperature replayed a cached reply")
	}

	// Each variant still replays its own reply.
	again, err := p.Complete(context.Background(), hotter)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (repeat of same variant replays)", inner.calls)
	}
	if again.Text != third.Text {
		t.Errorf("replayed reply = %q, want %q", again.Text, third.Text)
	}
}
