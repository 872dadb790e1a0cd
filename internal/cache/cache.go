package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching completion-service replies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from the parts of a completion request
// (provider, model, prompts). Identical requests replay from cache, which
// keeps reruns deterministic and cheap.
func CacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "veridoc:v1:" + hex.EncodeToString(h.Sum(nil))
}
