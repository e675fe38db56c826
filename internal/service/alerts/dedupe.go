package alerts

import (
	"sync"
	"time"
)

// dedupeCache suppresses repeat alerts for the same subject within a window,
// so a key that stays exhausted does not flood the alert log.
type dedupeCache struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
	now  func() time.Time
}

func newDedupeCache(ttl time.Duration) *dedupeCache {
	return &dedupeCache{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// shouldEmit reports whether the subject has not fired within the window, and
// marks it as fired.
func (c *dedupeCache) shouldEmit(subject string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, exists := c.seen[subject]; exists && now.Sub(last) < c.ttl {
		return false
	}
	c.seen[subject] = now
	return true
}
