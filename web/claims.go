package web

import (
	"sync"
	"time"
)

// claims remembers which payment intents have already been handed to the
// confirm step, so a reload or a double submit never confirms twice.
// Entries are forgotten after ttl.
type claims struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func newClaims(ttl time.Duration) *claims {
	return &claims{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

// claim reports whether id was unclaimed, and claims it
func (c *claims) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, at := range c.seen {
		if now.Sub(at) > c.ttl {
			delete(c.seen, k)
		}
	}
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = now
	return true
}

// release forgets id so a later attempt can claim it again
func (c *claims) release(id string) {
	c.mu.Lock()
	delete(c.seen, id)
	c.mu.Unlock()
}
