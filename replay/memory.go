package replay

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Guard = (*Memory)(nil)

type entry struct {
	keyID string
	nonce string
}

// Memory is an in-process Guard. Expired entries are pruned lazily.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seen    map[entry]time.Time
	nextGC  time.Time
	gcEvery time.Duration
}

// NewMemory returns a Memory guard. A ttl of zero means DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		seen:    make(map[entry]time.Time),
		gcEvery: ttl / 2,
	}
}

// Remember implements Guard.
func (m *Memory) Remember(_ context.Context, keyID, nonce string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(m.nextGC) {
		m.prune(now)
		m.nextGC = now.Add(m.gcEvery)
	}

	e := entry{keyID: keyID, nonce: nonce}
	if expires, ok := m.seen[e]; ok && now.Before(expires) {
		return fmt.Errorf("%w: %s", ErrReplayed, nonce)
	}

	m.seen[e] = expiry(now, at, m.ttl)

	return nil
}

// Len returns the number of tracked nonces, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.seen)
}

func (m *Memory) prune(now time.Time) {
	for e, expires := range m.seen {
		if !now.Before(expires) {
			delete(m.seen, e)
		}
	}
}

// expiry keeps an entry for ttl past the later of the request
// timestamp and the time it was seen.
func expiry(now, at time.Time, ttl time.Duration) time.Time {
	if at.After(now) {
		return at.Add(ttl)
	}

	return now.Add(ttl)
}
