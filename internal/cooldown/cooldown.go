// Package cooldown tracks per-user, per-domain scan cooldowns. The domain
// key is the normalized registrable domain, so varying the path, subdomain
// or scheme of the same site cannot bypass the window.
//
// Check-then-touch is deliberately not atomic across concurrent requests:
// a race costs at most one extra reward grant, an accepted soft invariant.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// Store answers whether a (user, domain) pair is inside its cooldown
// window and records new reward-bearing scans.
type Store interface {
	// Active reports whether a cooldown is currently in effect.
	Active(ctx context.Context, userID, domain string) (bool, error)

	// Touch starts (or restarts) the cooldown window.
	Touch(ctx context.Context, userID, domain string, window time.Duration) error
}

// MemoryStore is the in-process implementation used in tests and
// single-binary runs without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expires: map[string]time.Time{},
		now:     time.Now,
	}
}

func (m *MemoryStore) Active(_ context.Context, userID, domain string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.expires[key(userID, domain)]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.expires, key(userID, domain))
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Touch(_ context.Context, userID, domain string, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key(userID, domain)] = m.now().Add(window)
	return nil
}

func key(userID, domain string) string {
	return userID + ":" + domain
}
