// Package cache holds the in-process lookup caches used by the export
// worker and the loop that expires their entries.
package cache

import (
	"context"
	"log/slog"
	"time"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically expires entries in every registered cache.
type Manager struct {
	caches []Cleaner
}

func NewManager(caches ...Cleaner) *Manager {
	return &Manager{caches: caches}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// CleanAll runs one expiry pass and returns the number of entries removed.
func (m *Manager) CleanAll() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run cleans on every tick until ctx is done. It always returns ctx.Err().
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				slog.DebugContext(ctx, "Expired cache entries removed", "component", "cache", "removed", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
