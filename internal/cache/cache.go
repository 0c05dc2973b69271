package cache

import (
	"context"
	"time"
)

// Sweeper periodically evicts expired entries from registered caches so
// memory is reclaimed even for keys that are never read again.
type Sweeper struct {
	caches []interface{ EvictExpired() int }
}

func NewSweeper() *Sweeper {
	return &Sweeper{}
}

func (s *Sweeper) Register(c interface{ EvictExpired() int }) {
	s.caches = append(s.caches, c)
}

// Run sweeps at the given interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range s.caches {
				c.EvictExpired()
			}
		}
	}
}
