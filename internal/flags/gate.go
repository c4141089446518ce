package flags

import (
	"context"
	"fmt"
	"sync"
)

// Gate caches the flags for one key and answers review-event checks
// without touching the database. Updates write through to the repository.
type Gate struct {
	repo Repository
	key  string

	mu    sync.RWMutex
	flags Flags
}

// NewGate loads the flags for key.
func NewGate(ctx context.Context, repo Repository, key string) (*Gate, error) {
	f, err := repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Gate{repo: repo, key: key, flags: f}, nil
}

// Key returns the flags key the gate serves.
func (g *Gate) Key() string { return g.key }

// Flags returns the cached flags.
func (g *Gate) Flags() Flags {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.flags
}

// Allows reports whether a review event of the given category passes.
func (g *Gate) Allows(category string) bool {
	return g.Flags().Allows(category)
}

// Update persists f and then replaces the cached copy. The cache is left
// unchanged when the save fails.
func (g *Gate) Update(ctx context.Context, f Flags) (Flags, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	saved, err := g.repo.Save(ctx, g.key, f)
	if err != nil {
		return g.flags, fmt.Errorf("updating flags: %w", err)
	}
	g.flags = saved
	return saved, nil
}
