package storage

import (
	"context"
	"errors"

	"yesan/internal/core"
)

// ErrStorage marks load/save boundary failures. They are surfaced as-is and
// never retried; a failed save leaves the persisted state untouched.
var ErrStorage = errors.New("storage failure")

// Store is the persistence boundary: the full ledger state is loaded and
// saved wholesale. Load returns the default seed when no prior state
// exists; Reset clears persisted state so the next Load reseeds.
type Store interface {
	Load(ctx context.Context) (*core.State, error)
	Save(ctx context.Context, state *core.State) error
	Reset(ctx context.Context) error
	Close() error
}
