package match

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("match not found")
	// ErrConflict means the match was saved by someone else since it was loaded.
	ErrConflict      = errors.New("match was modified concurrently")
	ErrAlreadyExists = errors.New("match already exists")
)

// Repository loads and saves matches. SaveMatch is optimistic: it only succeeds when the stored
// version equals m.Version, and bumps m.Version on success.
type Repository interface {
	CreateMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	SaveMatch(ctx context.Context, m *Match) error
	ListMatches(ctx context.Context, tournamentID string) ([]*Match, error)
}
