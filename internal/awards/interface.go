package awards

import (
	"context"
	"errors"
)

// ErrStaleEvent is returned when an event carries a match version at or below one already applied.
var ErrStaleEvent = errors.New("stale match event")

// Store persists awards. Every write is tagged with the match version of the event that caused it;
// writes at or below the last applied version fail with ErrStaleEvent, so redelivered or reordered
// events never double count or resurrect revoked credit.
type Store interface {
	CreditAwards(ctx context.Context, matchID string, version int64, awards []Award) (int, error)
	RevokeAwards(ctx context.Context, matchID string, version int64) (int, error)
	PlayerPoints(ctx context.Context, playerID string) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]PlayerTotal, error)
}
