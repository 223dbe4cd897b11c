package awards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new SQL-backed Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// CreditAwards inserts the awards that are not recorded yet and returns how many were new.
func (s *store) CreditAwards(ctx context.Context, matchID string, version int64, awards []Award) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if err := claimVersion(ctx, tx, matchID, version); err != nil {
		tx.Rollback()
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_awards (match_id, player_id, round, points, awarded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(match_id, player_id) DO NOTHING
	`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	credited := 0
	for _, a := range awards {
		res, err := stmt.ExecContext(ctx, matchID, a.PlayerID, string(a.Round), a.Points, a.AwardedAt.Unix())
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to credit %s for match %s: %w", a.PlayerID, matchID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		credited += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Debug("Credited awards", "matchID", matchID, "version", version, "requested", len(awards), "credited", credited)
	return credited, nil
}

// RevokeAwards deletes every award of matchID and returns how many were removed.
func (s *store) RevokeAwards(ctx context.Context, matchID string, version int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if err := claimVersion(ctx, tx, matchID, version); err != nil {
		tx.Rollback()
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM player_awards WHERE match_id = ?", matchID)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// claimVersion records version as the last applied event of matchID, unless an equal or newer
// one was applied already.
func claimVersion(ctx context.Context, tx *sql.Tx, matchID string, version int64) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO award_events (match_id, version) VALUES (?, ?)
		ON CONFLICT(match_id) DO UPDATE SET version = excluded.version
		WHERE excluded.version > award_events.version
	`, matchID, version)
	if err != nil {
		return fmt.Errorf("failed to record event version for match %s: %w", matchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: match %s version %d", ErrStaleEvent, matchID, version)
	}
	return nil
}

func (s *store) PlayerPoints(ctx context.Context, playerID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(points), 0) FROM player_awards WHERE player_id = ?", playerID).Scan(&total)
	return total, err
}

// Leaderboard returns players ordered by total points, highest first. limit <= 0 returns everyone.
func (s *store) Leaderboard(ctx context.Context, limit int) ([]PlayerTotal, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, SUM(points), COUNT(*)
		FROM player_awards
		GROUP BY player_id
		ORDER BY SUM(points) DESC, player_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerTotal
	for rows.Next() {
		var pt PlayerTotal
		if err := rows.Scan(&pt.PlayerID, &pt.Points, &pt.Wins); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}
