package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// New creates a new Repository backed by the matches table.
func New(db *sql.DB) Repository {
	return &store{
		db: db,
	}
}

const selectMatch = `
	SELECT id, tournament_id, round, status, side_a_json, side_b_json, scorer_id, winner,
	       started_at, completed_at, created_at, version, score_json
	FROM matches`

// CreateMatch inserts a new match. Version starts at zero.
func (s *store) CreateMatch(ctx context.Context, m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	sideA, err := json.Marshal(m.SideA)
	if err != nil {
		return fmt.Errorf("failed to marshal side A: %w", err)
	}
	sideB, err := json.Marshal(m.SideB)
	if err != nil {
		return fmt.Errorf("failed to marshal side B: %w", err)
	}
	scoreJSON, err := marshalScore(m.Score)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, tournament_id, round, status, side_a_json, side_b_json, scorer_id, winner,
			started_at, completed_at, created_at, version, score_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(id) DO NOTHING`,
		m.ID, m.TournamentID, string(m.Round), string(m.Status), string(sideA), string(sideB),
		nullString(m.ScorerID), nullSide(m.Winner), nullTime(m.StartedAt), nullTime(m.CompletedAt),
		m.CreatedAt.UnixNano(), scoreJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create match %s: %w", m.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}
	m.Version = 0
	log.Debug("Created match", "matchID", m.ID, "round", m.Round)
	return nil
}

// GetMatch loads a match by id.
func (s *store) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectMatch+` WHERE id = ?`, matchID)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return m, nil
}

// SaveMatch writes the mutable columns of m if nobody saved it since it was loaded.
func (s *store) SaveMatch(ctx context.Context, m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scoreJSON, err := marshalScore(m.Score)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE matches
		SET status = ?, scorer_id = ?, winner = ?, started_at = ?, completed_at = ?, score_json = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		string(m.Status), nullString(m.ScorerID), nullSide(m.Winner), nullTime(m.StartedAt),
		nullTime(m.CompletedAt), scoreJSON, m.ID, m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", m.ID, err)
	}
	if n == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM matches WHERE id = ?`, m.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, m.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to save match %s: %w", m.ID, err)
		}
		log.Warn("Stale match version on save", "matchID", m.ID, "version", m.Version)
		return fmt.Errorf("%w: %s at version %d", ErrConflict, m.ID, m.Version)
	}

	m.Version++
	log.Debug("Saved match", "matchID", m.ID, "status", m.Status, "version", m.Version)
	return nil
}

// ListMatches returns the matches of a tournament, or every match when tournamentID is empty.
func (s *store) ListMatches(ctx context.Context, tournamentID string) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectMatch + ` ORDER BY created_at ASC, id ASC`
	args := []any{}
	if tournamentID != "" {
		query = selectMatch + ` WHERE tournament_id = ? ORDER BY created_at ASC, id ASC`
		args = append(args, tournamentID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// scanMatch is a helper function to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var (
		m                       Match
		round, status           string
		sideA, sideB            string
		scorerID, winner, score sql.NullString
		startedAt, completedAt  sql.NullInt64
		createdAt               int64
	)
	err := scanner.Scan(
		&m.ID, &m.TournamentID, &round, &status, &sideA, &sideB, &scorerID, &winner,
		&startedAt, &completedAt, &createdAt, &m.Version, &score,
	)
	if err != nil {
		return nil, err
	}

	m.Round = Round(round)
	m.Status = Status(status)
	m.ScorerID = scorerID.String
	m.CreatedAt = fromNanos(createdAt)
	if winner.Valid {
		w := scoring.Side(winner.String)
		m.Winner = &w
	}
	if startedAt.Valid {
		t := fromNanos(startedAt.Int64)
		m.StartedAt = &t
	}
	if completedAt.Valid {
		t := fromNanos(completedAt.Int64)
		m.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(sideA), &m.SideA); err != nil {
		return nil, fmt.Errorf("failed to unmarshal side A of match %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(sideB), &m.SideB); err != nil {
		return nil, fmt.Errorf("failed to unmarshal side B of match %s: %w", m.ID, err)
	}
	if score.Valid && score.String != "" {
		var state scoring.ScoreState
		if err := json.Unmarshal([]byte(score.String), &state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score of match %s: %w", m.ID, err)
		}
		m.Score = &state
	}
	return &m, nil
}

func marshalScore(state *scoring.ScoreState) (sql.NullString, error) {
	if state == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(state)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal score state: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullSide(side *scoring.Side) sql.NullString {
	if side == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*side), Valid: true}
}

// Timestamps are stored as Unix nanoseconds so they round-trip exactly like the ones in score_json.
func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
