package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthland/stratagem/internal/model"
)

// MatchRepo handles match, match_player, and match_sample database
// operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Create inserts a match and its participants in one transaction.
func (r *MatchRepo) Create(ctx context.Context, name string, mapSeed int64, players []model.MatchPlayer) (*model.Match, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var m model.Match
	err = tx.QueryRowContext(ctx,
		`INSERT INTO matches (name, map_seed, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id, name, map_seed, status, created_at`,
		name, mapSeed,
	).Scan(&m.ID, &m.Name, &m.MapSeed, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	for _, p := range players {
		p.MatchID = m.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, player, civilization, difficulty, seed)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.MatchID, p.Player, p.Civilization, p.Difficulty, p.Seed,
		); err != nil {
			return nil, fmt.Errorf("insert match player %d: %w", p.Player, err)
		}
		m.Players = append(m.Players, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &m, nil
}

// FindByID returns a match by ID with its participants, or nil if absent.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	var m model.Match
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, map_seed, status, winner, duration_ms, created_at, finished_at
		 FROM matches WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.MapSeed, &m.Status, &m.Winner, &m.DurationMS, &m.CreatedAt, &m.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, player, civilization, difficulty, seed
		 FROM match_players WHERE match_id = $1 ORDER BY player`, id)
	if err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.MatchPlayer
		if err := rows.Scan(&p.MatchID, &p.Player, &p.Civilization, &p.Difficulty, &p.Seed); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		m.Players = append(m.Players, p)
	}
	return &m, rows.Err()
}

// ListRecent returns the most recently created matches.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, map_seed, status, winner, duration_ms, created_at, finished_at
		 FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.Name, &m.MapSeed, &m.Status, &m.Winner, &m.DurationMS, &m.CreatedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetFinished marks a match finished with its outcome.
func (r *MatchRepo) SetFinished(ctx context.Context, matchID string, winner int, duration time.Duration) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches
		 SET status = 'finished', winner = $2, duration_ms = $3, finished_at = NOW()
		 WHERE id = $1`,
		matchID, winner, duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	return nil
}

// SaveSamples bulk-inserts periodic state samples.
func (r *MatchRepo) SaveSamples(ctx context.Context, samples []model.MatchSample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO match_samples (match_id, elapsed_ms, player, age, population, military, buildings, stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx,
			s.MatchID, s.ElapsedMS, s.Player, s.Age, s.Population, s.Military, s.Buildings, s.Stock,
		); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SamplesByMatch returns all samples for a match in time order.
func (r *MatchRepo) SamplesByMatch(ctx context.Context, matchID string) ([]model.MatchSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, elapsed_ms, player, age, population, military, buildings, stock
		 FROM match_samples WHERE match_id = $1 ORDER BY elapsed_ms, player`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var out []model.MatchSample
	for rows.Next() {
		var s model.MatchSample
		if err := rows.Scan(&s.MatchID, &s.ElapsedMS, &s.Player, &s.Age, &s.Population, &s.Military, &s.Buildings, &s.Stock); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
