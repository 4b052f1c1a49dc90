// Package repository defines the data access contracts for match archives.
package repository

import (
	"context"
	"time"

	"github.com/hearthland/stratagem/internal/model"
)

// MatchRepository defines archived match data operations.
type MatchRepository interface {
	Create(ctx context.Context, name string, mapSeed int64, players []model.MatchPlayer) (*model.Match, error)
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListRecent(ctx context.Context, limit int) ([]model.Match, error)
	SetFinished(ctx context.Context, matchID string, winner int, duration time.Duration) error
	SaveSamples(ctx context.Context, samples []model.MatchSample) error
	SamplesByMatch(ctx context.Context, matchID string) ([]model.MatchSample, error)
}
