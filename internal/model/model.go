// Package model holds the persistence-layer records for archived matches.
package model

import (
	"encoding/json"
	"time"
)

// Match is one archived skirmish.
type Match struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	MapSeed    int64        `json:"map_seed"`
	Status     string       `json:"status"` // running, finished
	Winner     int          `json:"winner"` // participant number; 0 for a draw
	DurationMS int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Players    []MatchPlayer `json:"players,omitempty"`
}

// MatchPlayer is one participant's configuration in an archived match.
type MatchPlayer struct {
	MatchID      string `json:"match_id"`
	Player       int    `json:"player"`
	Civilization string `json:"civilization"`
	Difficulty   string `json:"difficulty"`
	Seed         int64  `json:"seed"`
}

// MatchSample is one periodic per-participant state row, used for replay
// charts and difficulty analysis.
type MatchSample struct {
	MatchID    string          `json:"match_id"`
	ElapsedMS  int64           `json:"elapsed_ms"`
	Player     int             `json:"player"`
	Age        int             `json:"age"`
	Population int             `json:"population"`
	Military   int             `json:"military"`
	Buildings  int             `json:"buildings"`
	Stock      json.RawMessage `json:"stock"`
}
