package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hearthland/stratagem/internal/config"
	"github.com/hearthland/stratagem/internal/model"
	"github.com/hearthland/stratagem/internal/repository"
	"github.com/hearthland/stratagem/internal/sim"
	"github.com/hearthland/stratagem/pkg/rts"
)

// PlayerSpec configures one arena participant.
type PlayerSpec struct {
	Difficulty   string
	Civilization string
}

// ArenaConfig configures a single engine-vs-engine skirmish.
type ArenaConfig struct {
	MatchName   string
	Players     map[rts.PlayerID]PlayerSpec
	MaxDuration time.Duration            // cap for a draw (default 45m game time)
	TickRate    time.Duration            // simulation step (default 100ms)
	SampleEvery time.Duration            // state sample cadence (default 15s)
	Seed        int64                    // 0 = random
	Profiles    map[string]config.Tuning // per-difficulty tuning overlays
	DryRun      bool                     // skip DB writes
}

// ArenaResult describes the outcome of a completed skirmish.
type ArenaResult struct {
	MatchID  string
	Winner   rts.PlayerID // 0 for a draw
	Duration time.Duration
	Ticks    int
	Final    sim.MatchSnapshot
}

// RunMatch plays a full skirmish between AI participants, archiving the
// result and periodic state samples to Postgres. Pass a nil repo or set
// DryRun for no persistence; observe (optional) receives every sampled
// snapshot for live spectators.
func RunMatch(ctx context.Context, cfg ArenaConfig, matchRepo repository.MatchRepository, observe func(sim.MatchSnapshot)) (*ArenaResult, error) {
	if len(cfg.Players) == 0 {
		cfg.Players = map[rts.PlayerID]PlayerSpec{
			1: {Difficulty: "medium"},
			2: {Difficulty: "medium"},
		}
	}
	if cfg.MaxDuration == 0 {
		cfg.MaxDuration = 45 * time.Minute
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 100 * time.Millisecond
	}
	if cfg.SampleEvery == 0 {
		cfg.SampleEvery = 15 * time.Second
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ids := make([]rts.PlayerID, 0, len(cfg.Players))
	for id := range cfg.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	world := sim.New(sim.Config{
		Players: startingBases(ids),
		Seed:    seed,
	})

	controllers := make(map[rts.PlayerID]*Controller, len(ids))
	for i, id := range ids {
		spec := cfg.Players[id]
		var tuning *config.Tuning
		if t, ok := cfg.Profiles[spec.Difficulty]; ok {
			tuning = &t
		}
		controllers[id] = NewController(id, world, world, ControllerConfig{
			Difficulty:   spec.Difficulty,
			Civilization: spec.Civilization,
			Seed:         seed + int64(i)*7919,
			Tuning:       tuning,
		})
	}
	defer func() {
		for _, c := range controllers {
			c.Close()
		}
	}()

	world.Subscribe(func(ev rts.Event) {
		for _, c := range controllers {
			c.Notify(ev)
		}
	})

	var matchID string
	if !cfg.DryRun && matchRepo != nil {
		var err error
		matchID, err = createMatch(ctx, cfg, seed, ids, matchRepo)
		if err != nil {
			return nil, fmt.Errorf("create arena match: %w", err)
		}
	}

	result := &ArenaResult{MatchID: matchID}
	var samples []model.MatchSample
	nextSample := cfg.SampleEvery

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		world.Step(cfg.TickRate)
		for _, id := range ids {
			controllers[id].Step(world.Elapsed())
		}
		result.Ticks++

		if world.Elapsed() >= nextSample {
			nextSample += cfg.SampleEvery
			snap := world.Snapshot()
			samples = append(samples, snapshotSamples(matchID, snap)...)
			if observe != nil {
				observe(snap)
			}
		}

		active := world.ActivePlayers()
		decided := len(active) <= 1
		expired := world.Elapsed() >= cfg.MaxDuration
		if !decided && !expired {
			continue
		}

		if decided && len(active) == 1 {
			result.Winner = active[0]
		}
		result.Duration = world.Elapsed()
		result.Final = world.Snapshot()

		if !cfg.DryRun && matchRepo != nil {
			if err := matchRepo.SaveSamples(ctx, samples); err != nil {
				return nil, fmt.Errorf("save samples: %w", err)
			}
			if err := matchRepo.SetFinished(ctx, matchID, int(result.Winner), result.Duration); err != nil {
				return nil, fmt.Errorf("set finished: %w", err)
			}
		}

		evt := log.Info().Str("matchId", matchID).Dur("duration", result.Duration).Int("ticks", result.Ticks)
		if result.Winner != 0 {
			evt.Int("winner", int(result.Winner)).Msg("Arena match won")
		} else {
			evt.Msg("Arena match ended as draw")
		}
		return result, nil
	}
}

// startingBases spreads the participants evenly around the map center.
func startingBases(ids []rts.PlayerID) []sim.PlayerSetup {
	const (
		mapSize    = 200.0
		baseRadius = 70.0
	)
	center := rts.Position{X: mapSize / 2, Y: mapSize / 2}

	out := make([]sim.PlayerSetup, len(ids))
	for i, id := range ids {
		ang := 2 * math.Pi * float64(i) / float64(len(ids))
		out[i] = sim.PlayerSetup{
			ID:   id,
			Base: center.Add(baseRadius*math.Cos(ang), baseRadius*math.Sin(ang)),
		}
	}
	return out
}

// createMatch archives the match header and its participants.
func createMatch(ctx context.Context, cfg ArenaConfig, seed int64, ids []rts.PlayerID, matchRepo repository.MatchRepository) (string, error) {
	name := cfg.MatchName
	if name == "" {
		name = "skirmish"
	}

	players := make([]model.MatchPlayer, 0, len(ids))
	for i, id := range ids {
		spec := cfg.Players[id]
		diff := spec.Difficulty
		if diff == "" {
			diff = "medium"
		}
		players = append(players, model.MatchPlayer{
			Player:       int(id),
			Civilization: spec.Civilization,
			Difficulty:   diff,
			Seed:         seed + int64(i)*7919,
		})
	}

	m, err := matchRepo.Create(ctx, name, seed, players)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// snapshotSamples flattens a snapshot into archive rows.
func snapshotSamples(matchID string, snap sim.MatchSnapshot) []model.MatchSample {
	out := make([]model.MatchSample, 0, len(snap.Players))
	for _, p := range snap.Players {
		stock, err := json.Marshal(p.Stock)
		if err != nil {
			stock = []byte("{}")
		}
		out = append(out, model.MatchSample{
			MatchID:    matchID,
			ElapsedMS:  snap.Elapsed.Milliseconds(),
			Player:     int(p.Player),
			Age:        p.Age,
			Population: p.Population,
			Military:   p.Military,
			Buildings:  p.Buildings,
			Stock:      stock,
		})
	}
	return out
}
