package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hearthland/stratagem/internal/ai"
	"github.com/hearthland/stratagem/internal/config"
	"github.com/hearthland/stratagem/internal/repository"
	"github.com/hearthland/stratagem/internal/repository/postgres"
	"github.com/hearthland/stratagem/internal/sim"
	"github.com/hearthland/stratagem/internal/telemetry"
	"github.com/hearthland/stratagem/pkg/rts"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play one or more headless matches",
	Long: `Plays engine-vs-engine skirmishes. Participants are configured with
--players ("1=hard:valdor,2=easy" or "*=medium") or the --matchup shorthand
("hard-vs-easy"). Results are archived to Postgres unless --dry-run is set.`,
	Run: runMatches,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntP("games", "n", 1, "Number of matches to run")
	runCmd.Flags().Int("workers", 1, "Concurrency (parallel matches)")
	runCmd.Flags().StringP("players", "p", "", "Player config (e.g. 1=hard:valdor,*=easy)")
	runCmd.Flags().String("matchup", "", "Shorthand tier-vs-tier (e.g. hard-vs-easy)")
	runCmd.Flags().Int("count", 2, "Number of participants per match")
	runCmd.Flags().String("name", "", "Match name prefix")
	runCmd.Flags().Int64("seed", 0, "Base seed (0 = random)")
	runCmd.Flags().Duration("max-duration", 45*time.Minute, "Game-time cap before draw")
	runCmd.Flags().Duration("tick", 100*time.Millisecond, "Simulation step size")
	runCmd.Flags().Bool("dry-run", false, "Skip database writes")
	runCmd.Flags().Bool("json", false, "Output results as JSON")
	runCmd.Flags().String("watch", "", "Serve live telemetry on this address (e.g. :8799)")
}

func runMatches(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	numGames, _ := cmd.Flags().GetInt("games")
	workers, _ := cmd.Flags().GetInt("workers")
	playerCfg, _ := cmd.Flags().GetString("players")
	matchup, _ := cmd.Flags().GetString("matchup")
	count, _ := cmd.Flags().GetInt("count")
	name, _ := cmd.Flags().GetString("name")
	seed, _ := cmd.Flags().GetInt64("seed")
	maxDur, _ := cmd.Flags().GetDuration("max-duration")
	tick, _ := cmd.Flags().GetDuration("tick")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	jsonOut, _ := cmd.Flags().GetBool("json")
	watch, _ := cmd.Flags().GetString("watch")
	dbURL, _ := cmd.Flags().GetString("db")
	profilePath, _ := cmd.Flags().GetString("profiles")

	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if watch == "" {
		watch = cfg.WatchAddr
	}
	if profilePath == "" {
		profilePath = cfg.ProfileFile
	}

	var players map[rts.PlayerID]ai.PlayerSpec
	switch {
	case playerCfg != "":
		players = ai.ParsePlayerConfig(playerCfg, count)
	case matchup != "":
		players = ai.ParseMatchup(matchup, count)
	default:
		players = ai.ParsePlayerConfig("*=medium", count)
	}

	var profiles map[string]config.Tuning
	if profilePath != "" {
		var err error
		profiles, err = config.LoadProfiles(profilePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", profilePath).Msg("Failed to load tuning profiles")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var matchRepo repository.MatchRepository
	if !dryRun {
		db, err := postgres.Connect(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		matchRepo = postgres.NewMatchRepo(db)
	}

	var observe func(sim.MatchSnapshot)
	if watch != "" {
		hub := telemetry.NewHub()
		telemetry.NewServer(hub).Start(watch)
		observe = func(snap sim.MatchSnapshot) {
			hub.Broadcast(telemetry.WSEvent{Type: telemetry.EventSnapshot, Data: snap})
		}
	}

	if name == "" {
		name = "skirmish"
	}

	results := make([]*ai.ArenaResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			matchSeed := seed
			if seed != 0 {
				matchSeed = seed + int64(idx)
			}

			arenaCfg := ai.ArenaConfig{
				MatchName:   fmt.Sprintf("%s-%d", name, idx+1),
				Players:     players,
				MaxDuration: maxDur,
				TickRate:    tick,
				Seed:        matchSeed,
				Profiles:    profiles,
				DryRun:      dryRun,
			}

			result, err := ai.RunMatch(ctx, arenaCfg, matchRepo, observe)
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, players, errCount, dryRun)
	}
}

func printSummary(results []*ai.ArenaResult, players map[rts.PlayerID]ai.PlayerSpec, errCount int, dryRun bool) {
	type stats struct {
		wins  int
		draws int
	}
	byPlayer := make(map[rts.PlayerID]*stats)
	ids := make([]rts.PlayerID, 0, len(players))
	for id := range players {
		byPlayer[id] = &stats{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	completed := 0
	var totalDur time.Duration
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		totalDur += r.Duration
		if r.Winner == 0 {
			for _, s := range byPlayer {
				s.draws++
			}
			continue
		}
		if s, ok := byPlayer[r.Winner]; ok {
			s.wins++
		}
	}

	fmt.Printf("\nResults (%d matches):\n", completed)
	if errCount > 0 {
		fmt.Printf("  (%d matches failed)\n", errCount)
	}
	for _, id := range ids {
		spec := players[id]
		label := spec.Difficulty
		if spec.Civilization != "" {
			label += ":" + spec.Civilization
		}
		s := byPlayer[id]
		fmt.Printf("  player %d (%s):  %d wins, %d draws\n", id, label, s.wins, s.draws)
	}
	if completed > 0 {
		fmt.Printf("  avg game time: %s\n", (totalDur / time.Duration(completed)).Round(time.Second))
	}
	if !dryRun && completed > 0 {
		fmt.Println("\nMatches archived -- inspect with `skirmish matches`")
	}
}

func printJSON(results []*ai.ArenaResult, total, errCount int) {
	out := struct {
		Total   int               `json:"total"`
		Errors  int               `json:"errors"`
		Results []*ai.ArenaResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
