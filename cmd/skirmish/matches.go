package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hearthland/stratagem/internal/config"
	"github.com/hearthland/stratagem/internal/repository/postgres"
)

var matchesCmd = &cobra.Command{
	Use:   "matches [match_id]",
	Short: "List archived matches, or show one match's timeline",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dbURL, _ := cmd.Flags().GetString("db")
		if dbURL == "" {
			dbURL = config.Load().DatabaseURL
		}

		db, err := postgres.Connect(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		repo := postgres.NewMatchRepo(db)

		ctx := context.Background()
		if len(args) == 1 {
			showMatch(ctx, repo, args[0])
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")
		matches, err := repo.ListRecent(ctx, limit)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list matches")
		}
		for _, m := range matches {
			winner := "draw"
			if m.Winner != 0 {
				winner = fmt.Sprintf("player %d", m.Winner)
			}
			fmt.Printf("%s  %-20s %-9s %-9s %s\n",
				m.CreatedAt.Format(time.RFC3339), m.Name, m.Status, winner,
				time.Duration(m.DurationMS)*time.Millisecond)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	matchesCmd.Flags().Int("limit", 20, "Maximum matches to list")
}

func showMatch(ctx context.Context, repo *postgres.MatchRepo, id string) {
	m, err := repo.FindByID(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load match")
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "match %s not found\n", id)
		os.Exit(1)
	}

	fmt.Printf("%s (%s, seed %d)\n", m.Name, m.Status, m.MapSeed)
	for _, p := range m.Players {
		civ := p.Civilization
		if civ == "" {
			civ = "-"
		}
		fmt.Printf("  player %d: %s / %s\n", p.Player, p.Difficulty, civ)
	}

	samples, err := repo.SamplesByMatch(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load samples")
	}
	for _, s := range samples {
		fmt.Printf("  %8s  p%d  age %d  pop %3d  mil %3d  bld %3d  %s\n",
			time.Duration(s.ElapsedMS)*time.Millisecond, s.Player,
			s.Age, s.Population, s.Military, s.Buildings, string(s.Stock))
	}
}
