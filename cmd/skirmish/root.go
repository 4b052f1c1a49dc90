package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hearthland/stratagem/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "skirmish",
	Short: "Autonomous strategy engine arena",
	Long: `skirmish pits computer-controlled strategy engines against each other in
headless real-time matches, for difficulty tuning and regression runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database URL (or use DATABASE_URL env)")
	rootCmd.PersistentFlags().String("profiles", "", "Path to a tuning profile YAML file")
}
