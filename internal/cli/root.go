package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/enigma29/cluehunt/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "cluehunt",
		Short: "CLI client for the Enigma 29 clue hunt",
		Long: `cluehunt is the client for the Enigma 29 classroom clue hunt.

Players join a game with an access code, view their team's question board,
submit answers, and watch the leaderboard. Game masters manage questions
and access codes through the admin subcommands.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = factory.New(cfg.FactoryConfig())
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.StorageType, "storage", cfg.StorageType, "Storage backend: memory, redis (env: CLUEHUNT_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (env: CLUEHUNT_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.Home, "home", cfg.Home, "Directory for local session state (env: CLUEHUNT_HOME)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newAnswerCmd())
	rootCmd.AddCommand(newHintCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newEndCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
