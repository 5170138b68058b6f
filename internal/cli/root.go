package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "committy",
		Short: "CLI tool for the Committy card game API",
		Long: `committy is a CLI tool for interacting with the Committy JSON API.

It covers the card catalog, shareable sessions, verdicts and precedents,
and the admin report queue. Session tokens can also be encoded and decoded
locally without a server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load the admin key from file if not provided via flag/env
			if err := cfg.LoadAdminKey(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.AdminKey)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: COMMITTY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminKey, "admin-key", cfg.AdminKey, "Admin key (env: COMMITTY_ADMIN_KEY)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminKeyFile, "admin-key-file", cfg.AdminKeyFile, "Admin key file path (env: COMMITTY_ADMIN_KEY_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output (env: NO_COLOR)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newMatchupCmd())
	rootCmd.AddCommand(newVerdictCmd())
	rootCmd.AddCommand(newPrecedentCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.NoColor)
}
