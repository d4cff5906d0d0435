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
		Use:   "lineupctl",
		Short: "CLI tool for the lineup sheet API",
		Long: `lineupctl is a CLI tool for interacting with the lineup sheet JSON API.

It creates shareable lineups, shows them, and claims or releases slots on
behalf of a participant id that is generated once and kept in a local file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL)
			if cfg.Verbose {
				client.trace = cmd.ErrOrStderr()
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LINEUPCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Participant, "participant", cfg.Participant, "Participant id (env: LINEUPCTL_PARTICIPANT)")
	rootCmd.PersistentFlags().StringVar(&cfg.ParticipantFile, "participant-file", cfg.ParticipantFile, "Participant id file (env: LINEUPCTL_PARTICIPANT_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newClaimCmd())
	rootCmd.AddCommand(newUnclaimCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
