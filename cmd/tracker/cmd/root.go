// Package cmd implements the tracker CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the CLI version reported by the version command.
const Version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:          "tracker",
	Short:        "Alpha Arena leaderboard tracker",
	Long:         "Scrapes the nof1.ai Alpha Arena leaderboard and model pages and persists the data to PostgreSQL.",
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
