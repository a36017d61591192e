package cmd

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tracker version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("tracker %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
