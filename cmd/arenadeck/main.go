// Command arenadeck exports MTG Arena deck lists from Player.log.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "arenadeck",
	Short: "Export MTG Arena decks from Player.log",
	Long: `arenadeck follows the MTG Arena Player.log, extracts the deck lists the
client writes into it and exports every new deck state as JSON, text and
MTGA import files.

Run "arenadeck run" to start the daemon, or "arenadeck scan" for a one-shot
parse of a log file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default: $ARENADECK_CONFIG, config/daemon.yaml, daemon.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
