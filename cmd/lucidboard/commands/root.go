package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lucidboard",
	Short: "Lucidboard - Collaborative card boards over Redis",
	Long: `Lucidboard serves collaborative card boards: columns of cards that
many users rearrange, pile up, combine and vote on at once.

Board state lives in Redis; every change is broadcast over Redis Pub/Sub so
all connected clients converge on the same arrangement.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
