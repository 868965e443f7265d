package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wsharp07/lucidboard/internal/printer"
)

var forceInit bool

const starterConfig = `version: "1.0"

# HTTP listen address
listen: ":3000"

redis:
  addr: "localhost:6379"
  # password: ""
  # db: 0
  # Key prefix; lets several deployments share one Redis server
  namespace: "default"

# Column-set presets offered when creating a board. Omit for the built-in
# retrospective set.
colsets:
  - id: 1
    name: "Retrospective"
    columns: ["Went Well", "To Improve", "Action Items"]
  - id: 2
    name: "Kanban"
    columns: ["To Do", "Doing", "Done"]
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter lucidboard.yml",
	Long: `Create a starter lucidboard.yml in the current directory.

The generated file carries the default listen address, a local Redis
connection and two example column-set presets.

Use --force to overwrite an existing lucidboard.yml.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing lucidboard.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if _, err := os.Stat("lucidboard.yml"); err == nil {
			return printer.Error("lucidboard.yml already exists",
				"A configuration file is already present in this directory.",
				[]string{"Edit the existing file", "Re-run with --force to overwrite it"})
		}
	}

	if err := os.WriteFile("lucidboard.yml", []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to write lucidboard.yml: %w", err)
	}

	printer.Success("Created lucidboard.yml\n")
	printer.Info("Next: start the server with 'lucidboard serve'\n")
	return nil
}
