package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/wsharp07/lucidboard/internal/config"
	"github.com/wsharp07/lucidboard/internal/printer"
	"github.com/wsharp07/lucidboard/pkg/board"
)

var (
	watchConfigPath string
	watchBoardID    int64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream one board's change events to the terminal",
	Long: `Stream one board's change events to the terminal.

Subscribes to the board's Pub/Sub channel and prints each event as it
arrives. Useful for debugging clients and watching a retro live.

Examples:
  # Watch board 3
  lucidboard watch --board 3`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "lucidboard.yml", "Path to the configuration file")
	watchCmd.Flags().Int64Var(&watchBoardID, "board", 0, "Board id to watch (required)")
	watchCmd.MarkFlagRequired("board")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(watchConfigPath)
	if err != nil {
		return printer.Error("Cannot load configuration", err.Error(), []string{
			"Run 'lucidboard init' to create a starter lucidboard.yml",
			"Pass --config with the path to an existing file",
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := board.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.Namespace)
	if err != nil {
		return err
	}
	defer store.Close()

	// Fail fast when the board doesn't exist rather than watching silence.
	if _, err := store.GetBoard(ctx, watchBoardID); err != nil {
		if board.IsNotFound(err) {
			return printer.Error("Board not found",
				"No board with that id exists in this namespace.",
				[]string{"List boards with: curl <server>/boards"})
		}
		return err
	}

	sub, err := store.Subscribe(ctx, watchBoardID)
	if err != nil {
		return err
	}
	defer sub.Close()

	printer.Step("Watching board %d (Ctrl-C to stop)\n", watchBoardID)

	for {
		select {
		case <-ctx.Done():
			printer.Println()
			return nil
		case err := <-sub.Errors():
			if err != nil {
				printer.Warning("%v\n", err)
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			printer.Event(ev)
		}
	}
}
