package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/wsharp07/lucidboard/internal/api"
	"github.com/wsharp07/lucidboard/internal/config"
	"github.com/wsharp07/lucidboard/internal/printer"
	"github.com/wsharp07/lucidboard/pkg/board"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Lucidboard HTTP server",
	Long: `Run the Lucidboard HTTP server.

Connects to Redis, then serves the board API on the configured listen
address. Every mutation is broadcast on the board's Pub/Sub channel.

Examples:
  # Serve with ./lucidboard.yml
  lucidboard serve

  # Serve with an explicit config file
  lucidboard serve --config /etc/lucidboard.yml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "lucidboard.yml", "Path to the configuration file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
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

	if err := store.Ping(ctx); err != nil {
		return printer.Error("Cannot reach Redis",
			fmt.Sprintf("Ping to %s failed: %v", cfg.Redis.Addr, err),
			[]string{"Check that Redis is running and redis.addr is correct"})
	}

	engine := board.NewEngine(store, colsetsFromConfig(cfg))
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: api.NewServer(engine, store),
	}

	errCh := make(chan error, 1)
	go func() {
		printer.Success("Lucidboard listening on %s (namespace %q)\n", cfg.Listen, cfg.Redis.Namespace)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[Serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// colsetsFromConfig maps configured column-set presets to engine colsets.
// An empty list falls through to the engine's built-in default.
func colsetsFromConfig(cfg *config.LucidConfig) []board.Colset {
	colsets := make([]board.Colset, len(cfg.Colsets))
	for i, cs := range cfg.Colsets {
		colsets[i] = board.Colset{ID: cs.ID, Name: cs.Name, Columns: cs.Columns}
	}
	return colsets
}
