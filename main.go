package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/config"
)

var (
	cfg        config.Config
	logger     *zap.Logger
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "threadprep",
	Short: "Turn Hacker News comment threads into a labeled dataset",
	Long: `threadprep collects comment threads, labels them and exports a flat
dataset in which every comment carries its thread id, its nearest
ancestors as context and the images it or an ancestor linked to.

Typical flow:
  threadprep fetch --topic rust
  threadprep annotate
  threadprep build
  threadprep browse`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		// The TUI owns the terminal.
		if cmd.Name() == "browse" {
			zc.OutputPaths = []string{cfg.LogPath}
			zc.ErrorOutputPaths = []string{cfg.LogPath}
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(fetchCmd, annotateCmd, buildCmd, browseCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDB() (*cache.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}
	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, nil
}
