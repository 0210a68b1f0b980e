package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"textvec/internal/chunker"
	"textvec/internal/config"
	"textvec/internal/embedding"
	"textvec/internal/service"
	"textvec/internal/vectorstore/memory"
)

var (
	cfg     *config.AppConfig
	cfgPath string
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:           "textvec",
		Short:         "Turn short texts into 2D points",
		Long:          "textvec encodes texts with TF-IDF or a sentence-embedding model, reduces them to two dimensions with PCA and shows where they land.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgPath == "" {
				cfg, _, err = config.LoadDefault()
			} else {
				cfg, err = config.Load(cfgPath)
			}
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./textvec.yaml or ~/.config/textvec/config.yaml)")

	rootCmd.AddCommand(
		convertCmd(),
		similarityCmd(),
		modelsCmd(),
		tuiCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newService assembles the service from the loaded config. The model
// provider is only built when needsProvider is set.
func newService(logger *slog.Logger, needsProvider bool) (*service.Service, error) {
	splitter, err := chunker.New(cfg.Input.Split)
	if err != nil {
		return nil, err
	}
	var svc *service.Service
	if needsProvider {
		provider, err := embedding.NewProvider(cfg.Encoder.Semantic, logger)
		if err != nil {
			return nil, err
		}
		svc = service.NewService(cfg.Encoder, provider, splitter, memory.NewStorage(), logger)
	} else {
		svc = service.NewService(cfg.Encoder, nil, splitter, memory.NewStorage(), logger)
	}
	return svc, nil
}
