package main

import (
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"textvec/internal/tui"
)

const tuiLogFile = "textvec-debug.log"

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive editor with a live 2D map of the texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr belongs to the terminal UI; debug logs go to a file
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if cfg.Logging.Level == "debug" {
				f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			svc, err := newService(logger, true)
			if err != nil {
				return err
			}
			m := tui.New(cmd.Context(), svc, cfg.Encoder.Semantic.Model)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
