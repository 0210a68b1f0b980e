package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"textvec/internal/embedding/semantic"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the known sentence-embedding models",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(newLogger(), false)
			if err != nil {
				return err
			}
			return writeModels(cmd.OutOrStdout(), svc.Models(), cfg.Encoder.Semantic.Model)
		},
	}
}

// writeModels prints the catalog and marks the configured model with " *".
func writeModels(w io.Writer, models []semantic.ModelInfo, current string) error {
	t := newTable("Model", "Dims", "Speed", "Quality", "Description")
	for _, m := range models {
		name := m.Name
		if name == current {
			name += " *"
		}
		t.Row(name, m.Dimensions, m.Speed, m.Quality, m.Description)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
