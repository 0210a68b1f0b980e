package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func similarityCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "similarity <text> <text>",
		Short: "Cosine similarity of two texts under a sentence-embedding model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(newLogger(), true)
			if err != nil {
				return err
			}
			sim, err := svc.Similarity(cmd.Context(), model, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", sim)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "semantic model name (default from config)")
	return cmd
}
