package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"textvec/internal/domain"
	"textvec/internal/embedding/semantic"
	"textvec/internal/service"
)

func convertCmd() *cobra.Command {
	var (
		method   string
		model    string
		format   string
		output   string
		topTerms int
	)
	cmd := &cobra.Command{
		Use:   "convert [file ...]",
		Short: "Convert texts to 2D points",
		Long:  "Reads texts from the given files (or stdin), splits them per the input.split setting and prints their 2D coordinates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "csv", "yaml":
			default:
				return fmt.Errorf("unknown format %q (available: table, csv, yaml)", format)
			}
			if method == "" {
				method = cfg.Encoder.Type
			}
			if topTerms > 0 && method == semantic.Name {
				return fmt.Errorf("--top-terms needs the tfidf encoder")
			}

			raw, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			logger := newLogger()
			svc, err := newService(logger, method == semantic.Name)
			if err != nil {
				return err
			}
			res, err := svc.Convert(cmd.Context(), method, model, svc.Split(raw))
			if err != nil {
				return err
			}

			write := func(w io.Writer) error {
				switch format {
				case "csv":
					return service.WriteCSV(w, res)
				case "yaml":
					return writeYAML(w, res)
				default:
					return writeTable(w, res)
				}
			}
			if output != "" {
				err = writeFile(output, write)
			} else {
				err = write(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if topTerms > 0 {
				return writeTopTerms(cmd.OutOrStdout(), svc, res, topTerms)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "encoder: tfidf or semantic (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "semantic model name (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, csv or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().IntVar(&topTerms, "top-terms", 0, "also list the k heaviest TF-IDF terms of every text")
	return cmd
}

func readInputs(stdin io.Reader, paths []string) (string, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n"), nil
}

// writeFile creates path and hands it to write. The close error is returned
// when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeTable(w io.Writer, res *service.Result) error {
	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = []string{strconv.Itoa(i + 1), r.Text, fmt4(r.X), fmt4(r.Y), fmt4(r.Magnitude)}
	}
	t := newTable("#", "Text", "X", "Y", "Magnitude").Rows(rows...)
	meta := res.Metadata
	_, err := fmt.Fprintf(w, "%s\n%s: %d → %d dimensions, explained variance %.1f%%\n",
		t.Render(), meta.Method, meta.OriginalDimensions, meta.ReducedDimensions, meta.TotalExplainedVariance*100)
	if err != nil {
		return err
	}
	if res.Explanation != "" {
		_, err = fmt.Fprintln(w, res.Explanation)
	}
	return err
}

// newTable returns a bordered table with one column of padding around every
// cell. lipgloss truncates with a "…" tail that needs a spare column, so a cell
// exactly as wide as its column would lose its last character.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		// a fresh style per cell: the table sets sizes on the style it gets
		StyleFunc(func(_, _ int) lipgloss.Style { return lipgloss.NewStyle().Padding(0, 1) }).
		Headers(headers...)
}

type yamlPoint struct {
	Text      string  `yaml:"text"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Magnitude float64 `yaml:"magnitude"`
}

type yamlResult struct {
	Metadata domain.Metadata `yaml:"metadata"`
	Points   []yamlPoint     `yaml:"points"`
}

func writeYAML(w io.Writer, res *service.Result) error {
	out := yamlResult{Metadata: res.Metadata, Points: make([]yamlPoint, len(res.Rows))}
	for i, r := range res.Rows {
		out.Points[i] = yamlPoint{Text: res.Texts[i], X: r.X, Y: r.Y, Magnitude: r.Magnitude}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func writeTopTerms(w io.Writer, svc *service.Service, res *service.Result, k int) error {
	for i, text := range res.Texts {
		terms, err := svc.TopTerms(text, k)
		if err != nil {
			return err
		}
		parts := make([]string, len(terms))
		for j, tw := range terms {
			parts[j] = fmt.Sprintf("%s (%.3f)", tw.Term, tw.Weight)
		}
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func fmt4(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
