// Package openai provides sentence-embedding models served behind an
// OpenAI-compatible embeddings endpoint, such as a text-embeddings-inference
// server hosting sentence-transformers models.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"textvec/internal/embedding/semantic"
)

const (
	defaultBaseURL   = "http://localhost:8080/v1"
	defaultBatchSize = 32
	probeText        = "probe"
)

// Config configures the OpenAI-compatible provider.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Timeout    time.Duration
	BatchSize  int
	MaxRetries int
	// Options are appended to the SDK request options.
	Options []option.RequestOption
}

// Provider loads models from an OpenAI-compatible server.
type Provider struct {
	client    openaisdk.Client
	batchSize int
	logger    *slog.Logger
}

// NewProvider creates a provider. The API key is read from cfg.APIKeyEnv;
// local servers usually accept any key, so a missing one is not an error.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	key := ""
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if strings.TrimSpace(key) == "" {
		key = "unused"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	opts = append(opts, cfg.Options...)
	return &Provider{
		client:    openaisdk.NewClient(opts...),
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
}

// Load materialises model by encoding a probe text, which also fixes the
// model dimension.
func (p *Provider) Load(ctx context.Context, model string) (semantic.Model, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openai provider: model is required")
	}
	m := &Model{client: p.client, name: model, batchSize: p.batchSize, logger: p.logger}
	vecs, err := m.Encode(ctx, []string{probeText})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", model, err)
	}
	if len(vecs[0]) == 0 {
		return nil, fmt.Errorf("loading %s: empty embedding", model)
	}
	m.dimension = len(vecs[0])
	return m, nil
}

// Model is a loaded remote model.
type Model struct {
	client    openaisdk.Client
	name      string
	dimension int
	batchSize int
	logger    *slog.Logger
}

// Name returns the model identifier.
func (m *Model) Name() string { return m.name }

// Dimension returns the embedding size observed when the model was loaded.
func (m *Model) Dimension() int { return m.dimension }

// Encode converts texts into dense vectors, preserving input order.
func (m *Model) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errors.New("openai provider: no texts provided")
	}
	result := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += m.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+m.batchSize, len(texts))
		chunk := texts[start:end]
		resp, err := m.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
			Model: openaisdk.EmbeddingModel(m.name),
			Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunk},
		})
		if err != nil {
			return nil, fmt.Errorf("openai embed request: %w", err)
		}
		if len(resp.Data) != len(chunk) {
			return nil, fmt.Errorf("openai provider: expected %d vectors got %d", len(chunk), len(resp.Data))
		}
		data := resp.Data
		sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		for _, d := range data {
			if m.dimension > 0 && len(d.Embedding) != m.dimension {
				return nil, fmt.Errorf("openai provider: expected dimension %d got %d", m.dimension, len(d.Embedding))
			}
			result = append(result, append([]float64(nil), d.Embedding...))
		}
		m.logger.Debug("encoded batch", "model", m.name, "size", len(chunk))
	}
	return result, nil
}
