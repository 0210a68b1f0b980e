// Package ollama provides sentence-embedding models served by Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"textvec/internal/embedding/semantic"
)

const (
	defaultBaseURL = "http://localhost:11434"
	probeText      = "probe"
)

// Config configures the Ollama provider.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Provider loads models from an Ollama server.
type Provider struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// NewProvider creates a provider for the given server.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: t},
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Load materialises model by encoding a probe text. Ollama answers unknown
// models with 404, which fails the load without retries.
func (p *Provider) Load(ctx context.Context, model string) (semantic.Model, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ollama provider: model is required")
	}
	m := &Model{provider: p, name: model}
	vecs, err := m.Encode(ctx, []string{probeText})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", model, err)
	}
	m.dimension = len(vecs[0])
	return m, nil
}

// Model is a loaded Ollama model.
type Model struct {
	provider  *Provider
	name      string
	dimension int
}

// Name returns the model identifier.
func (m *Model) Name() string { return m.name }

// Dimension returns the embedding size observed when the model was loaded.
func (m *Model) Dimension() int { return m.dimension }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// statusError is a non-retryable HTTP failure.
type statusError struct {
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ollama embed failed: %s: %s", e.status, e.body)
}

// Encode returns one vector per text in input order.
func (m *Model) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errors.New("ollama provider: no texts provided")
	}
	data, err := json.Marshal(embedRequest{Model: m.name, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	p := m.provider
	url := p.baseURL + "/api/embed"
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Debug("retrying embed request", "model", m.name, "attempt", attempt, "error", lastErr)
		}
		out, wait, err := m.do(ctx, url, data)
		if err == nil {
			if len(out.Embeddings) != len(texts) {
				return nil, fmt.Errorf("ollama provider: expected %d vectors got %d", len(texts), len(out.Embeddings))
			}
			for i, v := range out.Embeddings {
				if len(v) == 0 {
					return nil, fmt.Errorf("ollama provider: empty embedding for text %d", i)
				}
			}
			return out.Embeddings, nil
		}
		var se *statusError
		if errors.As(err, &se) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		if attempt == p.maxRetries {
			break
		}
		if wait == 0 {
			wait = retryDelay(attempt)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// do performs one request. A retryable failure comes back with the delay the
// server asked for, if any.
func (m *Model) do(ctx context.Context, url string, body []byte) (*embedResponse, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &statusError{status: "invalid request", body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.provider.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var wait time.Duration
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return nil, wait, fmt.Errorf("ollama embed failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, 0, &statusError{status: resp.Status, body: strings.TrimSpace(string(payload))}
	}
	var out embedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, 0, &statusError{status: resp.Status, body: "decoding response: " + err.Error()}
	}
	return &out, 0, nil
}

func retryDelay(attempt int) time.Duration {
	// exponential backoff capped at 5s; 200ms<<5 is already past the cap
	attempt = max(0, min(attempt, 5))
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
