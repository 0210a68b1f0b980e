// Package embedding assembles the encoders and model providers named in the
// configuration.
package embedding

import (
	"fmt"
	"log/slog"
	"time"

	"textvec/internal/config"
	"textvec/internal/domain"
	"textvec/internal/embedding/ollama"
	"textvec/internal/embedding/openai"
	"textvec/internal/embedding/semantic"
	"textvec/internal/embedding/tfidf"
)

// Names lists the encoders that New can build.
func Names() []string { return []string{tfidf.Name, semantic.Name} }

// NewProvider builds the semantic model provider selected by cfg.Provider.
func NewProvider(cfg config.SemanticConfig, logger *slog.Logger) (semantic.Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		oc := config.OpenAIConfig{}
		if cfg.OpenAI != nil {
			oc = *cfg.OpenAI
		}
		return openai.NewProvider(openai.Config{
			BaseURL:    oc.BaseURL,
			APIKeyEnv:  oc.APIKeyEnv,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
			BatchSize:  oc.BatchSize,
			MaxRetries: oc.MaxRetries,
		}, logger), nil
	case "ollama":
		oc := config.OllamaConfig{}
		if cfg.Ollama != nil {
			oc = *cfg.Ollama
		}
		return ollama.NewProvider(ollama.Config{
			BaseURL:    oc.BaseURL,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries: oc.MaxRetries,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q (available: openai, ollama)", cfg.Provider)
	}
}

// New builds the encoder called name. model overrides the configured semantic
// model when non-empty; provider is only used by the semantic encoder.
func New(name string, cfg config.EncoderConfig, model string, provider semantic.Provider, logger *slog.Logger) (domain.Encoder, error) {
	switch name {
	case tfidf.Name:
		return tfidf.NewEncoder(
			tfidf.WithMaxFeatures(cfg.TFIDF.MaxFeatures),
			tfidf.WithNGramRange(cfg.TFIDF.NGramMin, cfg.TFIDF.NGramMax),
			tfidf.WithLogger(logger),
		), nil
	case semantic.Name:
		if model == "" {
			model = cfg.Semantic.Model
		}
		return semantic.NewEncoder(provider, model, logger), nil
	default:
		return nil, fmt.Errorf("unknown encoder %q (available: %s, %s)", name, tfidf.Name, semantic.Name)
	}
}
