package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TFIDFConfig configures the lexical encoder.
type TFIDFConfig struct {
	MaxFeatures int `yaml:"max_features"`
	NGramMin    int `yaml:"ngram_min"`
	NGramMax    int `yaml:"ngram_max"`
}

// OpenAIConfig holds configuration for the OpenAI-compatible model provider.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
	MaxRetries  int    `yaml:"max_retries"`
}

// OllamaConfig holds configuration for the Ollama model provider.
type OllamaConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// SemanticConfig configures the semantic encoder and its model provider.
type SemanticConfig struct {
	Model    string        `yaml:"model"`
	Provider string        `yaml:"provider"`
	OpenAI   *OpenAIConfig `yaml:"openai,omitempty"`
	Ollama   *OllamaConfig `yaml:"ollama,omitempty"`
}

// EncoderConfig selects the default encoder and configures both.
type EncoderConfig struct {
	Type     string         `yaml:"type"`
	TFIDF    TFIDFConfig    `yaml:"tfidf"`
	Semantic SemanticConfig `yaml:"semantic"`
}

// InputConfig controls how raw input is split into texts.
type InputConfig struct {
	Split string `yaml:"split"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Encoder EncoderConfig `yaml:"encoder"`
	Input   InputConfig   `yaml:"input"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./textvec.yaml first, then ~/.config/textvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/textvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "textvec.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown encoder, provider, split and logging values.
func (c *AppConfig) Validate() error {
	switch c.Encoder.Type {
	case "tfidf", "semantic":
	default:
		return fmt.Errorf("unknown encoder type %q (available: tfidf, semantic)", c.Encoder.Type)
	}
	switch c.Encoder.Semantic.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown model provider %q (available: openai, ollama)", c.Encoder.Semantic.Provider)
	}
	switch c.Input.Split {
	case "lines", "sentences":
	default:
		return fmt.Errorf("unknown input split %q (available: lines, sentences)", c.Input.Split)
	}
	if c.Encoder.TFIDF.NGramMax < c.Encoder.TFIDF.NGramMin {
		return fmt.Errorf("tfidf ngram_max %d is below ngram_min %d", c.Encoder.TFIDF.NGramMax, c.Encoder.TFIDF.NGramMin)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q (available: text, json)", c.Logging.Format)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "textvec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Encoder.Type == "" {
		cfg.Encoder.Type = "tfidf"
	}
	t := &cfg.Encoder.TFIDF
	if t.MaxFeatures == 0 {
		t.MaxFeatures = 1000
	}
	if t.NGramMin == 0 {
		t.NGramMin = 1
	}
	if t.NGramMax == 0 {
		t.NGramMax = max(2, t.NGramMin)
	}
	s := &cfg.Encoder.Semantic
	if s.Model == "" {
		s.Model = "all-MiniLM-L6-v2"
	}
	if s.Provider == "" {
		s.Provider = "openai"
	}
	switch s.Provider {
	case "openai":
		if s.OpenAI == nil {
			s.OpenAI = &OpenAIConfig{}
		}
		if s.OpenAI.BaseURL == "" {
			s.OpenAI.BaseURL = "http://localhost:8080/v1"
		}
		if s.OpenAI.APIKeyEnv == "" {
			s.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if s.OpenAI.TimeoutSecs == 0 {
			s.OpenAI.TimeoutSecs = 30
		}
		if s.OpenAI.BatchSize == 0 {
			s.OpenAI.BatchSize = 32
		}
	case "ollama":
		if s.Ollama == nil {
			s.Ollama = &OllamaConfig{}
		}
		if s.Ollama.BaseURL == "" {
			s.Ollama.BaseURL = "http://localhost:11434"
		}
		if s.Ollama.TimeoutSecs == 0 {
			s.Ollama.TimeoutSecs = 30
		}
		if s.Ollama.MaxRetries == 0 {
			s.Ollama.MaxRetries = 3
		}
	}
	if cfg.Input.Split == "" {
		cfg.Input.Split = "lines"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
