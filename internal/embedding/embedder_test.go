package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textvec/internal/config"
	"textvec/internal/embedding/ollama"
	"textvec/internal/embedding/openai"
	"textvec/internal/embedding/semantic"
	"textvec/internal/embedding/tfidf"
)

func TestNewSelectsEncoder(t *testing.T) {
	cfg := config.EncoderConfig{
		TFIDF:    config.TFIDFConfig{MaxFeatures: 10, NGramMin: 1, NGramMax: 1},
		Semantic: config.SemanticConfig{Model: "all-mpnet-base-v2"},
	}

	enc, err := New("tfidf", cfg, "", nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &tfidf.Encoder{}, enc)

	enc, err = New("semantic", cfg, "", nil, nil)
	require.NoError(t, err)
	require.IsType(t, &semantic.Encoder{}, enc)
	assert.Equal(t, "all-mpnet-base-v2", enc.(*semantic.Encoder).ModelName())

	enc, err = New("semantic", cfg, "paraphrase-MiniLM-L6-v2", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "paraphrase-MiniLM-L6-v2", enc.(*semantic.Encoder).ModelName())

	_, err = New("bert", cfg, "", nil, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"tfidf", "semantic"}, Names())
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.SemanticConfig{Provider: "openai"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewProvider(config.SemanticConfig{Provider: "ollama", Ollama: &config.OllamaConfig{BaseURL: "http://ollama:11434"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ollama.Provider{}, p)

	_, err = NewProvider(config.SemanticConfig{Provider: "hub"}, nil)
	require.Error(t, err)
}
