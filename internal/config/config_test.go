package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Encoder.Type)
	assert.Equal(t, 1000, cfg.Encoder.TFIDF.MaxFeatures)
	assert.Equal(t, 1, cfg.Encoder.TFIDF.NGramMin)
	assert.Equal(t, 2, cfg.Encoder.TFIDF.NGramMax)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Encoder.Semantic.Model)
	assert.Equal(t, "openai", cfg.Encoder.Semantic.Provider)
	require.NotNil(t, cfg.Encoder.Semantic.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Encoder.Semantic.OpenAI.APIKeyEnv)
	assert.Equal(t, "lines", cfg.Input.Split)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textvec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
encoder:
  type: semantic
  semantic:
    model: all-mpnet-base-v2
    provider: ollama
input:
  split: sentences
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "semantic", cfg.Encoder.Type)
	assert.Equal(t, "all-mpnet-base-v2", cfg.Encoder.Semantic.Model)
	require.NotNil(t, cfg.Encoder.Semantic.Ollama)
	assert.Equal(t, "http://localhost:11434", cfg.Encoder.Semantic.Ollama.BaseURL)
	assert.Equal(t, 3, cfg.Encoder.Semantic.Ollama.MaxRetries)
	assert.Nil(t, cfg.Encoder.Semantic.OpenAI)
	assert.Equal(t, "sentences", cfg.Input.Split)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"encoder":  "encoder:\n  type: word2vec\n",
		"provider": "encoder:\n  semantic:\n    provider: hub\n",
		"split":    "input:\n  split: words\n",
		"ngram":    "encoder:\n  tfidf:\n    ngram_min: 3\n    ngram_max: 2\n",
		"format":   "logging:\n  format: xml\n",
		"yaml":     "encoder: [",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Encoder.TFIDF.MaxFeatures = 42
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "textvec", "config.yaml"), path)
	assert.Equal(t, "tfidf", cfg.Encoder.Type)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile("textvec.yaml", []byte("encoder:\n  type: semantic\n"), 0o644))
	cfg, path, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "textvec.yaml", path)
	assert.Equal(t, "semantic", cfg.Encoder.Type)
}
