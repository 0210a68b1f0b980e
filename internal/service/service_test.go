package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textvec/internal/chunker"
	"textvec/internal/config"
	"textvec/internal/domain"
	"textvec/internal/embedding/semantic"
	"textvec/internal/vectorstore/memory"
)

type wordModel struct{ name string }

func (m wordModel) Name() string   { return m.name }
func (m wordModel) Dimension() int { return 3 }

func (m wordModel) Encode(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		v := []float64{0.1, 0.1, 0.1}
		if strings.Contains(t, "cat") {
			v[0] += 1
		}
		if strings.Contains(t, "pizza") {
			v[1] += 1
		}
		if strings.Contains(t, "book") {
			v[2] += 1
		}
		out[i] = v
	}
	return out, nil
}

type stubProvider struct{ loads int }

func (p *stubProvider) Load(_ context.Context, model string) (semantic.Model, error) {
	p.loads++
	if model != semantic.DefaultModel {
		return nil, errors.New("no such model")
	}
	return wordModel{name: model}, nil
}

var sample = []string{
	"I love cats",
	"Cats are wonderful pets",
	"I love pizza",
	"Pizza is delicious food",
	"Books are great",
	"Reading books is fun",
}

func newTestService(t *testing.T, provider semantic.Provider) *Service {
	t.Helper()
	cfg := config.EncoderConfig{
		Type:     "tfidf",
		TFIDF:    config.TFIDFConfig{MaxFeatures: 1000, NGramMin: 1, NGramMax: 2},
		Semantic: config.SemanticConfig{Model: semantic.DefaultModel},
	}
	return NewService(cfg, provider, chunker.NewLineSplitter(), memory.NewStorage(), nil)
}

func TestConvertBuildsRows(t *testing.T) {
	s := newTestService(t, nil)
	res, err := s.Convert(context.Background(), "", "", sample)
	require.NoError(t, err)

	assert.Equal(t, "tfidf", res.Method)
	require.Len(t, res.Rows, len(sample))
	require.Len(t, res.Points, len(sample))
	for i, r := range res.Rows {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, sample[i], r.Text)
		assert.GreaterOrEqual(t, r.Magnitude, 0.0)
	}
	assert.Equal(t, domain.StatusFitted, res.Metadata.Status)
	assert.Contains(t, res.Explanation, "TF-IDF")
	assert.Same(t, res, s.Last())
}

func TestReset(t *testing.T) {
	store := memory.NewStorage()
	s := NewService(config.EncoderConfig{Type: "tfidf"}, nil, chunker.NewLineSplitter(), store, nil)
	_, err := s.Convert(context.Background(), "", "", sample)
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	assert.Nil(t, s.Last())
	_, err = s.Neighbors(0, 1)
	require.ErrorIs(t, err, ErrNoResult)
	found, err := store.Search([]float64{0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, found)

	// the fitted encoder survives and a new conversion works
	_, err = s.TopTerms(sample[0], 1)
	require.NoError(t, err)
	_, err = s.Convert(context.Background(), "", "", sample)
	require.NoError(t, err)
	assert.NotNil(t, s.Last())
}

func TestConvertRejectsSmallBatches(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.Convert(context.Background(), "tfidf", "", nil)
	require.ErrorIs(t, err, ErrNoTexts)
	_, err = s.Convert(context.Background(), "tfidf", "", []string{"alone"})
	require.ErrorIs(t, err, ErrTooFewTexts)
	assert.Nil(t, s.Last())
}

func TestEncoderIsCached(t *testing.T) {
	p := &stubProvider{}
	s := newTestService(t, p)

	a, err := s.Encoder("tfidf", "")
	require.NoError(t, err)
	b, err := s.Encoder("", "")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = s.Convert(context.Background(), "semantic", "", sample)
	require.NoError(t, err)
	_, err = s.Convert(context.Background(), "semantic", semantic.DefaultModel, sample)
	require.NoError(t, err)
	assert.Equal(t, 1, p.loads)

	_, err = s.Encoder("word2vec", "")
	require.Error(t, err)
}

func TestSemanticWithoutProvider(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.Convert(context.Background(), "semantic", "", sample)
	require.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestNeighbors(t *testing.T) {
	s := newTestService(t, &stubProvider{})
	_, err := s.Neighbors(0, 2)
	require.ErrorIs(t, err, ErrNoResult)

	_, err = s.Convert(context.Background(), "semantic", "", sample)
	require.NoError(t, err)

	ns, err := s.Neighbors(0, 1)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, 1, ns[0].Index, "the other cat text is closest")

	ns, err = s.Neighbors(2, 10)
	require.NoError(t, err)
	assert.Len(t, ns, len(sample)-1)
	for _, n := range ns {
		assert.NotEqual(t, 2, n.Index)
	}

	_, err = s.Neighbors(len(sample), 1)
	require.Error(t, err)
}

func TestSimilarity(t *testing.T) {
	s := newTestService(t, &stubProvider{})
	same, err := s.Similarity(context.Background(), "", "cats", "a cat")
	require.NoError(t, err)
	diff, err := s.Similarity(context.Background(), "", "cats", "pizza")
	require.NoError(t, err)
	assert.Greater(t, same, diff)
}

func TestTopTerms(t *testing.T) {
	s := newTestService(t, nil)
	_, err := s.TopTerms("cats", 3)
	require.ErrorIs(t, err, domain.ErrNotFitted)

	_, err = s.Convert(context.Background(), "tfidf", "", sample)
	require.NoError(t, err)
	terms, err := s.TopTerms("Cats are wonderful pets", 2)
	require.NoError(t, err)
	require.NotEmpty(t, terms)
	assert.LessOrEqual(t, len(terms), 2)
}

func TestModels(t *testing.T) {
	s := newTestService(t, nil)
	models := s.Models()
	require.Len(t, models, len(semantic.ListAvailableModels()))
	assert.Equal(t, semantic.DefaultModel, models[0].Name)
}

func TestSplit(t *testing.T) {
	s := newTestService(t, nil)
	assert.Equal(t, []string{"one", "two"}, s.Split("one\n\n  two  \n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	long := strings.Repeat("é", 60)
	got := Truncate(long, 50)
	assert.Equal(t, strings.Repeat("é", 50)+"...", got)
}

func TestWriteCSV(t *testing.T) {
	res := &Result{Rows: []Row{
		{Text: "hello, world", X: 1.5, Y: -0.25, Magnitude: 1.5207},
		{Text: "plain", X: 0, Y: 0, Magnitude: 0},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"hello, world", "1.5", "-0.25", "1.5207"}, records[1])
	assert.Equal(t, []string{"plain", "0", "0", "0"}, records[2])
}
