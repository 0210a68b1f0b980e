package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"textvec/internal/chunker"
	"textvec/internal/config"
	"textvec/internal/embedding/semantic"
	"textvec/internal/service"
	"textvec/internal/vectorstore/memory"
)

func TestReadInputs(t *testing.T) {
	got, err := readInputs(strings.NewReader("a\nb"), nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.txt")
	p2 := filepath.Join(dir, "two.txt")
	require.NoError(t, os.WriteFile(p1, []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("second"), 0o644))
	got, err = readInputs(nil, []string{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)

	_, err = readInputs(nil, []string{filepath.Join(dir, "missing.txt")})
	require.Error(t, err)
}

func convertSample(t *testing.T) (*service.Service, *service.Result) {
	t.Helper()
	c := config.EncoderConfig{Type: "tfidf", TFIDF: config.TFIDFConfig{MaxFeatures: 1000, NGramMin: 1, NGramMax: 2}}
	svc := service.NewService(c, nil, chunker.NewLineSplitter(), memory.NewStorage(), nil)
	res, err := svc.Convert(context.Background(), "tfidf", "", []string{
		"I love pizza", "Pizza is delicious", "I enjoy reading books", "Books are educational",
	})
	require.NoError(t, err)
	return svc, res
}

func TestWriteYAML(t *testing.T) {
	_, res := convertSample(t)
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, res))

	var back yamlResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "fitted", back.Metadata.Status)
	require.Len(t, back.Points, 4)
	assert.Equal(t, "I love pizza", back.Points[0].Text)
}

func TestWriteTable(t *testing.T) {
	_, res := convertSample(t)
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "Magnitude")
	assert.Contains(t, out, "explained variance")
	assert.Contains(t, out, res.Explanation)
	assert.NotContains(t, out, "…", "no cell is cut off")
	for i, r := range res.Rows {
		assert.Contains(t, out, r.Text)
		assert.Contains(t, out, " "+strconv.Itoa(i+1)+" ")
		for _, v := range []float64{r.X, r.Y, r.Magnitude} {
			assert.Contains(t, out, " "+fmt4(v)+" ")
		}
	}
}

func TestWriteModels(t *testing.T) {
	models := service.NewService(config.EncoderConfig{}, nil, chunker.NewLineSplitter(), memory.NewStorage(), nil).Models()
	var buf bytes.Buffer
	require.NoError(t, writeModels(&buf, models, semantic.DefaultModel))
	out := buf.String()
	assert.NotContains(t, out, "…")
	assert.Contains(t, out, semantic.DefaultModel+" *")
	for _, m := range models {
		assert.Contains(t, out, m.Name)
		assert.Contains(t, out, m.Speed)
		assert.Contains(t, out, m.Quality)
		assert.Contains(t, out, m.Description)
	}
}

func TestWriteFile(t *testing.T) {
	_, res := convertSample(t)
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, writeFile(path, func(w io.Writer) error { return service.WriteCSV(w, res) }))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Text,X Coordinate"))

	failed := errors.New("write failed")
	err = writeFile(filepath.Join(t.TempDir(), "x.csv"), func(io.Writer) error { return failed })
	require.ErrorIs(t, err, failed)

	// a directory cannot be created as a file
	err = writeFile(t.TempDir(), func(io.Writer) error { return nil })
	require.Error(t, err)
}

func TestWriteTopTerms(t *testing.T) {
	svc, res := convertSample(t)
	var buf bytes.Buffer
	require.NoError(t, writeTopTerms(&buf, svc, res, 2))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "1. "))
	assert.Contains(t, lines[1], "pizza")
}
