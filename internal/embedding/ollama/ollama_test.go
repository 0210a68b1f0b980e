package ollama

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndEncode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		if req.Model != "all-minilm" {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
			return
		}
		out := embedResponse{}
		for _, text := range req.Input {
			out.Embeddings = append(out.Embeddings, []float64{float64(len(text)), 1})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL + "/"}, nil)
	m, err := p.Load(context.Background(), "all-minilm")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimension())

	vecs, err := m.Encode(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1}, {3, 1}}, vecs)

	_, err = p.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{0.5, 0.5}}})
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, MaxRetries: 2}, nil)
	m, err := p.Load(context.Background(), "all-minilm")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimension())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, MaxRetries: 1}, nil)
	_, err := p.Load(context.Background(), "all-minilm")
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMismatchedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer server.Close()

	_, err := NewProvider(Config{BaseURL: server.URL}, nil).Load(context.Background(), "all-minilm")
	require.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(10))
	assert.Equal(t, 200*time.Millisecond, retryDelay(-3))
	for _, attempt := range []int{36, 64, 100, math.MaxInt} {
		assert.Equal(t, 5*time.Second, retryDelay(attempt), "attempt %d", attempt)
	}
}
