package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"textvec/internal/config"
	"textvec/internal/domain"
	"textvec/internal/embedding"
	"textvec/internal/embedding/semantic"
	"textvec/internal/embedding/tfidf"
	"textvec/internal/vectorstore"
)

var (
	// ErrNoTexts is returned when a batch has no texts at all.
	ErrNoTexts = errors.New("no texts to convert")
	// ErrTooFewTexts is returned for batches with a single text.
	ErrTooFewTexts = errors.New("at least 2 texts are needed for a comparison")
	// ErrNoResult is returned by lookups made before any conversion.
	ErrNoResult = errors.New("nothing converted yet")
)

// Row is one line of the result table.
type Row struct {
	Index     int
	Text      string
	X         float64
	Y         float64
	Magnitude float64
}

// Result is the outcome of converting one batch.
type Result struct {
	Method      string
	Model       string
	Texts       []string
	Points      domain.Matrix
	Rows        []Row
	Metadata    domain.Metadata
	Explanation string
}

// Service selects encoders, keeps them cached per configuration and holds
// the points of the latest conversion. It serves a single session.
type Service struct {
	cfg      config.EncoderConfig
	provider semantic.Provider
	splitter domain.Splitter
	store    vectorstore.Storage
	logger   *slog.Logger
	encoders map[string]domain.Encoder
	last     *Result
}

// NewService wires the service. provider may be nil when only the lexical
// encoder is used.
func NewService(cfg config.EncoderConfig, provider semantic.Provider, splitter domain.Splitter, store vectorstore.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		cfg:      cfg,
		provider: provider,
		splitter: splitter,
		store:    store,
		logger:   logger,
		encoders: make(map[string]domain.Encoder),
	}
}

// DefaultMethod is the encoder selected in the configuration.
func (s *Service) DefaultMethod() string {
	if s.cfg.Type == "" {
		return tfidf.Name
	}
	return s.cfg.Type
}

// Encoder returns the cached encoder for method and model, building it on
// first use. model only matters for the semantic encoder.
func (s *Service) Encoder(method, model string) (domain.Encoder, error) {
	if method == "" {
		method = s.DefaultMethod()
	}
	key := method
	if method == semantic.Name {
		if model == "" {
			model = s.cfg.Semantic.Model
		}
		key = method + ":" + model
	}
	if enc, ok := s.encoders[key]; ok {
		return enc, nil
	}
	enc, err := embedding.New(method, s.cfg, model, s.provider, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created encoder", "key", key)
	s.encoders[key] = enc
	return enc, nil
}

// Split breaks raw input into texts with the configured splitter.
func (s *Service) Split(raw string) []string {
	return s.splitter.Split(raw)
}

// Convert fits the selected encoder on texts and builds the result table.
func (s *Service) Convert(ctx context.Context, method, model string, texts []string) (*Result, error) {
	switch len(texts) {
	case 0:
		return nil, ErrNoTexts
	case 1:
		return nil, ErrTooFewTexts
	}
	enc, err := s.Encoder(method, model)
	if err != nil {
		return nil, err
	}
	points, err := enc.FitTransform(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", enc.Name(), err)
	}
	meta, err := enc.Describe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", enc.Name(), err)
	}
	res := &Result{
		Method:      enc.Name(),
		Model:       meta.ModelName,
		Texts:       append([]string(nil), texts...),
		Points:      points,
		Rows:        buildRows(texts, points),
		Metadata:    meta,
		Explanation: enc.Explain(),
	}
	if err := s.index(res); err != nil {
		return nil, err
	}
	s.last = res
	s.logger.Info("converted texts", "method", res.Method, "texts", len(texts), "explained_variance", meta.TotalExplainedVariance)
	return res, nil
}

// Last returns the latest successful result, or nil.
func (s *Service) Last() *Result { return s.last }

// Reset forgets the latest result and empties the point store. Cached
// encoders keep their fits.
func (s *Service) Reset() error {
	s.last = nil
	return s.store.Clear()
}

// Neighbors returns the k points of the latest plot closest to point i,
// excluding i itself.
func (s *Service) Neighbors(i, k int) ([]domain.Neighbor, error) {
	if s.last == nil {
		return nil, ErrNoResult
	}
	if i < 0 || i >= len(s.last.Points) {
		return nil, fmt.Errorf("point %d out of range [0, %d)", i, len(s.last.Points))
	}
	if k <= 0 {
		return nil, nil
	}
	p := s.last.Points[i]
	found, err := s.store.Search([]float64{p[0], p[1]}, k+1)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Neighbor, 0, k)
	for _, n := range found {
		if n.Index == i {
			continue
		}
		if len(out) == k {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

// Similarity is the cosine similarity of the raw semantic encodings of a and b.
func (s *Service) Similarity(ctx context.Context, model, a, b string) (float64, error) {
	enc, err := s.Encoder(semantic.Name, model)
	if err != nil {
		return 0, err
	}
	return enc.(*semantic.Encoder).Similarity(ctx, a, b)
}

// TopTerms returns the heaviest terms of text under the lexical encoder's last fit.
func (s *Service) TopTerms(text string, k int) ([]domain.TermWeight, error) {
	enc, err := s.Encoder(tfidf.Name, "")
	if err != nil {
		return nil, err
	}
	return enc.(*tfidf.Encoder).TopTerms(text, k)
}

// Models returns the semantic model catalog with details.
func (s *Service) Models() []semantic.ModelInfo {
	names := semantic.ListAvailableModels()
	out := make([]semantic.ModelInfo, len(names))
	for i, n := range names {
		out[i] = semantic.ModelDetails(n)
	}
	return out
}

func (s *Service) index(res *Result) error {
	if err := s.store.Init(2); err != nil {
		return err
	}
	pts := make([][]float64, len(res.Points))
	for i, p := range res.Points {
		pts[i] = []float64{p[0], p[1]}
	}
	return s.store.Upsert(res.Texts, pts)
}

func buildRows(texts []string, points domain.Matrix) []Row {
	rows := make([]Row, len(texts))
	for i, t := range texts {
		x, y := points[i][0], points[i][1]
		rows[i] = Row{
			Index:     i,
			Text:      Truncate(t, 50),
			X:         round4(x),
			Y:         round4(y),
			Magnitude: round4(math.Hypot(x, y)),
		}
	}
	return rows
}

// Truncate shortens s to n runes, appending "..." when it was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
