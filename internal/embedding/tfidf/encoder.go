// Package tfidf is the lexical encoder: TF-IDF weighting over unigrams and
// bigrams, reduced to two axes with the shared standardise + PCA projection.
package tfidf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"textvec/internal/domain"
	"textvec/internal/reduce"
)

const (
	// Name identifies the lexical encoder.
	Name = "tfidf"
	// Method is reported in the encoder metadata.
	Method = "TF-IDF + PCA"

	DefaultMaxFeatures = 1000
)

// Option customises a lexical Encoder.
type Option func(*Encoder)

// WithMaxFeatures caps the vocabulary size.
func WithMaxFeatures(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxFeatures = n
		}
	}
}

// WithNGramRange sets the inclusive n-gram range.
func WithNGramRange(lo, hi int) Option {
	return func(e *Encoder) {
		if lo > 0 && hi >= lo {
			e.ngram = [2]int{lo, hi}
		}
	}
}

// WithLogger sets the logger used for fit diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		if l != nil {
			e.logger = l
		}
	}
}

// Encoder is the lexical encoder. It is not safe for concurrent use.
type Encoder struct {
	maxFeatures int
	ngram       [2]int
	vectorizer  *Vectorizer
	projection  *reduce.Projection
	logger      *slog.Logger
}

// NewEncoder creates an unfitted lexical encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		maxFeatures: DefaultMaxFeatures,
		ngram:       [2]int{1, 2},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Name returns the identifier of this encoder.
func (e *Encoder) Name() string { return Name }

// FitTransform fits the vocabulary, scaler and PCA on texts and returns one
// point per text. On failure the previous fit, if any, stays in place.
func (e *Encoder) FitTransform(_ context.Context, texts []string) (domain.Matrix, error) {
	if len(texts) == 0 {
		return nil, &domain.DimensionError{Reason: "empty batch"}
	}
	processed := make([]string, len(texts))
	for i, t := range texts {
		processed[i] = Preprocess(t)
	}
	vec := NewVectorizer(e.maxFeatures, e.ngram[0], e.ngram[1])
	if err := vec.Prepare(processed); err != nil {
		return nil, err
	}
	if vec.Dimension() < reduce.Axes {
		return nil, &domain.DimensionError{
			Samples:  len(texts),
			Features: vec.Dimension(),
			Reason:   "fewer than 2 distinct terms",
		}
	}
	rows, err := embedAll(vec, processed)
	if err != nil {
		return nil, err
	}
	proj := reduce.NewProjection()
	out, err := proj.FitTransform(rows)
	if err != nil {
		return nil, err
	}
	e.vectorizer = vec
	e.projection = proj
	e.logger.Debug("fitted lexical encoder", "vectorizer", vec.String(), "texts", len(texts))
	return out, nil
}

// Transform maps texts with the stored vocabulary and projection. Texts made
// only of unknown terms come out as the projection of an all-zero row.
func (e *Encoder) Transform(_ context.Context, texts []string) (domain.Matrix, error) {
	if !e.fitted() {
		return nil, domain.ErrNotFitted
	}
	processed := make([]string, len(texts))
	for i, t := range texts {
		processed[i] = Preprocess(t)
	}
	rows, err := embedAll(e.vectorizer, processed)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return domain.Matrix{}, nil
	}
	return e.projection.Transform(rows)
}

// TopTerms returns up to k terms of text with a positive weight, heaviest first.
func (e *Encoder) TopTerms(text string, k int) ([]domain.TermWeight, error) {
	if !e.fitted() {
		return nil, domain.ErrNotFitted
	}
	if k <= 0 {
		return nil, nil
	}
	vec, err := e.vectorizer.Embed(Preprocess(text))
	if err != nil {
		return nil, err
	}
	terms := e.vectorizer.terms
	var out []domain.TermWeight
	for i, w := range vec {
		if w > 0 {
			out = append(out, domain.TermWeight{Term: terms[i], Weight: w})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// FeatureNames returns the fitted vocabulary in alphabetical order.
func (e *Encoder) FeatureNames() ([]string, error) {
	if !e.fitted() {
		return nil, domain.ErrNotFitted
	}
	return e.vectorizer.Terms(), nil
}

// Describe reports the state of the last fit. Before the first fit it returns
// the not-fitted marker together with domain.ErrNotFitted.
func (e *Encoder) Describe() (domain.Metadata, error) {
	if !e.fitted() {
		return domain.NotFittedMetadata(), domain.ErrNotFitted
	}
	ratio := e.projection.ExplainedVarianceRatio()
	return domain.Metadata{
		Status:                 domain.StatusFitted,
		Method:                 Method,
		MaxFeatures:            e.maxFeatures,
		NGramRange:             e.ngram,
		VocabularySize:         e.vectorizer.Dimension(),
		OriginalDimensions:     e.projection.InputDim(),
		ReducedDimensions:      reduce.Axes,
		ExplainedVarianceRatio: ratio,
		TotalExplainedVariance: ratio[0] + ratio[1],
	}, nil
}

// Explain describes the method in one line. After a fit it names the
// vocabulary size that was reduced to two dimensions.
func (e *Encoder) Explain() string {
	const what = "TF-IDF counts important words and makes them into numbers; words that are rare across the texts weigh more"
	if !e.fitted() {
		return what + "."
	}
	return fmt.Sprintf("%s. Each text became a %d-dimensional vector of word weights (n-grams %d..%d), which PCA reduced to %d dimensions.",
		what, e.projection.InputDim(), e.ngram[0], e.ngram[1], reduce.Axes)
}

func (e *Encoder) fitted() bool { return e.projection != nil && e.projection.Fitted() }

func embedAll(vec *Vectorizer, texts []string) ([][]float64, error) {
	rows := make([][]float64, len(texts))
	for i, t := range texts {
		row, err := vec.Embed(t)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}
