// Package semantic is the semantic encoder: dense sentence embeddings from a
// pretrained model, reduced to two axes with the shared projection.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"

	"textvec/internal/domain"
	"textvec/internal/reduce"
)

const (
	// Name identifies the semantic encoder.
	Name = "semantic"
	// Method is reported in the encoder metadata.
	Method = "Sentence Embeddings + PCA"
)

// Model encodes batches of text into fixed-size dense vectors. A loaded Model
// is read-only and may be shared between encoders.
type Model interface {
	Name() string
	Dimension() int
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// Provider materialises a Model from its identifier.
type Provider interface {
	Load(ctx context.Context, model string) (Model, error)
}

// Encoder is the semantic encoder. It is not safe for concurrent use.
type Encoder struct {
	provider   Provider
	modelName  string
	model      Model
	projection *reduce.Projection
	logger     *slog.Logger
}

// NewEncoder creates an encoder for the named model; an empty name selects
// DefaultModel. The model is loaded on first use.
func NewEncoder(provider Provider, modelName string, logger *slog.Logger) *Encoder {
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Encoder{provider: provider, modelName: modelName, logger: logger}
}

// Name returns the identifier of this encoder.
func (e *Encoder) Name() string { return Name }

// ModelName is the identifier of the requested model, or of the fallback
// model once a fallback has happened.
func (e *Encoder) ModelName() string { return e.modelName }

// FitTransform encodes texts, fits the scaler and PCA and returns one point per text.
func (e *Encoder) FitTransform(ctx context.Context, texts []string) (domain.Matrix, error) {
	if len(texts) == 0 {
		return nil, &domain.DimensionError{Reason: "empty batch"}
	}
	rows, err := e.encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	proj := reduce.NewProjection()
	out, err := proj.FitTransform(rows)
	if err != nil {
		return nil, err
	}
	e.projection = proj
	return out, nil
}

// Transform encodes texts and projects them with the parameters of the last fit.
func (e *Encoder) Transform(ctx context.Context, texts []string) (domain.Matrix, error) {
	if !e.fitted() {
		return nil, domain.ErrNotFitted
	}
	if len(texts) == 0 {
		return domain.Matrix{}, nil
	}
	rows, err := e.encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	return e.projection.Transform(rows)
}

// Similarity is the cosine similarity of the raw encodings of a and b.
func (e *Encoder) Similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := e.encode(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return Cosine(vecs[0], vecs[1]), nil
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
		ModelName:              e.modelName,
		OriginalDimensions:     e.projection.InputDim(),
		ReducedDimensions:      reduce.Axes,
		ExplainedVarianceRatio: ratio,
		TotalExplainedVariance: ratio[0] + ratio[1],
	}, nil
}

// Explain describes the method in one line, naming the model and, after a
// fit, the embedding size that was reduced to two dimensions.
func (e *Encoder) Explain() string {
	info := e.ModelDetails()
	what := fmt.Sprintf("The AI model %s understands meaning and converts it to numbers (%s)", e.modelName, strings.ToLower(info.Description))
	if !e.fitted() {
		return what + "."
	}
	return fmt.Sprintf("%s. Its %d-dimensional embeddings were reduced to %d dimensions with PCA.", what, e.projection.InputDim(), reduce.Axes)
}

func (e *Encoder) fitted() bool { return e.projection != nil && e.projection.Fitted() }

// ListAvailableModels returns the static model catalog.
func (e *Encoder) ListAvailableModels() []string { return ListAvailableModels() }

// ModelDetails describes the model in use.
func (e *Encoder) ModelDetails() ModelInfo { return ModelDetails(e.modelName) }

func (e *Encoder) encode(ctx context.Context, texts []string) ([][]float64, error) {
	if err := e.loadModel(ctx); err != nil {
		return nil, err
	}
	vecs, err := e.model.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encoding with %s: %w", e.modelName, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("encoding with %s: expected %d vectors, got %d", e.modelName, len(texts), len(vecs))
	}
	return vecs, nil
}

// loadModel acquires the model once, falling back to DefaultModel a single time.
func (e *Encoder) loadModel(ctx context.Context) error {
	if e.model != nil {
		return nil
	}
	if e.provider == nil {
		return &domain.ModelUnavailableError{Requested: e.modelName, Fallback: DefaultModel, Err: errors.New("no model provider configured")}
	}
	m, err := e.provider.Load(ctx, e.modelName)
	if err == nil {
		e.logger.Info("loaded model", "model", e.modelName, "dimension", m.Dimension())
		e.model = m
		return nil
	}
	e.logger.Warn("loading model failed, trying fallback", "model", e.modelName, "fallback", DefaultModel, "error", err)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	requested := e.modelName
	m, ferr := e.provider.Load(ctx, DefaultModel)
	if ferr != nil {
		return &domain.ModelUnavailableError{Requested: requested, Fallback: DefaultModel, Err: errors.Join(err, ferr)}
	}
	e.logger.Info("loaded fallback model", "model", DefaultModel, "dimension", m.Dimension())
	e.modelName = DefaultModel
	e.model = m
	return nil
}

// Cosine returns the cosine similarity of a and b, or 0 if either is a zero vector.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	denom := floats.Norm(a, 2) * floats.Norm(b, 2)
	if denom == 0 {
		return 0
	}
	c := floats.Dot(a, b) / denom
	// keep rounding noise inside [-1, 1]
	return max(-1, min(1, c))
}
