package domain

import "context"

// Matrix holds one reduced point per input text. Row i corresponds to text i.
type Matrix [][2]float64

// Metadata describes a fitted encoder. Fields that do not apply to an encoder
// are left at their zero value.
type Metadata struct {
	Status                 string     `yaml:"status" json:"status"`
	Method                 string     `yaml:"method,omitempty" json:"method,omitempty"`
	ModelName              string     `yaml:"model_name,omitempty" json:"model_name,omitempty"`
	MaxFeatures            int        `yaml:"max_features,omitempty" json:"max_features,omitempty"`
	NGramRange             [2]int     `yaml:"ngram_range,flow,omitempty" json:"ngram_range,omitempty"`
	VocabularySize         int        `yaml:"vocabulary_size,omitempty" json:"vocabulary_size,omitempty"`
	OriginalDimensions     int        `yaml:"original_dimensions,omitempty" json:"original_dimensions,omitempty"`
	ReducedDimensions      int        `yaml:"reduced_dimensions,omitempty" json:"reduced_dimensions,omitempty"`
	ExplainedVarianceRatio [2]float64 `yaml:"explained_variance_ratio,flow,omitempty" json:"explained_variance_ratio,omitempty"`
	TotalExplainedVariance float64    `yaml:"total_explained_variance,omitempty" json:"total_explained_variance,omitempty"`
}

const (
	StatusFitted    = "fitted"
	StatusNotFitted = "not_fitted"
)

// NotFittedMetadata is the marker returned by Describe before the first fit.
func NotFittedMetadata() Metadata { return Metadata{Status: StatusNotFitted} }

// Encoder turns a batch of texts into two-dimensional points.
// FitTransform derives new parameters from the batch; Transform reuses the
// parameters of the last successful fit.
type Encoder interface {
	Name() string
	FitTransform(ctx context.Context, texts []string) (Matrix, error)
	Transform(ctx context.Context, texts []string) (Matrix, error)
	Describe() (Metadata, error)
	// Explain is a one-line, plain-language account of the method. After a
	// fit it includes the dimensions of that fit.
	Explain() string
}

// TermWeight is a vocabulary term with its TF-IDF weight in one text.
type TermWeight struct {
	Term   string
	Weight float64
}

// Splitter breaks raw user input into the texts of a batch.
type Splitter interface {
	Split(text string) []string
}

// Neighbor is a point of the current plot and its distance to a query point.
type Neighbor struct {
	Index    int
	Text     string
	Distance float64
}
