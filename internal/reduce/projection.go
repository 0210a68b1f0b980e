// Package reduce standardises dense feature rows and projects them onto their
// two principal axes. Both encoders share it so their output is comparable in
// shape and semantics.
package reduce

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"textvec/internal/domain"
)

// Axes is the number of output dimensions of every projection.
const Axes = 2

// Projection chains a Scaler and a two-component PCA.
type Projection struct {
	scaler   Scaler
	pca      *PCA
	inputDim int
	fitted   bool
}

// NewProjection returns an unfitted projection.
func NewProjection() *Projection {
	return &Projection{pca: NewPCA(Axes)}
}

// FitTransform fits the scaler and PCA on rows and returns the projected rows.
// The previous fit is kept if this one fails.
func (p *Projection) FitTransform(rows [][]float64) (domain.Matrix, error) {
	x, err := toDense(rows)
	if err != nil {
		return nil, err
	}
	var scaler Scaler
	scaler.Fit(x)
	scaled, err := scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	pca := NewPCA(Axes)
	if err := pca.Fit(scaled); err != nil {
		return nil, err
	}
	out, err := pca.Transform(scaled)
	if err != nil {
		return nil, err
	}
	p.scaler = scaler
	p.pca = pca
	p.inputDim = len(rows[0])
	p.fitted = true
	return toMatrix(out), nil
}

// Transform projects rows with the parameters of the last fit.
func (p *Projection) Transform(rows [][]float64) (domain.Matrix, error) {
	if !p.fitted {
		return nil, domain.ErrNotFitted
	}
	x, err := toDense(rows)
	if err != nil {
		return nil, err
	}
	scaled, err := p.scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	out, err := p.pca.Transform(scaled)
	if err != nil {
		return nil, err
	}
	return toMatrix(out), nil
}

// Fitted reports whether FitTransform has succeeded at least once.
func (p *Projection) Fitted() bool { return p.fitted }

// InputDim is the number of features seen by the last fit.
func (p *Projection) InputDim() int { return p.inputDim }

// ExplainedVarianceRatio returns the variance share of the two axes.
func (p *Projection) ExplainedVarianceRatio() [Axes]float64 {
	var out [Axes]float64
	if !p.fitted {
		return out
	}
	copy(out[:], p.pca.ExplainedVarianceRatio())
	return out
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, &domain.DimensionError{Reason: "empty batch"}
	}
	d := len(rows[0])
	if d == 0 {
		return nil, &domain.DimensionError{Samples: len(rows), Reason: "rows have no features"}
	}
	data := make([]float64, 0, len(rows)*d)
	for i, r := range rows {
		if len(r) != d {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(r), d)
		}
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &domain.DimensionError{Samples: len(rows), Features: d, Reason: fmt.Sprintf("row %d contains a non-finite value", i)}
			}
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), d, data), nil
}

func toMatrix(m *mat.Dense) domain.Matrix {
	r, _ := m.Dims()
	out := make(domain.Matrix, r)
	for i := 0; i < r; i++ {
		out[i] = [2]float64{m.At(i, 0), m.At(i, 1)}
	}
	return out
}
