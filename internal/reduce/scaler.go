package reduce

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardises every column to zero mean and unit population variance.
// Columns without variance keep a scale of 1 so they map to zero instead of NaN.
type Scaler struct {
	mean  []float64
	scale []float64
}

// Fit records the per-column mean and standard deviation of x.
func (s *Scaler) Fit(x mat.Matrix) {
	r, c := x.Dims()
	s.mean = make([]float64, c)
	s.scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		m, sd := stat.PopMeanStdDev(col, nil)
		if sd <= 10*epsilon*math.Max(1, math.Abs(m)) {
			sd = 1
		}
		s.mean[j] = m
		s.scale[j] = sd
	}
}

// Transform returns a standardised copy of x using the fitted parameters.
func (s *Scaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, errors.New("scaler is not fitted")
	}
	r, c := x.Dims()
	if c != len(s.mean) {
		return nil, errors.New("scaler: column count mismatch")
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}

// Scale returns the fitted column scales.
func (s *Scaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

const epsilon = 2.220446049250313e-16
