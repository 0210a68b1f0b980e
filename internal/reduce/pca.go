package reduce

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"textvec/internal/domain"
)

// PCA projects rows onto the directions of maximum variance.
//
// The axes come from a symmetric eigen-decomposition: of the feature
// covariance when there are at least as many samples as features, otherwise
// of the sample Gram matrix, which has the same non-zero spectrum and is much
// smaller for short batches with a large vocabulary. Each axis is oriented so
// that its largest-magnitude loading is positive, which makes the output
// reproducible for identical input.
type PCA struct {
	Components int

	mean     []float64
	axes     *mat.Dense // features x Components
	variance []float64
	ratio    []float64
}

// NewPCA returns an unfitted PCA keeping k components.
func NewPCA(k int) *PCA { return &PCA{Components: k} }

// Fit derives the mean and principal axes of x.
func (p *PCA) Fit(x mat.Matrix) error {
	n, d := x.Dims()
	k := p.Components
	if k <= 0 {
		return errors.New("pca: number of components must be positive")
	}
	if n < k || d < k {
		return &domain.DimensionError{
			Samples:  n,
			Features: d,
			Reason:   fmt.Sprintf("%d components requested but min(samples, features) = %d", k, min(n, d)),
		}
	}

	p.mean = make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		p.mean[j] = floats.Sum(col) / float64(n)
	}
	xc := p.center(x)

	// n >= 2 here, so the unbiased normaliser is safe.
	norm := 1 / float64(n-1)
	var sym mat.SymDense
	gram := d > n
	if gram {
		sym.SymOuterK(norm, xc)
	} else {
		sym.SymOuterK(norm, xc.T())
	}
	var es mat.EigenSym
	if !es.Factorize(&sym, true) {
		return errors.New("pca: eigen-decomposition did not converge")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	total := 0.0
	for i, v := range vals {
		if v < 0 {
			vals[i] = 0
		}
		total += vals[i]
	}

	// Eigenvalues arrive ascending; walk them from the largest down and keep
	// the lower index first among exact ties.
	order := make([]int, len(vals))
	for i := range order {
		order[i] = len(vals) - 1 - i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] > vals[order[b]] })

	p.axes = mat.NewDense(d, k, nil)
	p.variance = make([]float64, k)
	p.ratio = make([]float64, k)
	tol := 1e-12 * math.Max(total, 1)
	axis := make([]float64, d)
	for c := 0; c < k; c++ {
		idx := order[c]
		lambda := vals[idx]
		p.variance[c] = lambda
		if total > 0 {
			p.ratio[c] = lambda / total
		}
		if gram {
			if lambda <= tol {
				// No variance left along this axis; every fitted row projects to 0.
				continue
			}
			u := mat.NewVecDense(n, mat.Col(nil, idx, &vecs))
			var v mat.VecDense
			v.MulVec(xc.T(), u)
			v.ScaleVec(1/math.Sqrt(float64(n-1)*lambda), &v)
			for j := 0; j < d; j++ {
				axis[j] = v.AtVec(j)
			}
		} else {
			mat.Col(axis, idx, &vecs)
		}
		orient(axis)
		p.axes.SetCol(c, axis)
	}
	return nil
}

// Transform projects x onto the fitted axes.
func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	if p.axes == nil {
		return nil, errors.New("pca is not fitted")
	}
	_, d := x.Dims()
	if d != len(p.mean) {
		return nil, fmt.Errorf("pca: expected %d features, got %d", len(p.mean), d)
	}
	var out mat.Dense
	out.Mul(p.center(x), p.axes)
	return &out, nil
}

// ExplainedVarianceRatio returns the share of total variance carried by each axis.
func (p *PCA) ExplainedVarianceRatio() []float64 { return append([]float64(nil), p.ratio...) }

// ExplainedVariance returns the variance carried by each axis.
func (p *PCA) ExplainedVariance() []float64 { return append([]float64(nil), p.variance...) }

func (p *PCA) center(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 { return v - p.mean[j] }, x)
	return out
}

// orient flips v in place so that its largest-magnitude entry is positive.
func orient(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		floats.Scale(-1, v)
	}
}
