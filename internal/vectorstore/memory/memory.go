package memory

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"textvec/internal/domain"
)

// Storage is a simple in-memory point store using brute-force Euclidean distance.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    [][]float64
	texts     []string
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.points = nil
	s.texts = nil
	return nil
}

func (s *Storage) Upsert(texts []string, points [][]float64) error {
	if len(texts) != len(points) {
		return errors.New("texts and points length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("storage not initialised")
	}
	for _, p := range points {
		if len(p) != s.dimension {
			return errors.New("point dimension mismatch")
		}
	}
	for _, p := range points {
		s.points = append(s.points, append([]float64(nil), p...))
	}
	s.texts = append(s.texts, texts...)
	return nil
}

// Search returns up to topK stored points ordered by increasing distance to
// point; ties keep insertion order.
func (s *Storage) Search(point []float64, topK int) ([]domain.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(point) != s.dimension {
		return nil, errors.New("point dimension mismatch")
	}
	if topK <= 0 {
		topK = 5
	}
	dists := make([]float64, len(s.points))
	for i := range s.points {
		dists[i] = floats.Distance(s.points[i], point, 2)
	}
	idxs := argsortAsc(dists)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Neighbor, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.Neighbor{Index: j, Text: s.texts[j], Distance: dists[j]})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
	s.texts = nil
	return nil
}

func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	// insertion sort keeps ties stable; plots hold a handful of points
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && less(vals[idxs[j]], vals[idxs[j-1]]); j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
	return idxs
}

func less(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a < b
}
