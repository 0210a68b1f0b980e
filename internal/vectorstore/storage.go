package vectorstore

import "textvec/internal/domain"

// Storage keeps the points of the latest plot and answers nearest-neighbour queries.
type Storage interface {
	Init(dimension int) error
	Upsert(texts []string, points [][]float64) error
	Search(point []float64, topK int) ([]domain.Neighbor, error)
	Clear() error
}
