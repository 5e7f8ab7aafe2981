package vectorstore

import "graphrag/internal/domain"

// Storage persists embedding vectors keyed by record identifier and
// supports nearest-neighbor search.
type Storage interface {
	Init(dimension int) error
	Upsert(ids []string, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Clear() error
}
