package graphquery

import (
	"fmt"

	"go.uber.org/zap"

	"graphrag/internal/domain"
)

// freeQueryNodes is how many nodes a free-text graph question anchors on.
const freeQueryNodes = 3

// Resolver maps parsed query text to concrete node identifiers through a
// similarity search capability.
type Resolver struct {
	searcher domain.Searcher
	// SkipMisses drops concepts that resolve to nothing instead of
	// abandoning the whole chain. Either way, zero resolved identifiers
	// means the caller falls back to plain retrieval.
	SkipMisses bool
	log        *zap.Logger
}

// NewResolver creates a resolver over the given search capability.
func NewResolver(searcher domain.Searcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{searcher: searcher, log: log}
}

// Resolve returns node identifiers for a parsed query, preserving
// concept order. With concepts present, each concept resolves to its
// single best match; a miss either aborts the chain or, with SkipMisses,
// drops that concept. Without concepts, the free query resolves to its
// top matches. An empty result is not an error: it signals fallback.
func (r *Resolver) Resolve(parsed ParsedQuery) ([]string, error) {
	if len(parsed.Concepts) > 0 {
		ids := make([]string, 0, len(parsed.Concepts))
		for _, concept := range parsed.Concepts {
			results, err := r.searcher.Search(concept, 1)
			if err != nil {
				return nil, fmt.Errorf("resolve concept %q: %w", concept, err)
			}
			if len(results) == 0 {
				if r.SkipMisses {
					r.log.Debug("concept resolution miss, skipping", zap.String("concept", concept))
					continue
				}
				r.log.Debug("concept resolution miss, falling back", zap.String("concept", concept))
				return nil, nil
			}
			ids = append(ids, results[0].ID)
		}
		return ids, nil
	}

	if parsed.Query == "" {
		return nil, nil
	}
	results, err := r.searcher.Search(parsed.Query, freeQueryNodes)
	if err != nil {
		return nil, fmt.Errorf("resolve query %q: %w", parsed.Query, err)
	}
	ids := make([]string, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.ID)
	}
	return ids, nil
}
