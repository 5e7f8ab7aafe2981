package graphquery

import (
	"fmt"

	"go.uber.org/zap"

	"graphrag/internal/domain"
	"graphrag/internal/graph"
)

// DefaultThreshold is the similarity score at or above which two node
// labels are considered the same concept.
const DefaultThreshold = 0.9

// Deduplicator collapses near-duplicate nodes in a traversal result.
// Clustering is a single greedy pass over the store's scan order: the
// first node seen with a label becomes the primary for everything later
// judged similar to it. Re-scanning the same unmutated result is
// deterministic, but a different scan order can yield a different (still
// internally consistent) partition.
type Deduplicator struct {
	similarity domain.Similarity
	threshold  float64
	log        *zap.Logger
}

// NewDeduplicator creates a deduplicator with the given merge threshold;
// a non-positive threshold selects DefaultThreshold.
func NewDeduplicator(similarity domain.Similarity, threshold float64, log *zap.Logger) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Deduplicator{similarity: similarity, threshold: threshold, log: log}
}

// Deduplicate merges duplicate nodes in place and returns display labels
// for the surviving nodes. A duplicate's outgoing edges are migrated to
// its primary before the duplicate is removed, so connectivity through
// merged nodes is preserved.
func (d *Deduplicator) Deduplicate(g *graph.Graph) (map[string]string, error) {
	labels := make(map[string]string)
	primaries := make(map[string]string)
	var labelNames []string
	var deletes []string

	for _, node := range g.Scan() {
		label := nodeLabel(g, node)

		primary := ""
		if len(labelNames) > 0 {
			matches, err := d.similarity.Similarity(label, labelNames)
			if err != nil {
				return nil, fmt.Errorf("rank label %q: %w", label, err)
			}
			if len(matches) > 0 && matches[0].Score >= d.threshold {
				best := labelNames[matches[0].Index]
				primary = primaries[best]
				d.log.Debug("duplicate node",
					zap.String("label", label),
					zap.String("primary", best),
					zap.Float64("score", matches[0].Score))
			}
		}

		if primary == "" {
			labels[node] = label
			primaries[label] = node
			labelNames = append(labelNames, label)
			continue
		}

		for target, attrs := range g.Edges(node) {
			if target != primary {
				g.AddEdge(primary, target, attrs)
			}
		}
		deletes = append(deletes, node)
	}

	g.Delete(deletes)
	return labels, nil
}

// nodeLabel derives the display label for a node: the topic when the
// identifier is store-generated and a topic exists, the identifier
// otherwise.
func nodeLabel(g *graph.Graph, node string) string {
	id := stringAttribute(g, node, "id")
	topic := stringAttribute(g, node, "topic")
	if IsAutoID(id) && topic != "" {
		return topic
	}
	return id
}

func stringAttribute(g *graph.Graph, node, name string) string {
	v, ok := g.Attribute(node, name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
