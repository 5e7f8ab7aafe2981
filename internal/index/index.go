// Package index implements the embeddings database: an embedder, a
// vector store and a semantic graph linking records whose embeddings
// exceed a similarity floor. It provides the search, similarity and
// traversal capabilities the graph-query core consumes.
package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphrag/internal/domain"
	"graphrag/internal/embedding"
	"graphrag/internal/graph"
	"graphrag/internal/vectorstore"
)

// DefaultMinScore is the similarity floor for linking two records with a
// semantic edge.
const DefaultMinScore = 0.7

type row struct {
	id     string
	text   string
	topic  string
	vector []float64
}

// Index owns the indexed records, their vectors and the semantic graph.
type Index struct {
	mu       sync.RWMutex
	embedder embedding.Embedder
	store    vectorstore.Storage
	minscore float64
	rows     []*row
	byID     map[string]*row
	graph    *graph.Graph
	log      *zap.Logger
}

// New creates an empty index. A non-positive minscore selects
// DefaultMinScore.
func New(embedder embedding.Embedder, store vectorstore.Storage, minscore float64, log *zap.Logger) *Index {
	if minscore <= 0 {
		minscore = DefaultMinScore
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		embedder: embedder,
		store:    store,
		minscore: minscore,
		byID:     make(map[string]*row),
		log:      log,
	}
}

// Add indexes records and rebuilds the semantic graph. Records without
// an identifier get a deterministic UUID derived from their text, which
// also marks them as auto-id for labeling purposes. Adding re-prepares
// the embedder over the whole corpus, so vocabulary-based embedders stay
// consistent as documents arrive.
func (ix *Index) Add(records []domain.Record) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, rec := range records {
		if rec.Text == "" {
			continue
		}
		id := rec.ID
		if id == "" {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.Text)).String()
		}
		if existing, ok := ix.byID[id]; ok {
			existing.text = rec.Text
			if rec.Topic != "" {
				existing.topic = rec.Topic
			}
			continue
		}
		r := &row{id: id, text: rec.Text, topic: rec.Topic}
		ix.rows = append(ix.rows, r)
		ix.byID[id] = r
	}
	return ix.rebuild()
}

// rebuild re-embeds every row, refreshes the vector store and relinks
// the semantic graph. Caller holds the write lock.
func (ix *Index) rebuild() error {
	if len(ix.rows) == 0 {
		return nil
	}
	corpus := make([]string, len(ix.rows))
	for i, r := range ix.rows {
		corpus[i] = r.text
	}
	if err := ix.embedder.Prepare(corpus); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	for _, r := range ix.rows {
		vec, err := ix.embedder.Embed(r.text)
		if err != nil {
			return fmt.Errorf("embed record %s: %w", r.id, err)
		}
		r.vector = vec
	}
	if err := ix.store.Init(ix.embedder.Dimension()); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	if err := ix.store.Clear(); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	ids := make([]string, len(ix.rows))
	vectors := make([][]float64, len(ix.rows))
	for i, r := range ix.rows {
		ids[i] = r.id
		vectors[i] = r.vector
	}
	if err := ix.store.Upsert(ids, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}

	g := graph.New()
	for _, r := range ix.rows {
		g.AddNode(r.id, graph.Attributes{"text": r.text, "topic": r.topic})
	}
	links := 0
	for i := 0; i < len(ix.rows); i++ {
		for j := i + 1; j < len(ix.rows); j++ {
			score := clamp(dot(ix.rows[i].vector, ix.rows[j].vector))
			if score < ix.minscore {
				continue
			}
			attrs := graph.Attributes{"weight": score}
			g.AddEdge(ix.rows[i].id, ix.rows[j].id, attrs)
			g.AddEdge(ix.rows[j].id, ix.rows[i].id, attrs)
			links++
		}
	}
	ix.graph = g
	ix.log.Debug("index rebuilt", zap.Int("records", len(ix.rows)), zap.Int("links", links))
	return nil
}

// Search embeds the text and returns the best matching records.
func (ix *Index) Search(text string, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.rows) == 0 {
		return nil, nil
	}
	vec, err := ix.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.store.Search(vec, k)
}

// Similarity ranks candidate strings against text, best first.
func (ix *Index) Similarity(text string, candidates []string) ([]domain.Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	vec, err := ix.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	matches := make([]domain.Match, 0, len(candidates))
	for i, candidate := range candidates {
		cvec, err := ix.embedder.Embed(candidate)
		if err != nil {
			return nil, fmt.Errorf("embed candidate %q: %w", candidate, err)
		}
		matches = append(matches, domain.Match{Index: i, Score: clamp(dot(vec, cvec))})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	return matches, nil
}

// HasGraph reports whether a populated semantic graph exists.
func (ix *Index) HasGraph() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.graph != nil && ix.graph.Count() > 0
}

// Execute runs a path query against the semantic graph and returns a
// fresh per-request traversal result.
func (ix *Index) Execute(pathQuery string) (*graph.Graph, error) {
	ix.mu.RLock()
	g := ix.graph
	ix.mu.RUnlock()
	if g == nil {
		return graph.New(), nil
	}
	pq, err := graph.ParsePathQuery(pathQuery)
	if err != nil {
		return nil, err
	}
	return g.Query(pq), nil
}

// Count returns the number of indexed records.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.rows)
}

// Records returns a snapshot of the indexed records in insertion order.
func (ix *Index) Records() []domain.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]domain.Record, len(ix.rows))
	for i, r := range ix.rows {
		out[i] = domain.Record{ID: r.id, Text: r.text, Topic: r.topic}
	}
	return out
}

// Record returns a single record by identifier.
func (ix *Index) Record(id string) (domain.Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	r, ok := ix.byID[id]
	if !ok {
		return domain.Record{}, false
	}
	return domain.Record{ID: r.id, Text: r.text, Topic: r.topic}, true
}

// SetTopic assigns a topic to a record and its graph node.
func (ix *Index) SetTopic(id, topic string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	r, ok := ix.byID[id]
	if !ok {
		return
	}
	r.topic = topic
	if ix.graph != nil {
		ix.graph.AddNode(id, graph.Attributes{"topic": topic})
	}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
