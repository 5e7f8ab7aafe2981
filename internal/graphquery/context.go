package graphquery

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"graphrag/internal/domain"
	"graphrag/internal/graph"
)

// Store is the index capability the orchestrator consumes: similarity
// search, label ranking and path query execution over a semantic graph.
type Store interface {
	domain.Searcher
	domain.Similarity
	HasGraph() bool
	Execute(pathQuery string) (*graph.Graph, error)
}

// Renderer turns a reduced traversal result into a displayable string.
// It is a presentation capability; tests stub it or leave it nil.
type Renderer interface {
	Render(g *graph.Graph, labels map[string]string) string
}

// Result is the outcome of a graph context attempt. When the question
// was not answerable from the graph, Question is the input unchanged and
// Context is empty, signalling plain vector retrieval to the caller.
type Result struct {
	Question string
	Context  []domain.ContextEntry
	Rendered string
}

// GraphContext sequences the retrieval core for one user turn: parse,
// resolve, build and execute the path query, deduplicate, assemble
// context. Every failure to produce graph context degrades to the plain
// retrieval fallback rather than erroring.
type GraphContext struct {
	store    Store
	resolver *Resolver
	dedupe   *Deduplicator
	renderer Renderer
	limit    int
	log      *zap.Logger
}

// Config wires a GraphContext.
type Config struct {
	Store     Store
	Renderer  Renderer
	Limit     int     // number of paths requested and context entries used
	Threshold float64 // dedupe merge threshold, 0 selects the default
	SkipMiss  bool    // drop unresolved concepts instead of falling back
	Logger    *zap.Logger
}

// New creates the orchestrator.
func New(cfg Config) *GraphContext {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	resolver := NewResolver(cfg.Store, log)
	resolver.SkipMisses = cfg.SkipMiss
	return &GraphContext{
		store:    cfg.Store,
		resolver: resolver,
		dedupe:   NewDeduplicator(cfg.Store, cfg.Threshold, log),
		renderer: cfg.Renderer,
		limit:    cfg.Limit,
		log:      log,
	}
}

// Retrieve attempts to build a graph context for a question. Only
// collaborator failures (store or similarity errors) are returned;
// unparseable questions, resolution misses and empty traversals all
// produce a fallback Result.
func (gc *GraphContext) Retrieve(question string) (*Result, error) {
	fallback := &Result{Question: question}

	parsed := Parse(question)
	if !parsed.IsGraph() || !gc.store.HasGraph() {
		return fallback, nil
	}

	ids, err := gc.resolver.Resolve(parsed)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return fallback, nil
	}

	path := BuildPath(ids, gc.limit)
	gc.log.Debug("graph path query", zap.String("query", path))

	sub, err := gc.store.Execute(path)
	if err != nil {
		return nil, fmt.Errorf("execute path query: %w", err)
	}
	if sub == nil || sub.Count() == 0 {
		return fallback, nil
	}

	labels, err := gc.dedupe.Deduplicate(sub)
	if err != nil {
		return nil, err
	}

	result := &Result{Question: gc.question(parsed)}
	if gc.renderer != nil {
		result.Rendered = gc.renderer.Render(sub, labels)
	}
	for _, node := range sub.Scan() {
		result.Context = append(result.Context, domain.ContextEntry{
			ID:   stringAttribute(sub, node, "id"),
			Text: stringAttribute(sub, node, "text"),
		})
	}
	gc.log.Debug("graph context", zap.Int("entries", len(result.Context)))
	return result, nil
}

// question picks the final prompt text: the explicit free query when one
// was parsed, otherwise a default that asks for a title and summary
// mentioning the resolved concepts.
func (gc *GraphContext) question(parsed ParsedQuery) string {
	if parsed.Query != "" {
		return parsed.Query
	}
	return fmt.Sprintf(
		"Write a title and text summarizing the context.\nInclude the following concepts: %s if they're mentioned in the context.",
		strings.Join(parsed.Concepts, ", "),
	)
}
