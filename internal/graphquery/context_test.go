package graphquery

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphrag/internal/domain"
	"graphrag/internal/graph"
)

// stubStore is an in-test index: canned search results, a score table
// for similarity and a prebuilt traversal result.
type stubStore struct {
	hasGraph  bool
	searches  map[string][]domain.SearchResult
	scores    map[[2]string]float64
	traversal *graph.Graph
	executed  []string
}

func (s *stubStore) Search(text string, k int) ([]domain.SearchResult, error) {
	results := s.searches[text]
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *stubStore) Similarity(text string, candidates []string) ([]domain.Match, error) {
	matches := make([]domain.Match, len(candidates))
	for i, c := range candidates {
		matches[i] = domain.Match{Index: i, Score: s.scores[[2]string{text, c}]}
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	return matches, nil
}

func (s *stubStore) HasGraph() bool { return s.hasGraph }

func (s *stubStore) Execute(pathQuery string) (*graph.Graph, error) {
	s.executed = append(s.executed, pathQuery)
	if s.traversal == nil {
		return graph.New(), nil
	}
	return s.traversal, nil
}

type stubRenderer struct{ rendered int }

func (r *stubRenderer) Render(g *graph.Graph, labels map[string]string) string {
	r.rendered++
	return "rendered"
}

func twoNodeTraversal() *graph.Graph {
	g := graph.New()
	g.AddNode("n1", graph.Attributes{"text": "Linux is a kernel.", "topic": "Linux"})
	g.AddNode("n2", graph.Attributes{"text": "Unix predates it.", "topic": "Unix"})
	g.AddEdge("n1", "n2", graph.Attributes{"weight": 0.9})
	return g
}

func TestRetrievePlainQuestionFallsBack(t *testing.T) {
	store := &stubStore{hasGraph: true}
	gc := New(Config{Store: store, Limit: 10})

	res, err := gc.Retrieve("just a plain question")
	require.NoError(t, err)
	assert.Equal(t, "just a plain question", res.Question)
	assert.Empty(t, res.Context)
	assert.Empty(t, store.executed)
}

func TestRetrieveWithoutGraphFallsBack(t *testing.T) {
	store := &stubStore{hasGraph: false}
	gc := New(Config{Store: store, Limit: 10})

	res, err := gc.Retrieve("gq: tell me about linux")
	require.NoError(t, err)
	assert.Equal(t, "gq: tell me about linux", res.Question)
	assert.Empty(t, res.Context)
}

func TestRetrieveResolutionMissFallsBack(t *testing.T) {
	store := &stubStore{hasGraph: true, searches: map[string][]domain.SearchResult{}}
	gc := New(Config{Store: store, Limit: 10})

	res, err := gc.Retrieve("linux -> macos")
	require.NoError(t, err)
	assert.Equal(t, "linux -> macos", res.Question)
	assert.Empty(t, res.Context)
	assert.Empty(t, store.executed, "path query must not run after a total miss")
}

func TestRetrieveEmptyTraversalFallsBack(t *testing.T) {
	store := &stubStore{
		hasGraph: true,
		searches: map[string][]domain.SearchResult{
			"linux": {{ID: "n1", Score: 0.9}},
		},
	}
	gc := New(Config{Store: store, Limit: 10})

	res, err := gc.Retrieve("linux")
	// A single concept without the delimiter is not a graph query at all
	require.NoError(t, err)
	assert.Equal(t, "linux", res.Question)

	res, err = gc.Retrieve("linux -> linux")
	require.NoError(t, err)
	assert.Equal(t, "linux -> linux", res.Question)
	assert.Empty(t, res.Context)
	assert.Len(t, store.executed, 1)
}

func TestRetrieveConceptChain(t *testing.T) {
	store := &stubStore{
		hasGraph: true,
		searches: map[string][]domain.SearchResult{
			"linux": {{ID: "n1", Score: 0.9}},
			"unix":  {{ID: "n2", Score: 0.8}},
		},
		traversal: twoNodeTraversal(),
	}
	renderer := &stubRenderer{}
	gc := New(Config{Store: store, Renderer: renderer, Limit: 10})

	res, err := gc.Retrieve("linux -> unix")
	require.NoError(t, err)

	require.Len(t, store.executed, 1)
	assert.Equal(t, `MATCH P=({id: "n1"})-[*1..4]->({id: "n2"}) RETURN P LIMIT 10`, store.executed[0])

	assert.Contains(t, res.Question, "Write a title and text summarizing the context.")
	assert.Contains(t, res.Question, "linux, unix")

	require.Len(t, res.Context, 2)
	assert.Equal(t, domain.ContextEntry{ID: "n1", Text: "Linux is a kernel."}, res.Context[0])
	assert.Equal(t, domain.ContextEntry{ID: "n2", Text: "Unix predates it."}, res.Context[1])

	assert.Equal(t, "rendered", res.Rendered)
	assert.Equal(t, 1, renderer.rendered)
}

func TestRetrieveFreeQuery(t *testing.T) {
	store := &stubStore{
		hasGraph: true,
		searches: map[string][]domain.SearchResult{
			"tell me about linux": {
				{ID: "n1", Score: 0.9},
				{ID: "n2", Score: 0.8},
				{ID: "n3", Score: 0.7},
				{ID: "n4", Score: 0.6},
			},
		},
		traversal: twoNodeTraversal(),
	}
	gc := New(Config{Store: store, Limit: 5})

	res, err := gc.Retrieve("gq: tell me about linux")
	require.NoError(t, err)

	// Top three free-query matches anchor the path
	require.Len(t, store.executed, 1)
	assert.Equal(t, `MATCH P=({id: "n1"})-[*1..4]->({id: "n2"})-[*1..4]->({id: "n3"}) RETURN P LIMIT 5`, store.executed[0])

	// Explicit free query becomes the question
	assert.Equal(t, "tell me about linux", res.Question)
	assert.Len(t, res.Context, 2)
}

func TestRetrieveSkipMissPolicy(t *testing.T) {
	store := &stubStore{
		hasGraph: true,
		searches: map[string][]domain.SearchResult{
			"linux": {{ID: "n1", Score: 0.9}},
		},
		traversal: twoNodeTraversal(),
	}
	gc := New(Config{Store: store, Limit: 10, SkipMiss: true})

	res, err := gc.Retrieve("linux -> nonexistent")
	require.NoError(t, err)
	require.Len(t, store.executed, 1)
	assert.Equal(t, `MATCH P=({id: "n1"}) RETURN P LIMIT 10`, store.executed[0])
	assert.NotEmpty(t, res.Context)
}
