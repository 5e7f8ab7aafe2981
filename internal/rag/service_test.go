package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphrag/internal/chunker"
	"graphrag/internal/domain"
	"graphrag/internal/embedding/tfidf"
	"graphrag/internal/graphquery"
	"graphrag/internal/index"
	"graphrag/internal/render"
	"graphrag/internal/vectorstore/memory"
)

// stubLLM answers topic prompts with a canned topic per text and every
// other prompt with "answer", recording the prompts it saw.
type stubLLM struct {
	prompts []string
}

func (s *stubLLM) Complete(_ context.Context, _ string, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if strings.HasPrefix(prompt, "Create a simple, concise topic") {
		switch {
		case strings.Contains(prompt, "Linux powers"):
			return "Linux", nil
		case strings.Contains(prompt, "Unix shaped"):
			return "Unix", nil
		default:
			return "Misc", nil
		}
	}
	return "answer", nil
}

func (s *stubLLM) lastPrompt() string {
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func newService(t *testing.T) (*Service, *stubLLM) {
	t.Helper()
	ix := index.New(tfidf.NewEmbedder(), memory.NewStorage(), 0.01, nil)
	gc := graphquery.New(graphquery.Config{
		Store:    ix,
		Renderer: render.NewASCII(),
		Limit:    10,
	})
	llm := &stubLLM{}
	return NewService(ix, gc, llm, chunker.NewParagraphExtractor(5), 10, nil), llm
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	text := "Linux powers most servers in modern computing.\n\nUnix shaped modern computing history."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "os.txt"), []byte(text), 0o644))
	return filepath.Join(dir, "os.txt")
}

func TestIngestIndexesAndInfersTopics(t *testing.T) {
	svc, _ := newService(t)
	n, err := svc.Ingest(context.Background(), []string{writeCorpus(t)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, svc.Count())
	assert.True(t, svc.HasGraph())

	topics := map[string]bool{}
	for _, rec := range svc.index.Records() {
		require.True(t, graphquery.IsAutoID(rec.ID))
		topics[rec.Topic] = true
	}
	assert.True(t, topics["Linux"])
	assert.True(t, topics["Unix"])
}

func TestIngestIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	path := writeCorpus(t)
	_, err := svc.Ingest(context.Background(), []string{path})
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Count())
}

func TestIngestMissingFile(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Ingest(context.Background(), []string{filepath.Join(t.TempDir(), "nope.txt")})
	assert.Error(t, err)
}

func TestAnswerVectorFallback(t *testing.T) {
	svc, llm := newService(t)
	_, err := svc.Ingest(context.Background(), []string{writeCorpus(t)})
	require.NoError(t, err)

	turn, err := svc.Answer(context.Background(), "Tell me about linux servers")
	require.NoError(t, err)
	assert.False(t, turn.GraphContext)
	assert.Equal(t, "answer", turn.Answer)
	assert.Empty(t, turn.Rendered)

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "Tell me about linux servers")
	assert.Contains(t, prompt, "Linux powers most servers")
}

func TestAnswerGraphContext(t *testing.T) {
	svc, llm := newService(t)
	_, err := svc.Ingest(context.Background(), []string{writeCorpus(t)})
	require.NoError(t, err)

	turn, err := svc.Answer(context.Background(), "linux -> unix")
	require.NoError(t, err)
	assert.True(t, turn.GraphContext)
	assert.Equal(t, "answer", turn.Answer)
	assert.NotEmpty(t, turn.Rendered)

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "Write a title and text summarizing the context.")
	assert.Contains(t, prompt, "linux, unix")
	assert.Contains(t, prompt, "Linux powers most servers")
	assert.Contains(t, prompt, "Unix shaped modern computing")
}

func TestAnswerGraphFreeQuery(t *testing.T) {
	svc, llm := newService(t)
	_, err := svc.Ingest(context.Background(), []string{writeCorpus(t)})
	require.NoError(t, err)

	turn, err := svc.Answer(context.Background(), "gq: how did unix influence modern computing")
	require.NoError(t, err)
	require.True(t, turn.GraphContext)
	assert.Contains(t, llm.lastPrompt(), "how did unix influence modern computing")
}

func TestAnswerEmptyIndexFallsBack(t *testing.T) {
	svc, llm := newService(t)
	turn, err := svc.Answer(context.Background(), "linux -> unix")
	require.NoError(t, err)
	assert.False(t, turn.GraphContext)
	assert.Equal(t, "answer", turn.Answer)
	assert.Contains(t, llm.lastPrompt(), "linux -> unix")
}

// failingTopicLLM errors on topic prompts and answers everything else.
type failingTopicLLM struct{}

func (failingTopicLLM) Complete(_ context.Context, _ string, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Create a simple, concise topic") {
		return "", errors.New("model unavailable")
	}
	return "answer", nil
}

func TestIngestSurvivesTopicInferenceFailure(t *testing.T) {
	ix := index.New(tfidf.NewEmbedder(), memory.NewStorage(), 0.01, nil)
	gc := graphquery.New(graphquery.Config{Store: ix, Limit: 10})
	svc := NewService(ix, gc, failingTopicLLM{}, chunker.NewParagraphExtractor(5), 10, nil)

	n, err := svc.Ingest(context.Background(), []string{writeCorpus(t)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, rec := range ix.Records() {
		assert.Empty(t, rec.Topic, "failed inference leaves the record untouched")
	}
}

func TestInferTopicsSkipsExplicitIDs(t *testing.T) {
	svc, llm := newService(t)
	require.NoError(t, svc.index.Add([]domain.Record{
		{ID: "named", Text: "Some text about nothing in particular."},
	}))
	require.NoError(t, svc.InferTopics(context.Background()))
	assert.Empty(t, llm.prompts, "records with explicit ids keep their id as label")
}
