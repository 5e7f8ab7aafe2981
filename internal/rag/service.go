// Package rag runs one retrieval-augmented turn: graph context first,
// plain vector retrieval as fallback, then a single model call.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"graphrag/internal/chunker"
	"graphrag/internal/domain"
	"graphrag/internal/graphquery"
	"graphrag/internal/index"
)

const systemPrompt = "You are a friendly assistant. You answer questions from users."

const answerTemplate = `
Answer the following question using only the context below. Only include information
specifically discussed.

question: %s
context: %s `

// LLM is the completion capability the service needs.
type LLM interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Turn is the outcome of answering one question.
type Turn struct {
	Answer   string
	Rendered string
	// GraphContext reports whether the answer was grounded in a graph
	// traversal rather than plain vector retrieval.
	GraphContext bool
}

// Service wires ingestion, the graph-query core and the language model.
type Service struct {
	index       *index.Index
	graph       *graphquery.GraphContext
	llm         LLM
	extractor   *chunker.ParagraphExtractor
	contextSize int
	log         *zap.Logger
}

// NewService creates the turn service. contextSize bounds both the
// number of traversal paths requested and the fallback retrieval size;
// non-positive values default to 10.
func NewService(ix *index.Index, gc *graphquery.GraphContext, model LLM, extractor *chunker.ParagraphExtractor, contextSize int, log *zap.Logger) *Service {
	if contextSize <= 0 {
		contextSize = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		index:       ix,
		graph:       gc,
		llm:         model,
		extractor:   extractor,
		contextSize: contextSize,
		log:         log,
	}
}

// Ingest extracts sections from the given paths, indexes them and infers
// topics for new records. It returns the number of sections indexed.
func (s *Service) Ingest(ctx context.Context, paths []string) (int, error) {
	sections, err := s.extractor.Extract(paths)
	if err != nil {
		return 0, err
	}
	records := make([]domain.Record, len(sections))
	for i, text := range sections {
		records[i] = domain.Record{Text: text}
	}
	if err := s.index.Add(records); err != nil {
		return 0, err
	}
	if err := s.InferTopics(ctx); err != nil {
		return 0, err
	}
	return len(sections), nil
}

// Answer runs one RAG turn for a question.
func (s *Service) Answer(ctx context.Context, question string) (*Turn, error) {
	result, err := s.graph.Retrieve(question)
	if err != nil {
		return nil, err
	}

	turn := &Turn{Rendered: result.Rendered, GraphContext: len(result.Context) > 0}
	texts := make([]string, 0, s.contextSize)
	if turn.GraphContext {
		for _, entry := range result.Context {
			texts = append(texts, entry.Text)
		}
	} else {
		matches, err := s.index.Search(question, s.contextSize)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if rec, ok := s.index.Record(m.ID); ok {
				texts = append(texts, rec.Text)
			}
		}
	}

	prompt := fmt.Sprintf(answerTemplate, result.Question, strings.Join(texts, "\n"))
	answer, err := s.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	turn.Answer = answer
	return turn, nil
}

// HasGraph reports whether graph retrieval is available.
func (s *Service) HasGraph() bool { return s.index.HasGraph() }

// Count returns the number of indexed records.
func (s *Service) Count() int { return s.index.Count() }
