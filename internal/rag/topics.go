package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"graphrag/internal/graphquery"
)

const topicPrompt = `Create a simple, concise topic for the following text. Only return the topic name.

Text:
%s`

var wordRe = regexp.MustCompile(`\w+`)

// InferTopics asks the model for a concise topic for every record that
// has a store-generated identifier and no topic yet. A failed inference
// leaves the record untouched; it keeps its identifier as label.
func (s *Service) InferTopics(ctx context.Context) error {
	inferred := 0
	for _, rec := range s.index.Records() {
		if !graphquery.IsAutoID(rec.ID) || rec.Topic != "" {
			continue
		}
		text := rec.Text
		if !wordRe.MatchString(text) {
			text = rec.ID
		}
		topic, err := s.llm.Complete(ctx, "", fmt.Sprintf(topicPrompt, text))
		if err != nil {
			s.log.Warn("topic inference failed", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		s.index.SetTopic(rec.ID, topic)
		inferred++
	}
	if inferred > 0 {
		s.log.Debug("topics inferred", zap.Int("count", inferred))
	}
	return nil
}
