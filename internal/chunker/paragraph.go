package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ParagraphExtractor splits text files into paragraph sections for
// indexing. Files without blank-line structure fall back to sentence
// grouping so a wall of text still yields usable sections.
type ParagraphExtractor struct {
	sentencesPerSection int
	paragraphSplit      *regexp.Regexp
	sentenceSplit       *regexp.Regexp
}

// NewParagraphExtractor creates an extractor; sentencesPerSection bounds
// the fallback grouping and defaults to 5.
func NewParagraphExtractor(sentencesPerSection int) *ParagraphExtractor {
	if sentencesPerSection <= 0 {
		sentencesPerSection = 5
	}
	return &ParagraphExtractor{
		sentencesPerSection: sentencesPerSection,
		paragraphSplit:      regexp.MustCompile(`\n\s*\n`),
		sentenceSplit:       regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Extract reads every path (globs allowed) and returns the extracted
// sections in document order.
func (p *ParagraphExtractor) Extract(paths []string) ([]string, error) {
	var sections []string
	for _, path := range paths {
		matches, _ := filepath.Glob(path)
		if matches == nil {
			matches = []string{path}
		}
		for _, m := range matches {
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", m, err)
			}
			sections = append(sections, p.Sections(string(data))...)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no text sections found")
	}
	return sections, nil
}

// Sections splits raw text into paragraphs, with a sentence-group
// fallback for text lacking blank lines.
func (p *ParagraphExtractor) Sections(text string) []string {
	var out []string
	for _, para := range p.paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, para)
	}
	if len(out) > 1 {
		return out
	}
	if len(out) == 0 {
		return nil
	}
	// Single paragraph: regroup by sentences when it is long enough
	sentences := p.sentenceSplit.FindAllString(out[0], -1)
	if len(sentences) <= p.sentencesPerSection {
		return out
	}
	var grouped []string
	for i := 0; i < len(sentences); i += p.sentencesPerSection {
		end := i + p.sentencesPerSection
		if end > len(sentences) {
			end = len(sentences)
		}
		parts := make([]string, 0, end-i)
		for _, s := range sentences[i:end] {
			parts = append(parts, strings.TrimSpace(s))
		}
		grouped = append(grouped, strings.Join(parts, " "))
	}
	return grouped
}
