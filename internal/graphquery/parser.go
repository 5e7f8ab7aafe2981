// Package graphquery implements the graph retrieval core: a small query
// language for concept chains and free-text graph questions, resolution
// of text to node identifiers, path query construction, and merging of
// semantically redundant nodes in a traversal result.
package graphquery

import "strings"

// Prefix marks a free-text graph question, e.g. "gq: tell me about linux".
const Prefix = "gq: "

// ParsedQuery is the result of parsing raw question text. Concepts keep
// their chain order; a zero value means the question is not a graph query
// and the caller should fall back to plain retrieval.
type ParsedQuery struct {
	Query    string
	Concepts []string
}

// IsGraph reports whether the question parsed as a graph query.
func (p ParsedQuery) IsGraph() bool {
	return p.Query != "" || len(p.Concepts) > 0
}

// Parse attempts to read question text as a graph query. A question
// qualifies when it contains the "->" concept delimiter or starts with
// the gq: prefix (case-insensitive). Concepts are trimmed and
// lower-cased. Parsing never fails; anything else returns a zero value.
func Parse(question string) ParsedQuery {
	trimmed := strings.ToLower(strings.TrimSpace(question))
	if !strings.Contains(question, "->") && !strings.HasPrefix(trimmed, Prefix) {
		return ParsedQuery{}
	}

	concepts := strings.Split(trimmed, "->")
	for i := range concepts {
		concepts[i] = strings.TrimSpace(concepts[i])
	}

	var query string
	if last := concepts[len(concepts)-1]; strings.Contains(last, Prefix) {
		concepts = concepts[:len(concepts)-1]
		head, rest, _ := strings.Cut(last, Prefix)
		if head = strings.TrimSpace(head); head != "" {
			concepts = append(concepts, head)
		}
		query = strings.TrimSpace(rest)
	}

	if len(concepts) == 0 {
		concepts = nil
	}
	return ParsedQuery{Query: query, Concepts: concepts}
}
