package domain

// Record is a single indexed entry: an identifier, its text and an
// optional topic assigned after ingestion.
type Record struct {
	ID    string
	Text  string
	Topic string
}

// SearchResult is an indexed entry matched by a similarity search.
type SearchResult struct {
	ID    string
	Score float64
}

// Match points at a candidate by position with its similarity score.
type Match struct {
	Index int
	Score float64
}

// ContextEntry is one record handed to the language model as context.
type ContextEntry struct {
	ID   string
	Text string
}

// Searcher finds the best matching records for free text.
// Results are ordered best first, at most k entries, scores in [0, 1].
type Searcher interface {
	Search(text string, k int) ([]SearchResult, error)
}

// Similarity ranks candidate strings against a query text.
// Results are ordered best first and reference candidates by index.
type Similarity interface {
	Similarity(text string, candidates []string) ([]Match, error)
}
