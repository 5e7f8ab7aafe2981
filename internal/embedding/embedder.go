package embedding

// Embedder turns record and query text into vectors the index can
// compare. TF-IDF builds its vocabulary during Prepare; remote clients
// treat Prepare as a no-op and learn their dimension on the first embed.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}
