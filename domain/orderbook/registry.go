package orderbook

// Registry owns one Book per traded instrument, created lazily on first
// reference. It is a plain value owned by the engine, not shared state:
// an order for one instrument can never see another instrument's book.
type Registry struct {
	books map[string]*Book
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{books: make(map[string]*Book)}
}

// BookFor returns the book for an instrument, creating an empty one on
// first reference. Subsequent calls return the same book.
func (r *Registry) BookFor(instrument string) *Book {
	b, ok := r.books[instrument]
	if !ok {
		b = NewBook()
		r.books[instrument] = b
	}
	return b
}

// Len returns the number of instruments with a book.
func (r *Registry) Len() int {
	return len(r.books)
}
