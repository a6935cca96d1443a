package orderbook

// Book holds the two resting-liquidity queues for one instrument.
type Book struct {
	Bids *Queue
	Asks *Queue
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		Bids: NewBidQueue(),
		Asks: NewAskQueue(),
	}
}

// Own returns the queue an order of the given side rests in.
func (b *Book) Own(s Side) *Queue {
	if s == Buy {
		return b.Bids
	}
	return b.Asks
}

// Opposite returns the queue an order of the given side matches against.
func (b *Book) Opposite(s Side) *Queue {
	return b.Own(s.Opposite())
}
