package orderbook

import "container/heap"

// Queue is a price-time priority queue over resting orders for one side
// of one book. Bids rank by price descending, asks by price ascending;
// ties rank by arrival sequence ascending. Peek, Pop and Push are all at
// worst logarithmic.
//
// Partially filled orders are popped, mutated and pushed back; the
// priority key (price, seq) never changes, so a reinserted remainder
// keeps its place ahead of untouched same-priced orders that arrived
// later.
type Queue struct {
	h orderHeap
}

// NewBidQueue returns an empty queue ranked for the buy side.
func NewBidQueue() *Queue {
	return &Queue{h: orderHeap{bid: true}}
}

// NewAskQueue returns an empty queue ranked for the sell side.
func NewAskQueue() *Queue {
	return &Queue{h: orderHeap{bid: false}}
}

func (q *Queue) Len() int {
	return len(q.h.orders)
}

// Peek returns the highest-priority order without removing it, or nil
// when the queue is empty.
func (q *Queue) Peek() *Order {
	if len(q.h.orders) == 0 {
		return nil
	}
	return q.h.orders[0]
}

// Pop removes and returns the highest-priority order, or nil when the
// queue is empty.
func (q *Queue) Pop() *Order {
	if len(q.h.orders) == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Order)
}

// Push inserts an order. An order without open quantity must never rest
// in a book; hitting that here means a bug upstream, not bad input.
func (q *Queue) Push(o *Order) {
	if o.Quantity <= 0 {
		panic("orderbook: resting order without open quantity")
	}
	heap.Push(&q.h, o)
}

type orderHeap struct {
	orders []*Order
	bid    bool
}

func (h orderHeap) Len() int { return len(h.orders) }

func (h orderHeap) Less(i, j int) bool {
	a, b := h.orders[i], h.orders[j]
	if c := a.Price.Cmp(b.Price); c != 0 {
		if h.bid {
			return c > 0
		}
		return c < 0
	}
	return a.Seq < b.Seq
}

func (h orderHeap) Swap(i, j int) {
	h.orders[i], h.orders[j] = h.orders[j], h.orders[i]
}

func (h *orderHeap) Push(x any) {
	h.orders = append(h.orders, x.(*Order))
}

func (h *orderHeap) Pop() any {
	old := h.orders
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	h.orders = old[:n-1]
	return o
}
