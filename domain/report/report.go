// Package report defines the execution reports the engine emits and the
// capture clock that timestamps them. Reports are write-once records:
// one per observable state change on an order, never mutated or
// retracted afterwards.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"florin/domain/orderbook"
)

// Status is the closed set of execution outcomes downstream consumers
// key off.
type Status uint8

const (
	StatusNew Status = iota
	StatusRejected
	StatusFill
	StatusPFill
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusRejected:
		return "Rejected"
	case StatusFill:
		return "Fill"
	case StatusPFill:
		return "PFill"
	default:
		return "Unknown"
	}
}

// MarshalText serializes the status as its wire token.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Execution describes one state change on one order. Quantity and Price
// belong to the event (the trade, or the order as validated), not
// necessarily to the order's original request. Reason is set for
// rejections and empty otherwise.
type Execution struct {
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Instrument    string          `json:"instrument"`
	Side          orderbook.Side  `json:"side"`
	Status        Status          `json:"status"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Reason        string          `json:"reason,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// TransactTimeLayout renders capture timestamps in the report file
// format, millisecond resolution.
const TransactTimeLayout = "20060102-150405.000"

// Clock captures wall-clock timestamps that are monotonically
// non-decreasing even if the system clock steps backwards mid-run.
type Clock struct {
	now  func() time.Time
	last time.Time
}

// NewClock returns a clock backed by the system time.
func NewClock() *Clock {
	return NewClockFunc(time.Now)
}

// NewClockFunc returns a clock backed by the given time source.
func NewClockFunc(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Capture returns the current time at millisecond resolution, clamped
// so it never precedes a previously captured value.
func (c *Clock) Capture() time.Time {
	t := c.now().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// Builder stamps immutable execution reports for one engine run.
type Builder struct {
	clock *Clock
}

// NewBuilder creates a builder emitting timestamps from the given clock.
func NewBuilder(clock *Clock) *Builder {
	return &Builder{clock: clock}
}

// For builds the report for one event on an order, capturing the
// timestamp at the moment of emission.
func (b *Builder) For(o *orderbook.Order, status Status, qty int64, price decimal.Decimal, reason string) Execution {
	return Execution{
		OrderID:       o.ID,
		ClientOrderID: o.ClientID,
		Instrument:    o.Instrument,
		Side:          o.Side,
		Status:        status,
		Quantity:      qty,
		Price:         price,
		Reason:        reason,
		Timestamp:     b.clock.Capture(),
	}
}
