// Package engine runs continuous limit-order matching: it validates
// incoming order requests, crosses them against per-instrument books by
// price-time priority and emits one execution report per observable
// state change.
package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"florin/domain/orderbook"
	"florin/domain/report"
)

// Request is one well-typed inbound order request. Coercing or dropping
// malformed fields is the ingestion adapter's job; the engine never sees
// an unparsed value.
type Request struct {
	ClientOrderID string
	Instrument    string
	Side          orderbook.Side
	Quantity      int64
	Price         decimal.Decimal
}

// IDSource assigns the engine order identifier and the arrival sequence
// number for each inbound request.
type IDSource interface {
	Next() (id string, seq uint64)
}

// Engine is the continuous-matching control loop. It owns its book
// registry outright; processing is strictly sequential, so one request
// runs validation-through-resting to completion before the next starts.
//
// An order may cross resting liquidity submitted by the same client;
// self-matching is not detected.
type Engine struct {
	validator *Validator
	books     *orderbook.Registry
	reports   *report.Builder
	ids       IDSource
	log       *zap.Logger
}

// New wires an engine. No globals.
func New(v *Validator, books *orderbook.Registry, reports *report.Builder, ids IDSource, log *zap.Logger) *Engine {
	return &Engine{
		validator: v,
		books:     books,
		reports:   reports,
		ids:       ids,
		log:       log,
	}
}

// Submit processes one request to completion and returns the execution
// reports it produced, in emission order.
//
// A rejected order yields exactly one Rejected report and never touches
// a book. An accepted order yields one New report iff it does not cross
// the opposite book on arrival; each trade then yields one report per
// party, Fill when that party's remainder reached zero and PFill
// otherwise, always priced at the resting order's limit. Any remainder
// rests in the order's own book without a further report.
func (e *Engine) Submit(req Request) []report.Execution {
	id, seq := e.ids.Next()
	o := &orderbook.Order{
		ID:         id,
		ClientID:   req.ClientOrderID,
		Instrument: req.Instrument,
		Side:       req.Side,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Seq:        seq,
	}

	reason, ok := e.validator.Validate(o)
	if !ok {
		e.log.Debug("order rejected",
			zap.String("order_id", o.ID),
			zap.String("client_order_id", o.ClientID),
			zap.String("reason", reason),
		)
		return []report.Execution{e.reports.For(o, report.StatusRejected, o.Quantity, o.Price, reason)}
	}
	e.log.Debug("order accepted",
		zap.String("order_id", o.ID),
		zap.String("client_order_id", o.ClientID),
		zap.String("reason", reason),
	)

	book := e.books.BookFor(o.Instrument)
	opposite := book.Opposite(o.Side)

	var out []report.Execution

	// One New per order, decided before matching: it records admission
	// to the market, not that the order still rests. An order that
	// crosses on arrival never gets one.
	if best := opposite.Peek(); best == nil || !crosses(o, best) {
		out = append(out, e.reports.For(o, report.StatusNew, o.Quantity, o.Price, ""))
	}

	for o.Quantity > 0 {
		best := opposite.Peek()
		if best == nil || !crosses(o, best) {
			break
		}
		resting := opposite.Pop()

		qty := min(o.Quantity, resting.Quantity)
		price := resting.Price // price improvement accrues to the earlier order
		o.Quantity -= qty
		resting.Quantity -= qty

		out = append(out,
			e.reports.For(o, fillStatus(o), qty, price, ""),
			e.reports.For(resting, fillStatus(resting), qty, price, ""),
		)

		// Unchanged (price, seq) key: the remainder keeps its place.
		if resting.Quantity > 0 {
			opposite.Push(resting)
		}
	}

	if o.Quantity > 0 {
		book.Own(o.Side).Push(o)
	}
	return out
}

// crosses reports whether the best opposite order trades against the
// incoming order's limit.
func crosses(incoming, best *orderbook.Order) bool {
	if incoming.Side == orderbook.Buy {
		return best.Price.LessThanOrEqual(incoming.Price)
	}
	return best.Price.GreaterThanOrEqual(incoming.Price)
}

func fillStatus(o *orderbook.Order) report.Status {
	if o.Filled() {
		return report.StatusFill
	}
	return report.StatusPFill
}
