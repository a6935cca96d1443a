package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"florin/domain/orderbook"
	"florin/domain/report"
	"florin/infra/sequence"
)

func newTestEngine() (*Engine, *orderbook.Registry) {
	books := orderbook.NewRegistry()
	e := New(
		NewValidator(testInstruments),
		books,
		report.NewBuilder(report.NewClock()),
		sequence.New("ord"),
		zap.NewNop(),
	)
	return e, books
}

func request(cid, instrument string, side orderbook.Side, qty int64, price string) Request {
	return Request{
		ClientOrderID: cid,
		Instrument:    instrument,
		Side:          side,
		Quantity:      qty,
		Price:         decimal.RequireFromString(price),
	}
}

func buy(cid string, qty int64, price string) Request {
	return request(cid, "Rose", orderbook.Buy, qty, price)
}

func sell(cid string, qty int64, price string) Request {
	return request(cid, "Rose", orderbook.Sell, qty, price)
}

func statuses(recs []report.Execution) []report.Status {
	out := make([]report.Status, len(recs))
	for i, r := range recs {
		out[i] = r.Status
	}
	return out
}

func TestRejectedOrderNeverTouchesBook(t *testing.T) {
	e, books := newTestEngine()

	recs := e.Submit(buy("aa13", 15, "10.00"))

	require.Len(t, recs, 1)
	assert.Equal(t, report.StatusRejected, recs[0].Status)
	assert.Equal(t, "invalid quantity for order aa13: 15", recs[0].Reason)
	assert.Equal(t, int64(15), recs[0].Quantity)
	assert.Equal(t, "10", recs[0].Price.String())
	assert.NotEmpty(t, recs[0].OrderID)

	book := books.BookFor("Rose")
	assert.Zero(t, book.Bids.Len())
	assert.Zero(t, book.Asks.Len())
}

func TestNonCrossingOrderEmitsSingleNew(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 50, "10.00"))

	// Buy below the best ask: one New, zero trades.
	recs := e.Submit(buy("b1", 30, "9.50"))

	require.Equal(t, []report.Status{report.StatusNew}, statuses(recs))
	assert.Equal(t, int64(30), recs[0].Quantity)
	assert.Equal(t, "9.5", recs[0].Price.String())

	book := books.BookFor("Rose")
	assert.Equal(t, 1, book.Bids.Len())
	assert.Equal(t, 1, book.Asks.Len())
}

func TestExactCrossFillsBothSidesWithoutNew(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 50, "10.00"))

	recs := e.Submit(buy("b1", 50, "10.00"))

	// Fully crossing on arrival: no New for the incoming buy.
	require.Equal(t, []report.Status{report.StatusFill, report.StatusFill}, statuses(recs))
	assert.Equal(t, "b1", recs[0].ClientOrderID)
	assert.Equal(t, "s1", recs[1].ClientOrderID)
	for _, r := range recs {
		assert.Equal(t, int64(50), r.Quantity)
		assert.Equal(t, "10", r.Price.String())
	}

	book := books.BookFor("Rose")
	assert.Zero(t, book.Bids.Len())
	assert.Zero(t, book.Asks.Len())
}

func TestPartialConsumptionOfRestingOrder(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 50, "10.00"))

	recs := e.Submit(buy("b1", 30, "10.00"))

	// The incoming buy is fully consumed (Fill); the resting ask keeps
	// 20 open (PFill) and stays in the book.
	require.Equal(t, []report.Status{report.StatusFill, report.StatusPFill}, statuses(recs))
	assert.Equal(t, "b1", recs[0].ClientOrderID)
	assert.Equal(t, "s1", recs[1].ClientOrderID)
	for _, r := range recs {
		assert.Equal(t, int64(30), r.Quantity)
		assert.Equal(t, "10", r.Price.String())
	}

	ask := books.BookFor("Rose").Asks.Peek()
	require.NotNil(t, ask)
	assert.Equal(t, int64(20), ask.Quantity)
}

func TestCrossingRemainderRestsWithoutFurtherReport(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 30, "10.00"))

	recs := e.Submit(buy("b1", 100, "10.00"))

	// Crossed on arrival, so no New; one trade, then the remainder
	// rests silently.
	require.Equal(t, []report.Status{report.StatusPFill, report.StatusFill}, statuses(recs))
	assert.Equal(t, "b1", recs[0].ClientOrderID)
	assert.Equal(t, "s1", recs[1].ClientOrderID)

	bid := books.BookFor("Rose").Bids.Peek()
	require.NotNil(t, bid)
	assert.Equal(t, int64(70), bid.Quantity)
	assert.Zero(t, books.BookFor("Rose").Asks.Len())
}

func TestTradePriceIsRestingPrice(t *testing.T) {
	e, _ := newTestEngine()
	e.Submit(sell("s1", 50, "9.50"))

	recs := e.Submit(buy("b1", 50, "10.00"))

	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "9.5", r.Price.String())
	}
}

func TestSweepAcrossPriceLevels(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 30, "9.00"))
	e.Submit(sell("s2", 30, "9.50"))
	e.Submit(sell("s3", 100, "10.00"))

	recs := e.Submit(buy("b1", 100, "10.00"))

	require.Equal(t, []report.Status{
		report.StatusPFill, report.StatusFill, // 30 @ 9.00 vs s1
		report.StatusPFill, report.StatusFill, // 30 @ 9.50 vs s2
		report.StatusFill, report.StatusPFill, // 40 @ 10.00 vs s3, buy done
	}, statuses(recs))

	assert.Equal(t, "9", recs[0].Price.String())
	assert.Equal(t, "9.5", recs[2].Price.String())
	assert.Equal(t, "10", recs[4].Price.String())
	assert.Equal(t, int64(40), recs[4].Quantity)

	// s3 keeps its remainder.
	ask := books.BookFor("Rose").Asks.Peek()
	require.NotNil(t, ask)
	assert.Equal(t, "s3", ask.ClientID)
	assert.Equal(t, int64(60), ask.Quantity)
}

func TestQuantityConservation(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 30, "9.00"))
	e.Submit(sell("s2", 50, "9.50"))

	const original = int64(100)
	recs := e.Submit(buy("b1", original, "10.00"))

	var traded int64
	for _, r := range recs {
		if r.ClientOrderID == "b1" && (r.Status == report.StatusFill || r.Status == report.StatusPFill) {
			traded += r.Quantity
		}
	}
	bid := books.BookFor("Rose").Bids.Peek()
	require.NotNil(t, bid)
	assert.Equal(t, original, traded+bid.Quantity)
}

func TestTimePriorityAtEqualPrice(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(buy("b1", 30, "10.00"))
	e.Submit(buy("b2", 30, "10.00"))

	recs := e.Submit(sell("s1", 30, "10.00"))

	// The earlier bid at the level trades first.
	require.Equal(t, []report.Status{report.StatusFill, report.StatusFill}, statuses(recs))
	assert.Equal(t, "b1", recs[1].ClientOrderID)

	remaining := books.BookFor("Rose").Bids.Peek()
	require.NotNil(t, remaining)
	assert.Equal(t, "b2", remaining.ClientID)
}

func TestInstrumentIsolation(t *testing.T) {
	e, books := newTestEngine()
	e.Submit(sell("s1", 50, "10.00"))

	recs := e.Submit(request("b1", "Tulip", orderbook.Buy, 50, "10.00"))

	// Crossing price, wrong instrument: no trade.
	require.Equal(t, []report.Status{report.StatusNew}, statuses(recs))
	assert.Equal(t, 1, books.BookFor("Rose").Asks.Len())
	assert.Equal(t, 1, books.BookFor("Tulip").Bids.Len())
}

func TestSelfMatchingIsNotPrevented(t *testing.T) {
	e, _ := newTestEngine()
	e.Submit(sell("same-client", 50, "10.00"))

	recs := e.Submit(buy("same-client", 50, "10.00"))

	require.Equal(t, []report.Status{report.StatusFill, report.StatusFill}, statuses(recs))
	assert.Equal(t, recs[0].ClientOrderID, recs[1].ClientOrderID)
	assert.NotEqual(t, recs[0].OrderID, recs[1].OrderID)
}

func TestOrderIDsAreUniqueAndMonotone(t *testing.T) {
	e, _ := newTestEngine()

	r1 := e.Submit(buy("c1", 10, "10.00"))
	r2 := e.Submit(buy("c2", 15, "10.00")) // rejected, still gets an ID
	r3 := e.Submit(request("c3", "Tulip", orderbook.Buy, 10, "10.00"))

	assert.Equal(t, "ord1", r1[0].OrderID)
	assert.Equal(t, "ord2", r2[0].OrderID)
	assert.Equal(t, "ord3", r3[0].OrderID)
}

func TestTimestampsAreNonDecreasing(t *testing.T) {
	e, _ := newTestEngine()
	e.Submit(sell("s1", 30, "9.00"))
	e.Submit(sell("s2", 30, "9.50"))

	recs := e.Submit(buy("b1", 60, "10.00"))
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].Timestamp.Before(recs[i-1].Timestamp))
	}
}
