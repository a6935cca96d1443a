package orderbook

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order. The numeric values mirror the wire
// encoding of inbound requests (1=buy, 2=sell); other values are carried
// through so the validator can reject them with the original field intact.
type Side uint8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return strconv.Itoa(int(s))
	}
}

// Valid reports whether the side is one of the two tradable directions.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a single order admitted to (or rejected from) the market.
//
// Quantity is the remaining open quantity and is decremented as fills
// land; every other field is fixed at ingestion. Seq is the arrival
// sequence number assigned by the sequencer and is the time-priority
// key inside a price level.
type Order struct {
	ID         string
	ClientID   string
	Instrument string
	Side       Side
	Quantity   int64
	Price      decimal.Decimal
	Seq        uint64
}

// Filled reports whether the order has no open quantity left.
func (o *Order) Filled() bool {
	return o.Quantity == 0
}
