package engine

import (
	"fmt"

	"florin/domain/orderbook"
)

// Validator admits or rejects an order on static field rules. It is a
// pure function of the order's fields; rules are evaluated in a fixed
// sequence and the first failure wins.
type Validator struct {
	instruments map[string]struct{}
}

// NewValidator builds a validator recognizing exactly the given
// instrument set. The set is configuration, not a constant of the core.
func NewValidator(instruments []string) *Validator {
	set := make(map[string]struct{}, len(instruments))
	for _, in := range instruments {
		set[in] = struct{}{}
	}
	return &Validator{instruments: set}
}

// Validate returns whether the order is admissible and a human-readable
// reason. On rejection the reason names the first failing field; on
// success it restates validity for the audit trail.
func (v *Validator) Validate(o *orderbook.Order) (string, bool) {
	if _, ok := v.instruments[o.Instrument]; !ok {
		return fmt.Sprintf("invalid instrument: %s", o.Instrument), false
	}
	if !o.Side.Valid() {
		return fmt.Sprintf("invalid side for order %s: %d", o.ClientID, int(o.Side)), false
	}
	if !o.Price.IsPositive() {
		return fmt.Sprintf("invalid price for order %s: %s", o.ClientID, o.Price), false
	}
	if o.Quantity%10 != 0 || o.Quantity < 10 || o.Quantity > 1000 {
		return fmt.Sprintf("invalid quantity for order %s: %d", o.ClientID, o.Quantity), false
	}
	return fmt.Sprintf("order %s is valid", o.ClientID), true
}
