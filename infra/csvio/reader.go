// Package csvio adapts the engine to the delimited request and report
// file formats. The reader upholds the coerce-or-drop contract: a record
// with a malformed numeric field never reaches the engine.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"florin/domain/orderbook"
	"florin/engine"
)

// Request file columns, after the header row.
const (
	colClientOrderID = iota
	colInstrument
	colSide
	colQuantity
	colPrice
	requestFields
)

// Reader streams order requests from a delimited file in arrival order.
type Reader struct {
	csv     *csv.Reader
	log     *zap.Logger
	skipped bool // header row consumed
}

// NewReader wraps a request stream. The first row is treated as a
// header and discarded.
func NewReader(r io.Reader, log *zap.Logger) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr, log: log}
}

// Next returns the next well-typed request, dropping malformed records
// with a warning. It returns io.EOF at end of stream.
func (r *Reader) Next() (engine.Request, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			return engine.Request{}, err
		}
		if !r.skipped {
			r.skipped = true
			continue
		}
		if len(row) < requestFields {
			if len(row) != 1 || row[0] != "" {
				r.log.Warn("dropping short record", zap.Strings("row", row))
			}
			continue
		}

		side, err := strconv.ParseUint(row[colSide], 10, 8)
		if err != nil {
			r.log.Warn("dropping record with malformed side", zap.Strings("row", row), zap.Error(err))
			continue
		}
		qty, err := strconv.ParseInt(row[colQuantity], 10, 64)
		if err != nil {
			r.log.Warn("dropping record with malformed quantity", zap.Strings("row", row), zap.Error(err))
			continue
		}
		price, err := decimal.NewFromString(row[colPrice])
		if err != nil {
			r.log.Warn("dropping record with malformed price", zap.Strings("row", row), zap.Error(err))
			continue
		}

		return engine.Request{
			ClientOrderID: row[colClientOrderID],
			Instrument:    row[colInstrument],
			Side:          orderbook.Side(side),
			Quantity:      qty,
			Price:         price,
		}, nil
	}
}
