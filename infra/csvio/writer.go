package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"florin/domain/report"
)

var reportHeader = []string{
	"Client Order ID",
	"Order ID",
	"Instrument",
	"Side",
	"Price",
	"Quantity",
	"Status",
	"Reason",
	"Transaction Time",
}

// Writer renders execution reports to the delimited report format, one
// row per report, in emission order.
type Writer struct {
	csv *csv.Writer
}

// NewWriter wraps a report stream and writes the header row.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return nil, err
	}
	return &Writer{csv: cw}, nil
}

// Emit writes one report row.
func (w *Writer) Emit(rec report.Execution) error {
	return w.csv.Write([]string{
		rec.ClientOrderID,
		rec.OrderID,
		rec.Instrument,
		rec.Side.String(),
		rec.Price.String(),
		strconv.FormatInt(rec.Quantity, 10),
		rec.Status.String(),
		rec.Reason,
		rec.Timestamp.Format(report.TransactTimeLayout),
	})
}

// Flush writes any buffered rows and reports the first write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
