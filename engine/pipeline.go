package engine

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"florin/domain/report"
)

// Source yields order requests in arrival order. Next returns io.EOF
// when the stream is exhausted.
type Source interface {
	Next() (Request, error)
}

// Sink receives execution reports in emission order.
type Sink interface {
	Emit(rec report.Execution) error
}

// Pipeline drains a request source through the engine and tees every
// report to each sink, preserving emission order per sink. One logical
// thread consumes the stream to completion; nothing is reordered.
type Pipeline struct {
	engine *Engine
	sinks  []Sink
	log    *zap.Logger
}

// NewPipeline wires a pipeline over the given sinks.
func NewPipeline(e *Engine, log *zap.Logger, sinks ...Sink) *Pipeline {
	return &Pipeline{engine: e, sinks: sinks, log: log}
}

// Run processes the source until exhaustion and returns the number of
// requests consumed and reports emitted. A sink or source failure stops
// the run; validation failures do not (they are reports, not errors).
func (p *Pipeline) Run(src Source) (requests, reports int, err error) {
	for {
		req, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return requests, reports, fmt.Errorf("read order request: %w", err)
		}
		requests++

		for _, rec := range p.engine.Submit(req) {
			for _, s := range p.sinks {
				if err := s.Emit(rec); err != nil {
					return requests, reports, fmt.Errorf("emit report for order %s: %w", rec.OrderID, err)
				}
			}
			reports++
		}
	}
	p.log.Info("run complete",
		zap.Int("requests", requests),
		zap.Int("reports", reports),
	)
	return requests, reports, nil
}
