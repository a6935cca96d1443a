// Package stream publishes execution reports to Kafka as they are
// emitted. It is the live twin of the report file: same records, same
// order, JSON-encoded.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"florin/domain/report"
)

// Publisher is an engine sink backed by a Kafka topic.
type Publisher struct {
	ctx    context.Context
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
// The context bounds every in-flight write.
func NewPublisher(ctx context.Context, brokers []string, topic string) *Publisher {
	return &Publisher{
		ctx: ctx,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Emit publishes one report, keyed by order ID so every event of an
// order lands in the same partition, in order.
func (p *Publisher) Emit(rec report.Execution) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(p.ctx, kafka.Message{
		Key:   []byte(rec.OrderID),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
