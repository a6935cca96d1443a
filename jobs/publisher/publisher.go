// Package publisher drains the report outbox to Kafka in the
// background. It only ever touches already-durable outbox rows, never
// engine state, so it can run alongside the matching loop.
package publisher

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"florin/infra/outbox"
)

// Publisher sweeps pending outbox records to a Kafka topic.
type Publisher struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

// New wires a publisher over an existing producer.
func New(ob *outbox.Outbox, producer sarama.SyncProducer, topic string, interval time.Duration, log *zap.Logger) *Publisher {
	return &Publisher{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}
}

// Dial connects a synchronous producer to the brokers and wires a
// publisher over it.
func Dial(ob *outbox.Outbox, brokers []string, topic string, interval time.Duration, log *zap.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return New(ob, producer, topic, interval, log), nil
}

// Start launches the sweep loop until the context is canceled.
func (p *Publisher) Start(ctx context.Context) {
	p.log.Info("outbox publisher started", zap.String("topic", p.topic))

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Sweep()
			}
		}
	}()
}

// Sweep publishes every pending record once. A record is marked SENT
// before the attempt and ACKED only on broker acknowledgment; failures
// are left for the next sweep.
func (p *Publisher) Sweep() {
	err := p.outbox.ScanPending(func(seq uint64, payload []byte) error {
		if err := p.outbox.MarkSent(seq); err != nil {
			return err
		}

		_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			p.log.Warn("publish failed, will retry", zap.Uint64("seq", seq), zap.Error(err))
			return nil
		}

		return p.outbox.MarkAcked(seq)
	})
	if err != nil {
		p.log.Error("outbox sweep aborted", zap.Error(err))
	}
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
