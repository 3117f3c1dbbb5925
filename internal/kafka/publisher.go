package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

//go:generate mockgen -source internal/kafka/publisher.go -destination=internal/kafka/publisher_mock_test.go -package=kafka

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a synchronous writer that keys messages to partitions
// by hash, so events for one order stay ordered.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// Publisher writes lifecycle events and batch results. Either writer may be
// nil, which turns the matching call into a no-op.
type Publisher struct {
	events  Writer
	results Writer
	logger  *zap.Logger
}

func NewPublisher(events, results Writer, logger *zap.Logger) *Publisher {
	return &Publisher{events: events, results: results, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	if p.events == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(ev.Key().String()),
		Value: b,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
		Time: ev.OccurredAt,
	}
	if err := p.events.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteResults sends one message per item result in a single write.
func (p *Publisher) WriteResults(ctx context.Context, results []domain.ItemResult) error {
	if p.results == nil || len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(results))
	for _, r := range results {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(r.Key().String()),
			Value:   b,
			Headers: []kafkago.Header{{Key: "result-code", Value: []byte(r.Code)}},
		})
	}
	if err := p.results.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	p.logger.Debug("results written", zap.Int("count", len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	var first error
	for _, w := range []Writer{p.events, p.results} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Noop discards events. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, domain.Event) error { return nil }
