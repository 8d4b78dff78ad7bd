package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/namidia/namidia/internal/model"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOrderPublisher hands checkout orders to the order pipeline
type KafkaOrderPublisher struct {
	writer MessageWriter
}

// NewKafkaOrderPublisher creates a publisher writing to topic on brokers
func NewKafkaOrderPublisher(brokers []string, topic string) *KafkaOrderPublisher {
	return NewKafkaOrderPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	})
}

// NewKafkaOrderPublisherWithWriter wraps an existing writer
func NewKafkaOrderPublisherWithWriter(w MessageWriter) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{writer: w}
}

// PublishOrder writes the order keyed by session so one session's orders stay ordered
func (p *KafkaOrderPublisher) PublishOrder(ctx context.Context, order *model.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.SessionID),
		Value: payload,
		Time:  order.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.placed")},
			{Key: "order_id", Value: []byte(order.ID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}

// LogOrderPublisher only logs orders. Used when no broker is configured.
type LogOrderPublisher struct {
	logger *zap.Logger
}

// NewLogOrderPublisher creates a logging publisher
func NewLogOrderPublisher(logger *zap.Logger) *LogOrderPublisher {
	return &LogOrderPublisher{logger: logger}
}

// PublishOrder logs the order summary
func (p *LogOrderPublisher) PublishOrder(ctx context.Context, order *model.Order) error {
	p.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", order.SessionID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return nil
}

// Close is a no-op
func (p *LogOrderPublisher) Close() error {
	return nil
}
