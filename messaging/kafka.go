package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultTopic carries rendered order messages for the staff relay.
const DefaultTopic = "storefront-order-messages"

// MessageWriter is the part of *kafka.Writer the relay uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// relayEvent is the JSON payload published per message.
type relayEvent struct {
	OrderID     string    `json:"order_id"`
	Destination string    `json:"destination"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// KafkaRelay publishes messages to a topic consumed by the staff
// notification relay.
type KafkaRelay struct {
	writer      MessageWriter
	destination string
	now         func() time.Time
	logger      *zap.Logger
}

// NewKafkaRelay creates a relay writing to topic on brokers.
func NewKafkaRelay(brokers []string, topic, destination string, logger *zap.Logger) *KafkaRelay {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return NewKafkaRelayWithWriter(writer, destination, logger)
}

// NewKafkaRelayWithWriter creates a relay over an existing writer.
func NewKafkaRelayWithWriter(writer MessageWriter, destination string, logger *zap.Logger) *KafkaRelay {
	if destination == "" {
		destination = DefaultDestination
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaRelay{writer: writer, destination: destination, now: time.Now, logger: logger}
}

func (r *KafkaRelay) Send(ctx context.Context, msg Message) error {
	if msg.Destination == "" {
		msg.Destination = r.destination
	}
	value, err := json.Marshal(relayEvent{
		OrderID:     msg.OrderID,
		Destination: msg.Destination,
		Text:        msg.Text,
		Timestamp:   r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal relay event: %w", err)
	}

	if err := r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("ORDER#" + msg.OrderID),
		Value: value,
	}); err != nil {
		r.logger.Error("failed to publish order message",
			zap.String("order_id", msg.OrderID),
			zap.Error(err))
		return fmt.Errorf("publish order message: %w", err)
	}

	r.logger.Info("order message published", zap.String("order_id", msg.OrderID))
	return nil
}

// Close flushes and closes the writer.
func (r *KafkaRelay) Close() error {
	return r.writer.Close()
}
