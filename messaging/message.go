// Package messaging hands rendered orders to the external channel staff
// read them on. Senders report only success or failure; there is no
// delivery confirmation.
package messaging

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultDestination is the staff WhatsApp number, country code first, no "+".
const DefaultDestination = "919876543210"

// Message is a plain-text message for a destination.
type Message struct {
	OrderID     string
	Destination string
	Text        string
}

// Sender delivers a message to its destination.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// escape percent-encodes text for a query value, spaces as %20.
func escape(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// DeepLink opens a chat with phone in the WhatsApp app, prefilled with text.
func DeepLink(phone, text string) string {
	return "whatsapp://send?phone=" + url.QueryEscape(phone) + "&text=" + escape(text)
}

// WebLink is the browser fallback for DeepLink.
func WebLink(phone, text string) string {
	return "https://wa.me/" + url.PathEscape(phone) + "?text=" + escape(text)
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("order message",
		zap.String("order_id", msg.OrderID),
		zap.String("destination", msg.Destination),
		zap.String("text", msg.Text),
	)
	return nil
}
