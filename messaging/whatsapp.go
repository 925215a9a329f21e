package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Launcher opens URLs on the device.
type Launcher interface {
	CanOpen(ctx context.Context, url string) (bool, error)
	Open(ctx context.Context, url string) error
}

// SendError reports that the messaging app could not be opened.
type SendError struct {
	URL string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("could not open WhatsApp: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// WhatsApp sends through the WhatsApp app, falling back to the web link when
// the app is not installed.
type WhatsApp struct {
	launcher    Launcher
	destination string
	logger      *zap.Logger
}

// NewWhatsApp creates a sender. An empty destination uses DefaultDestination.
func NewWhatsApp(launcher Launcher, destination string, logger *zap.Logger) *WhatsApp {
	if destination == "" {
		destination = DefaultDestination
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsApp{launcher: launcher, destination: destination, logger: logger}
}

func (w *WhatsApp) Send(ctx context.Context, msg Message) error {
	phone := msg.Destination
	if phone == "" {
		phone = w.destination
	}

	link := DeepLink(phone, msg.Text)
	ok, err := w.launcher.CanOpen(ctx, link)
	if err != nil {
		return &SendError{URL: link, Err: err}
	}
	if !ok {
		link = WebLink(phone, msg.Text)
		w.logger.Debug("whatsapp app unavailable, using web link", zap.String("order_id", msg.OrderID))
	}
	if err := w.launcher.Open(ctx, link); err != nil {
		return &SendError{URL: link, Err: err}
	}
	return nil
}
