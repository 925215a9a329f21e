package order

import (
	"context"
	"time"
)

// Repository is the remote order store.
type Repository interface {
	// Create stores a new order and returns its generated id.
	Create(ctx context.Context, o Order) (string, error)
	Get(ctx context.Context, id string) (Order, error)
	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	MarkMessageSent(ctx context.Context, id string, at time.Time) error
}
