package checkout

import (
	"errors"
	"fmt"
)

// ErrSubmissionInProgress rejects a second submission for a user while one
// is still running.
var ErrSubmissionInProgress = errors.New("order submission already in progress")

// OrderPersistError reports that the order could not be stored. Nothing was
// created and the cart is untouched, so the same submission can be retried.
type OrderPersistError struct {
	Err error
}

func (e *OrderPersistError) Error() string {
	return fmt.Sprintf("persist order: %v", e.Err)
}

func (e *OrderPersistError) Unwrap() error { return e.Err }

// MessageSendError reports that the order was stored but the message could
// not be sent. Retry with ResendMessage and the OrderID.
type MessageSendError struct {
	OrderID string
	Err     error
}

func (e *MessageSendError) Error() string {
	return fmt.Sprintf("send order %s: %v", e.OrderID, e.Err)
}

func (e *MessageSendError) Unwrap() error { return e.Err }
