package order

import "github.com/growteq/storefront/storefront"

// Status is the staff-driven fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered},
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether staff may move an order from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Label is the display name of a status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusProcessing:
		return "Processing"
	case StatusDispatched:
		return "Dispatched"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// CheckTransition validates a staff status change.
func CheckTransition(from, to Status) error {
	if !ValidStatus(to) {
		return storefront.NewInvalidArgumentf("%s: %q", ErrMsgStatusInvalid, to)
	}
	if !from.CanTransitionTo(to) {
		return storefront.NewFailedPreconditionf("%s: %s to %s", ErrMsgStatusTransition, from, to)
	}
	return nil
}
