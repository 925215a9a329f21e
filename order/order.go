// Package order composes immutable orders from cart lines and renders them
// as the plain-text message sent to staff.
package order

import (
	"regexp"
	"strings"
	"time"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/storefront"
)

// Error message constants.
const (
	ErrMsgEmptyCart        = "cart is empty"
	ErrMsgUserRequired     = "user id is required"
	ErrMsgNameRequired     = "contact name is required"
	ErrMsgStreetRequired   = "delivery address is required"
	ErrMsgCityRequired     = "city is required"
	ErrMsgPincodeRequired  = "pincode is required"
	ErrMsgPincodeInvalid   = "pincode must be 6 digits"
	ErrMsgDeliveryInvalid  = "delivery type must be delivery or pickup"
	ErrMsgOrderNotFound    = "order not found"
	ErrMsgStatusInvalid    = "unknown order status"
	ErrMsgStatusTransition = "invalid status transition"
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Line is a cart line as captured in an order.
type Line = cart.Line

// Contact is how staff reach the customer.
type Contact struct {
	Name  string `json:"name" dynamodbav:"name"`
	Email string `json:"email" dynamodbav:"email"`
	Phone string `json:"phone" dynamodbav:"phone"`
}

// Address is a delivery address.
type Address struct {
	Street   string `json:"street" dynamodbav:"street"`
	Landmark string `json:"landmark,omitempty" dynamodbav:"landmark,omitempty"`
	City     string `json:"city" dynamodbav:"city"`
	State    string `json:"state" dynamodbav:"state"`
	Pincode  string `json:"pincode" dynamodbav:"pincode"`
}

// DeliveryType is how the order reaches the customer.
type DeliveryType string

const (
	DeliveryHome   DeliveryType = "delivery"
	DeliveryPickup DeliveryType = "pickup"
)

// Delivery carries the fulfilment details. Address is set only for home delivery.
type Delivery struct {
	Type    DeliveryType `json:"deliveryType" dynamodbav:"deliveryType"`
	Address *Address     `json:"address,omitempty" dynamodbav:"address,omitempty"`
	Notes   string       `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Order is a submitted cart. Only Status and MessageSent change after creation.
type Order struct {
	ID            string     `json:"id" dynamodbav:"id"`
	UserID        string     `json:"userId" dynamodbav:"userId"`
	Contact       Contact    `json:"contact" dynamodbav:"contact"`
	Lines         []Line     `json:"items" dynamodbav:"items"`
	Delivery      Delivery   `json:"delivery" dynamodbav:"delivery"`
	TotalStems    int        `json:"totalStems" dynamodbav:"totalStems"`
	Status        Status     `json:"status" dynamodbav:"status"`
	MessageSent   bool       `json:"whatsappSent" dynamodbav:"whatsappSent"`
	MessageSentAt *time.Time `json:"whatsappSentAt,omitempty" dynamodbav:"whatsappSentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Build composes a pending order from cart lines. The lines are copied, so
// later cart changes do not reach the order.
func Build(lines []Line, userID string, contact Contact, delivery Delivery, now time.Time) (Order, error) {
	if err := storefront.RequireNotEmpty(lines, ErrMsgEmptyCart); err != nil {
		return Order{}, err
	}
	if err := storefront.RequireNonEmpty(strings.TrimSpace(userID), ErrMsgUserRequired); err != nil {
		return Order{}, err
	}
	if err := storefront.RequireNonEmpty(strings.TrimSpace(contact.Name), ErrMsgNameRequired); err != nil {
		return Order{}, err
	}
	delivery, err := normalizeDelivery(delivery)
	if err != nil {
		return Order{}, err
	}

	copied := make([]Line, len(lines))
	for i, l := range lines {
		copied[i] = l.Clone()
	}

	return Order{
		UserID:     userID,
		Contact:    contact,
		Lines:      copied,
		Delivery:   delivery,
		TotalStems: cart.TotalStems(copied),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func normalizeDelivery(d Delivery) (Delivery, error) {
	if err := storefront.RequireOneOf(d.Type, []DeliveryType{DeliveryHome, DeliveryPickup}, ErrMsgDeliveryInvalid); err != nil {
		return Delivery{}, err
	}
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Type == DeliveryPickup {
		d.Address = nil
		return d, nil
	}

	var a Address
	if d.Address != nil {
		a = *d.Address
	}
	a.Street = strings.TrimSpace(a.Street)
	a.Landmark = strings.TrimSpace(a.Landmark)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)

	if err := storefront.RequireNonEmpty(a.Street, ErrMsgStreetRequired); err != nil {
		return Delivery{}, err
	}
	if err := storefront.RequireNonEmpty(a.City, ErrMsgCityRequired); err != nil {
		return Delivery{}, err
	}
	if err := storefront.RequireNonEmpty(a.Pincode, ErrMsgPincodeRequired); err != nil {
		return Delivery{}, err
	}
	if !pincodePattern.MatchString(a.Pincode) {
		return Delivery{}, storefront.NewInvalidArgument(ErrMsgPincodeInvalid)
	}
	d.Address = &a
	return d, nil
}
