package api

import (
	"context"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/session"
	"github.com/growteq/storefront/storefront"
)

type submitOrderRequest struct {
	UserID   string         `json:"userId"`
	Contact  order.Contact  `json:"contact"`
	Delivery order.Delivery `json:"delivery"`
}

type orderResponse struct {
	Order       order.Order `json:"order"`
	StatusLabel string      `json:"statusLabel"`
	// DeepLink and WebLink open the rendered message in the messaging app,
	// for clients that send it themselves.
	DeepLink string `json:"deepLink"`
	WebLink  string `json:"webLink"`
}

func (s *Service) respond(o order.Order) orderResponse {
	text := order.Render(o)
	return orderResponse{
		Order:       o,
		StatusLabel: o.Status.Label(),
		DeepLink:    messaging.DeepLink(s.destination, text),
		WebLink:     messaging.WebLink(s.destination, text),
	}
}

// userCart hands checkout the lines read at request start but clears
// whichever cart is current when the send completes, since the session may
// have been evicted and reopened in between.
type userCart struct {
	sessions *session.Registry
	userID   string
	lines    []cart.Line
}

func (u userCart) Lines() []cart.Line { return u.lines }

func (u userCart) Clear(ctx context.Context) error {
	c, err := u.sessions.Cart(ctx, u.userID)
	if err != nil {
		return err
	}
	return c.Clear(ctx)
}

func (s *Service) userCart(userID string, c *cart.Store) userCart {
	return userCart{sessions: s.sessions, userID: userID, lines: c.Lines()}
}

func submitOrder(ctx context.Context, s *Service, req submitOrderRequest) (orderResponse, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return orderResponse{}, err
	}
	uc := s.userCart(req.UserID, c)
	o, err := order.Build(uc.Lines(), req.UserID, req.Contact, req.Delivery, s.now().In(s.loc))
	if err != nil {
		return orderResponse{}, err
	}
	o, err = s.checkout.Submit(ctx, uc, o)
	if err != nil {
		return orderResponse{}, err
	}
	return s.respond(o), nil
}

type orderRequest struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
}

// ownedOrder loads an order and hides it from other users.
func (s *Service) ownedOrder(ctx context.Context, userID, orderID string) (order.Order, error) {
	if err := storefront.RequireNonEmpty(userID, order.ErrMsgUserRequired); err != nil {
		return order.Order{}, err
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if o.UserID != userID {
		return order.Order{}, storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	return o, nil
}

func resendOrderMessage(ctx context.Context, s *Service, req orderRequest) (orderResponse, error) {
	if _, err := s.ownedOrder(ctx, req.UserID, req.OrderID); err != nil {
		return orderResponse{}, err
	}
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return orderResponse{}, err
	}
	o, err := s.checkout.ResendMessage(ctx, s.userCart(req.UserID, c), req.OrderID)
	if err != nil {
		return orderResponse{}, err
	}
	return s.respond(o), nil
}

func getOrder(ctx context.Context, s *Service, req orderRequest) (orderResponse, error) {
	o, err := s.ownedOrder(ctx, req.UserID, req.OrderID)
	if err != nil {
		return orderResponse{}, err
	}
	return s.respond(o), nil
}

type listOrdersRequest struct {
	UserID string `json:"userId"`
}

type ordersResponse struct {
	Orders []order.Order `json:"orders"`
}

func listOrders(ctx context.Context, s *Service, req listOrdersRequest) (ordersResponse, error) {
	if err := storefront.RequireNonEmpty(req.UserID, order.ErrMsgUserRequired); err != nil {
		return ordersResponse{}, err
	}
	orders, err := s.orders.ListByUser(ctx, req.UserID)
	if err != nil {
		return ordersResponse{}, err
	}
	return ordersResponse{Orders: nonNil(orders)}, nil
}
