// Package checkout submits composed orders: it stores the order, sends the
// rendered message to staff and only then clears the cart.
package checkout

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/storefront"
)

// Error message constants.
const (
	ErrMsgAlreadySent = "order message already sent"
)

// Default step timeouts.
const (
	DefaultPersistTimeout = 10 * time.Second
	DefaultSendTimeout    = 10 * time.Second
)

// DefaultPendingCapacity bounds the unsent orders kept in memory. Older ones
// are still resendable from the repository.
const DefaultPendingCapacity = 256

// Cart is the part of the cart store checkout needs.
type Cart interface {
	Lines() []cart.Line
	Clear(ctx context.Context) error
}

// Config tunes a Service. Zero values take the defaults.
type Config struct {
	Destination    string
	PersistTimeout time.Duration
	SendTimeout    time.Duration
	// PendingCapacity bounds the in-memory set of stored but unsent orders.
	PendingCapacity int
	Logger          *zap.Logger
	Now             func() time.Time
}

// Service orchestrates order submission.
type Service struct {
	repo        order.Repository
	sender      messaging.Sender
	destination string
	persistTO   time.Duration
	sendTO      time.Duration
	now         func() time.Time
	logger      *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	pending  *lru.Cache
}

// New creates a checkout Service.
func New(repo order.Repository, sender messaging.Sender, cfg Config) *Service {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Destination == "" {
		cfg.Destination = messaging.DefaultDestination
	}
	if cfg.PendingCapacity <= 0 {
		cfg.PendingCapacity = DefaultPendingCapacity
	}
	// lru.New only fails on a non-positive size.
	pending, _ := lru.New(cfg.PendingCapacity)
	return &Service{
		repo:        repo,
		sender:      sender,
		destination: cfg.Destination,
		persistTO:   cfg.PersistTimeout,
		sendTO:      cfg.SendTimeout,
		now:         cfg.Now,
		logger:      cfg.Logger,
		inFlight:    make(map[string]bool),
		pending:     pending,
	}
}

func (s *Service) begin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return ErrSubmissionInProgress
	}
	s.inFlight[userID] = true
	return nil
}

func (s *Service) end(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

// InProgress reports whether a submission for userID is running.
func (s *Service) InProgress(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[userID]
}

// Pending reports whether orderID was stored but its message not yet sent.
func (s *Service) Pending(orderID string) bool {
	return s.pending.Contains(orderID)
}

// Submit stores o, sends its message and clears c.
//
// If storing fails an *OrderPersistError is returned and nothing changes.
// If sending fails a *MessageSendError carrying the new order id is
// returned; the order stays pending and c keeps its lines.
func (s *Service) Submit(ctx context.Context, c Cart, o order.Order) (order.Order, error) {
	if err := s.begin(o.UserID); err != nil {
		return order.Order{}, err
	}
	defer s.end(o.UserID)

	pctx, cancel := context.WithTimeout(ctx, s.persistTO)
	id, err := s.repo.Create(pctx, o)
	cancel()
	if err != nil {
		s.logger.Error("order persist failed",
			zap.String("user_id", o.UserID),
			zap.Error(err))
		return order.Order{}, &OrderPersistError{Err: err}
	}
	o.ID = id

	s.pending.Add(id, o)

	return s.deliver(ctx, c, o)
}

// ResendMessage retries the message for a stored order without storing it
// again. On success the order is marked sent and c is cleared.
func (s *Service) ResendMessage(ctx context.Context, c Cart, orderID string) (order.Order, error) {
	var o order.Order
	if v, ok := s.pending.Get(orderID); ok {
		o = v.(order.Order)
	} else {
		pctx, cancel := context.WithTimeout(ctx, s.persistTO)
		stored, err := s.repo.Get(pctx, orderID)
		cancel()
		if err != nil {
			return order.Order{}, err
		}
		if stored.MessageSent {
			return stored, storefront.NewFailedPrecondition(ErrMsgAlreadySent)
		}
		o = stored
	}

	if err := s.begin(o.UserID); err != nil {
		return order.Order{}, err
	}
	defer s.end(o.UserID)

	return s.deliver(ctx, c, o)
}

func (s *Service) deliver(ctx context.Context, c Cart, o order.Order) (order.Order, error) {
	sctx, cancel := context.WithTimeout(ctx, s.sendTO)
	err := s.sender.Send(sctx, messaging.Message{
		OrderID:     o.ID,
		Destination: s.destination,
		Text:        order.Render(o),
	})
	cancel()
	if err != nil {
		s.logger.Error("order message send failed",
			zap.String("order_id", o.ID),
			zap.Error(err))
		return o, &MessageSendError{OrderID: o.ID, Err: err}
	}

	s.pending.Remove(o.ID)

	sentAt := s.now()
	mctx, cancel := context.WithTimeout(ctx, s.persistTO)
	err = s.repo.MarkMessageSent(mctx, o.ID, sentAt)
	cancel()
	if err != nil {
		s.logger.Warn("failed to mark order message sent",
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
	o.MessageSent = true
	o.MessageSentAt = &sentAt

	if err := c.Clear(ctx); err != nil {
		s.logger.Error("cart clear after submission failed",
			zap.String("order_id", o.ID),
			zap.Error(err))
	}

	s.logger.Info("order submitted",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.Int("total_stems", o.TotalStems))
	return o, nil
}
