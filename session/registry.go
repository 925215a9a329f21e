// Package session keeps one open cart per active customer. Carts are opened
// lazily from local storage and evicted least-recently-used. An evicted cart
// is closed: a dirty one is flushed, and writes still holding it fail with
// Unavailable so they cannot race the copy reopened from storage.
package session

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/storefront"
)

// DefaultCapacity is the number of carts kept open.
const DefaultCapacity = 1024

// ErrMsgUserRequired rejects anonymous cart access.
const ErrMsgUserRequired = "user id is required"

// Session is one customer's open state.
type Session struct {
	UserID string
	Cart   *cart.Store
}

// Registry maps user ids to open sessions.
type Registry struct {
	mu      sync.Mutex
	storage localstore.Store
	cache   *lru.Cache
	logger  *zap.Logger
}

// NewRegistry creates a registry holding up to capacity sessions.
func NewRegistry(storage localstore.Store, capacity int, logger *zap.Logger) (*Registry, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{storage: storage, logger: logger}
	cache, err := lru.NewWithEvict(capacity, r.onEvict)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) onEvict(key, value interface{}) {
	s := value.(*Session)
	if err := s.Cart.Close(context.Background()); err != nil {
		r.logger.Error("failed to flush evicted cart",
			zap.String("user_id", s.UserID),
			zap.Error(err))
	}
}

// Get returns the session for userID, opening its cart on first use.
func (r *Registry) Get(ctx context.Context, userID string) (*Session, error) {
	if err := storefront.RequireNonEmpty(userID, ErrMsgUserRequired); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(userID); ok {
		return v.(*Session), nil
	}
	s := &Session{
		UserID: userID,
		Cart:   cart.Open(ctx, r.storage, userID, r.logger),
	}
	r.cache.Add(userID, s)
	r.logger.Debug("session opened", zap.String("user_id", userID))
	return s, nil
}

// Cart is shorthand for Get(ctx, userID).Cart.
func (r *Registry) Cart(ctx context.Context, userID string) (*cart.Store, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Cart, nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close closes and drops every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}
