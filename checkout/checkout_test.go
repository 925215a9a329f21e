package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/storefront"
)

var (
	ist = time.FixedZone("IST", 5*3600+1800)
	now = time.Date(2026, 3, 1, 14, 5, 0, 0, ist)
)

type fakeRepo struct {
	mu           sync.Mutex
	orders       map[string]order.Order
	createErr    error
	markErr      error
	creates      int
	seq          int
	markDeadline bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]order.Order)}
}

func (r *fakeRepo) Create(_ context.Context, o order.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	o.ID = fmt.Sprintf("ord-%d", r.seq)
	r.orders[o.ID] = o
	return o.ID, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	return o, nil
}

func (r *fakeRepo) ListByUser(context.Context, string) ([]order.Order, error) { return nil, nil }

func (r *fakeRepo) UpdateStatus(context.Context, string, order.Status, time.Time) error { return nil }

func (r *fakeRepo) MarkMessageSent(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, r.markDeadline = ctx.Deadline()
	if r.markErr != nil {
		return r.markErr
	}
	o := r.orders[id]
	o.MessageSent = true
	o.MessageSentAt = &at
	r.orders[id] = o
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	err   error
	sent  []messaging.Message
	block chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, msg messaging.Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func openCart(t *testing.T) *cart.Store {
	t.Helper()
	c := cart.Open(context.Background(), localstore.NewMemoryStore(), "u1", nil)
	require.NoError(t, c.AddOrReplace(context.Background(), cart.Line{
		ProductID:    "rose-red",
		Name:         "Red Roses",
		Type:         "roses",
		Size:         &cart.SizeSelection{ID: "medium", Label: "50 cm"},
		Quantity:     120,
		RequiredDate: now.AddDate(0, 0, 5),
	}))
	return c
}

func buildOrder(t *testing.T, c *cart.Store) order.Order {
	t.Helper()
	o, err := order.Build(c.Lines(), "u1", order.Contact{Name: "Asha Rao"},
		order.Delivery{Type: order.DeliveryPickup}, now)
	require.NoError(t, err)
	return o
}

func newService(repo order.Repository, sender messaging.Sender) *Service {
	return New(repo, sender, Config{Now: func() time.Time { return now }})
}

func TestSubmit_PersistsSendsAndClears(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := newService(repo, sender)
	c := openCart(t)

	o, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.True(t, o.MessageSent)
	assert.Equal(t, 0, c.LineCount())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ord-1", sender.sent[0].OrderID)
	assert.Equal(t, messaging.DefaultDestination, sender.sent[0].Destination)
	assert.Contains(t, sender.sent[0].Text, "Order: ord-1")
	stored, err := repo.Get(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.True(t, stored.MessageSent)
	assert.False(t, svc.Pending("ord-1"))
}

func TestSubmit_PersistFailureLeavesCart(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("network down")
	sender := &fakeSender{}
	svc := newService(repo, sender)
	c := openCart(t)

	_, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	var persistErr *OrderPersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, 1, c.LineCount())
	assert.Empty(t, sender.sent)
	assert.False(t, svc.InProgress("u1"))
}

func TestSubmit_SendFailureKeepsCartAndResendClears(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{err: errors.New("whatsapp unavailable")}
	svc := newService(repo, sender)
	c := openCart(t)

	_, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	var sendErr *MessageSendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "ord-1", sendErr.OrderID)
	assert.Equal(t, 1, c.LineCount())
	assert.True(t, svc.Pending("ord-1"))

	sender.err = nil
	o, err := svc.ResendMessage(context.Background(), c, sendErr.OrderID)

	require.NoError(t, err)
	assert.True(t, o.MessageSent)
	assert.Equal(t, 0, c.LineCount())
	assert.Equal(t, 1, repo.creates)
	assert.False(t, svc.Pending("ord-1"))
}

func TestSubmit_MarkFailureIsNotFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.markErr = errors.New("throttled")
	svc := newService(repo, &fakeSender{})
	c := openCart(t)

	o, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	require.NoError(t, err)
	assert.True(t, o.MessageSent)
	assert.Equal(t, 0, c.LineCount())
}

func TestSubmit_MarkSentIsBounded(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeSender{})
	c := openCart(t)

	_, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	require.NoError(t, err)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.True(t, repo.markDeadline)
}

func TestSubmit_PendingIsBounded(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{err: errors.New("whatsapp unavailable")}
	svc := New(repo, sender, Config{PendingCapacity: 1, Now: func() time.Time { return now }})
	c := openCart(t)

	_, err := svc.Submit(context.Background(), c, buildOrder(t, c))
	require.Error(t, err)
	_, err = svc.Submit(context.Background(), c, buildOrder(t, c))
	require.Error(t, err)

	assert.False(t, svc.Pending("ord-1"))
	assert.True(t, svc.Pending("ord-2"))

	sender.err = nil
	o, err := svc.ResendMessage(context.Background(), c, "ord-1")
	require.NoError(t, err)
	assert.True(t, o.MessageSent)
	assert.Equal(t, 2, repo.creates)
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{block: make(chan struct{})}
	svc := newService(repo, sender)
	c := openCart(t)
	o := buildOrder(t, c)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), c, o)
		done <- err
	}()
	require.Eventually(t, func() bool { return svc.InProgress("u1") }, time.Second, time.Millisecond)

	_, err := svc.Submit(context.Background(), c, o)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(sender.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, repo.creates)
}

func TestSubmit_SendTimeout(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{block: make(chan struct{})}
	svc := New(repo, sender, Config{SendTimeout: 10 * time.Millisecond})
	c := openCart(t)

	_, err := svc.Submit(context.Background(), c, buildOrder(t, c))

	var sendErr *MessageSendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, c.LineCount())
}

func TestResendMessage_LoadsStoredOrder(t *testing.T) {
	repo := newFakeRepo()
	c := openCart(t)
	id, err := repo.Create(context.Background(), buildOrder(t, c))
	require.NoError(t, err)
	sender := &fakeSender{}
	svc := newService(repo, sender)

	o, err := svc.ResendMessage(context.Background(), c, id)

	require.NoError(t, err)
	assert.True(t, o.MessageSent)
	require.Len(t, sender.sent, 1)
}

func TestResendMessage_AlreadySent(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeSender{})
	c := openCart(t)
	o, err := svc.Submit(context.Background(), c, buildOrder(t, c))
	require.NoError(t, err)

	_, err = svc.ResendMessage(context.Background(), c, o.ID)

	var cmdErr *storefront.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, storefront.StatusFailedPrecondition, cmdErr.Code)
}

func TestResendMessage_UnknownOrder(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeSender{})

	_, err := svc.ResendMessage(context.Background(), openCart(t), "missing")

	var cmdErr *storefront.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, storefront.StatusNotFound, cmdErr.Code)
}
