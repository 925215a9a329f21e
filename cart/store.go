package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/storefront"
)

// StorageKey is the local storage key of the cart snapshot.
const StorageKey = "@growteq_cart"

const snapshotVersion = 1

// Error message constants.
const (
	ErrMsgProductRequired = "product id is required"
	ErrMsgQuantityInvalid = "quantity must be positive"
	ErrMsgLineNotFound    = "cart line not found"
	ErrMsgBelowMinimum    = "quantity below minimum order quantity"
	ErrMsgClosed          = "cart session closed, retry the request"
)

// PersistenceError reports a failed snapshot write. The in-memory mutation
// has already been applied; Flush retries the write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart %s: persist snapshot: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type snapshot struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

// Store is an ordered set of cart lines, unique by Key, written through to
// local storage on every mutation. Mutations are serialised, so concurrent
// callers observe them in call order.
type Store struct {
	mu      sync.Mutex
	storage localstore.Store
	key     string
	lines   []Line
	dirty   bool
	closed  bool
	logger  *zap.Logger
}

// StorageKeyFor returns the snapshot key for a user. An empty user id uses
// StorageKey itself, matching a single-user device.
func StorageKeyFor(userID string) string {
	if userID == "" {
		return StorageKey
	}
	return StorageKey + "_" + storefront.CustomerRoot(userID).String()
}

// Open loads the user's cart from storage. A missing or unreadable snapshot
// yields an empty cart; Open never fails.
func Open(ctx context.Context, storage localstore.Store, userID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storage: storage,
		key:     StorageKeyFor(userID),
		logger:  logger.With(zap.String("cart", userID)),
	}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []Line {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("cart load failed, starting empty", zap.Error(err))
		return nil
	}
	lines, err := decodeSnapshot(raw)
	if err != nil {
		s.logger.Error("cart snapshot corrupt, starting empty", zap.Error(err))
		return nil
	}
	return normalize(lines)
}

// decodeSnapshot accepts the versioned object and the legacy bare array.
func decodeSnapshot(raw []byte) ([]Line, error) {
	var snap snapshot
	objErr := json.Unmarshal(raw, &snap)
	if objErr == nil {
		if snap.Version > snapshotVersion {
			return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
		}
		return snap.Lines, nil
	}
	var legacy []Line
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, objErr
	}
	for i := range legacy {
		if legacy[i].ProductID == "" {
			legacy[i].ProductID = legacy[i].ID
		}
	}
	return legacy, nil
}

// normalize drops unusable lines, restores deterministic ids and collapses
// duplicate keys onto the first position with the last quantity and date.
func normalize(in []Line) []Line {
	out := make([]Line, 0, len(in))
	index := make(map[string]int, len(in))
	for _, l := range in {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		l.assignID()
		if i, ok := index[l.Key()]; ok {
			out[i].Quantity = l.Quantity
			out[i].RequiredDate = l.RequiredDate
			continue
		}
		index[l.Key()] = len(out)
		out = append(out, l)
	}
	return out
}

// persist writes the current lines. Called with mu held.
func (s *Store) persist(ctx context.Context, op string) error {
	var err error
	if len(s.lines) == 0 {
		err = s.storage.Delete(ctx, s.key)
	} else {
		var payload []byte
		payload, err = json.Marshal(snapshot{Version: snapshotVersion, Lines: s.lines})
		if err == nil {
			err = s.storage.Set(ctx, s.key, payload)
		}
	}
	if err != nil {
		s.dirty = true
		s.logger.Error("cart persist failed", zap.String("op", op), zap.Error(err))
		return &PersistenceError{Op: op, Err: err}
	}
	s.dirty = false
	return nil
}

// AddOrReplace appends line, or when a line with the same Key exists,
// overwrites its quantity and required date in place. The line id is derived
// from the key.
func (s *Store) AddOrReplace(ctx context.Context, line Line) error {
	if err := storefront.RequireNonEmpty(line.ProductID, ErrMsgProductRequired); err != nil {
		return err
	}
	if err := storefront.RequirePositive(line.Quantity, ErrMsgQuantityInvalid); err != nil {
		return err
	}
	line = line.Clone()
	line.assignID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	replaced := false
	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity = line.Quantity
			s.lines[i].RequiredDate = line.RequiredDate
			replaced = true
			break
		}
	}
	if !replaced {
		s.lines = append(s.lines, line)
	}
	return s.persist(ctx, "add")
}

// Remove deletes the line with lineID. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx, "remove")
		}
	}
	return nil
}

// Clear empties the cart and erases its snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.lines = nil
	return s.persist(ctx, "clear")
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line;
// anything else must meet minimum.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity, minimum int) error {
	if quantity <= 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.checkOpen(); err != nil {
			return err
		}
		for i := range s.lines {
			if s.lines[i].ID == lineID {
				s.lines = append(s.lines[:i], s.lines[i+1:]...)
				return s.persist(ctx, "update")
			}
		}
		return storefront.NewNotFound(ErrMsgLineNotFound)
	}
	if err := storefront.RequireAtLeast(quantity, minimum,
		fmt.Sprintf("%s (%d)", ErrMsgBelowMinimum, minimum)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			return s.persist(ctx, "update")
		}
	}
	return storefront.NewNotFound(ErrMsgLineNotFound)
}

// Flush retries the snapshot write after a PersistenceError.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.closed {
		return nil
	}
	return s.persist(ctx, "flush")
}

// Close flushes a dirty cart and rejects every later mutation with an
// Unavailable CommandError. Once closed, the snapshot in storage is the only
// copy that counts; a store reopened from it sees every accepted write.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.dirty {
		return nil
	}
	return s.persist(ctx, "close")
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// checkOpen is called with mu held.
func (s *Store) checkOpen() error {
	if s.closed {
		return storefront.NewUnavailable(ErrMsgClosed)
	}
	return nil
}

// Dirty reports whether the last snapshot write failed.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// TotalStems sums the quantity of every line.
func (s *Store) TotalStems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalStems(s.lines)
}

// TotalStems sums the quantity of lines.
func TotalStems(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// LineCount is the number of distinct lines.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Lines returns a copy of the lines in cart order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Clone()
	}
	return out
}

// Line returns the line with lineID.
func (s *Store) Line(lineID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ID == lineID {
			return l.Clone(), true
		}
	}
	return Line{}, false
}

// Contains reports whether any line is for productID.
func (s *Store) Contains(productID string) bool {
	return s.QuantityOf(productID) > 0
}

// QuantityOf sums the quantity of every line for productID.
func (s *Store) QuantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		if l.ProductID == productID {
			total += l.Quantity
		}
	}
	return total
}
