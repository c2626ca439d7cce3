package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

var (
	ErrNotFound    = errors.New("bookings: not found")
	ErrDuplicateID = errors.New("bookings: duplicate id")
)

// Store is the ordered booking list plus its durable copy. Every mutation rewrites
// the whole list; when the write fails the in-memory list is left untouched.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *logging.Logger
	items   []Booking
}

func NewStore(storage Storage, logger *logging.Logger) *Store {
	if storage == nil {
		panic("bookings: storage required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{storage: storage, logger: logger}
}

// Load reads the stored list. Missing or empty data is replaced by the example
// bookings, which are written back immediately.
func (s *Store) Load(ctx context.Context) ([]Booking, error) {
	raw, err := s.storage.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, fmt.Errorf("bookings: load: %w", err)
	}
	var list []Booking
	if err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("bookings: decode stored list: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(list) == 0 {
		list = seedBookings()
		if err := s.persist(ctx, list); err != nil {
			return nil, err
		}
		s.logger.Info("booking store seeded", "count", len(list))
	}
	s.items = list
	return slices.Clone(s.items), nil
}

// Append adds b to the end of the list and persists the whole list.
func (s *Store) Append(ctx context.Context, b Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(b.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, b.ID)
	}
	next := append(slices.Clone(s.items), b)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next
	s.logger.Info("booking appended", "booking_id", b.ID, "service", b.ServiceID, "payment_status", b.PaymentStatus)
	return nil
}

// MarkPaid moves a pending booking to paid/confirmed and persists the list.
func (s *Store) MarkPaid(ctx context.Context, id int64) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Booking{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	b := s.items[i]
	if err := b.MarkPaid(); err != nil {
		return Booking{}, err
	}
	next := slices.Clone(s.items)
	next[i] = b
	if err := s.persist(ctx, next); err != nil {
		return Booking{}, err
	}
	s.items = next
	s.logger.Info("booking marked paid", "booking_id", id)
	return b, nil
}

// All returns a copy of every booking in insertion order.
func (s *Store) All() []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Find(id int64) (Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return Booking{}, false
}

// Filter keeps the bookings matching pred, preserving order.
func (s *Store) Filter(pred func(Booking) bool) []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Booking, 0, len(s.items))
	for _, b := range s.items {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}

// MaxID is the largest id in the store, or 0 when empty.
func (s *Store) MaxID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, b := range s.items {
		if b.ID > max {
			max = b.ID
		}
	}
	return max
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(b Booking) bool { return b.ID == id })
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context, list []Booking) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("bookings: encode list: %w", err)
	}
	if err := s.storage.Save(ctx, raw); err != nil {
		s.logger.Error("booking store persist failed", "error", err, "count", len(list))
		return fmt.Errorf("bookings: persist: %w", err)
	}
	return nil
}
