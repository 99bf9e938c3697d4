package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/kvstore"
	"go.uber.org/zap"
)

// Store maintains the durable notification list, most recent first. Every
// mutation re-serializes the full list through the key-value layer so the
// persisted state always matches memory before the next read.
type Store struct {
	mu          sync.Mutex
	items       []domain.Notification
	kv          kvstore.Store
	logger      *zap.Logger
	subscribers map[int]func()
	nextSubID   int
	now         func() time.Time
}

// NewStore hydrates the notification list from persisted state. Corrupt or
// missing data yields an empty list, never an error.
func NewStore(ctx context.Context, kv kvstore.Store, logger *zap.Logger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		kv:          kv,
		logger:      logger,
		subscribers: make(map[int]func()),
		now:         time.Now,
	}

	raw, ok, err := kv.Get(ctx, kvstore.KeyNotifications)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate notifications: %w", err)
	}
	if ok {
		var items []domain.Notification
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			logger.Warn("discarding corrupt persisted notifications", zap.Error(err))
		} else {
			s.items = items
		}
	}

	return s, nil
}

// Add creates a notification at the head of the list and persists it.
func (s *Store) Add(ctx context.Context, kind domain.Kind, title, message string, opts ...AddOption) (domain.Notification, error) {
	n := domain.Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	for _, opt := range opts {
		opt(&n)
	}
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}

	s.mu.Lock()
	n.CreatedAt = s.now().UTC()
	s.items = append([]domain.Notification{n}, s.items...)
	err := s.persistLocked(ctx)
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if err != nil {
		return domain.Notification{}, err
	}
	notifyAll(subs)
	return n, nil
}

// MarkRead sets the read flag on a single notification.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	if s.items[idx].Read {
		s.mu.Unlock()
		return nil
	}
	s.items[idx].Read = true
	err := s.persistLocked(ctx)
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notifyAll(subs)
	return nil
}

// MarkAllRead sets the read flag on every notification.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	err := s.persistLocked(ctx)
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notifyAll(subs)
	return nil
}

// Remove deletes a single notification.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	err := s.persistLocked(ctx)
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notifyAll(subs)
	return nil
}

// Clear removes every notification.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	err := s.persistLocked(ctx)
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notifyAll(subs)
	return nil
}

// List returns the notifications, most recent first.
func (s *Store) List() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount is derived from the live list; there is no separate counter
// that could drift.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to serialize notifications: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyNotifications, string(payload)); err != nil {
		return fmt.Errorf("failed to persist notifications: %w", err)
	}
	return nil
}

func (s *Store) snapshotSubscribersLocked() []func() {
	subs := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notifyAll(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

// AddOption customizes a notification before it is stored.
type AddOption func(*domain.Notification)

func WithLink(link string) AddOption {
	return func(n *domain.Notification) {
		n.Link = link
	}
}

func WithDuration(duration time.Duration) AddOption {
	return func(n *domain.Notification) {
		n.Duration = duration
	}
}
