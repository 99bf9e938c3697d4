package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stakemesh/wallet-gateway/internal/domain"
	"go.uber.org/zap"
)

const (
	// defaultDedupWindow suppresses repeat toasts for the same event key,
	// which otherwise show up twice on rapid re-renders.
	defaultDedupWindow = 1500 * time.Millisecond
)

// EventType describes a dispatcher state change delivered to subscribers.
type EventType string

const (
	EventShown     EventType = "shown"
	EventDismissed EventType = "dismissed"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type  EventType
	Toast domain.Toast
}

// Subscriber receives dispatcher events. Callbacks run synchronously on the
// mutating goroutine and must not block.
type Subscriber func(Event)

// Dispatcher owns the queue of ephemeral toasts: de-duplication, auto-expiry
// and subscriber fan-out. Toasts are never persisted.
type Dispatcher struct {
	mu          sync.Mutex
	active      []domain.Toast
	lastShown   map[string]time.Time
	timers      map[string]*time.Timer
	subscribers map[int]Subscriber
	nextSubID   int

	dedupWindow time.Duration
	logger      *zap.Logger
	metrics     Metrics
	now         func() time.Time
	afterFunc   func(time.Duration, func()) *time.Timer
}

// Metrics is the subset of gateway metrics the dispatcher reports to.
type Metrics interface {
	IncToastShown(kind string)
	IncToastSuppressed(kind string)
}

func NewDispatcher(dedupWindow time.Duration, logger *zap.Logger) *Dispatcher {
	if dedupWindow <= 0 {
		dedupWindow = defaultDedupWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		lastShown:   make(map[string]time.Time),
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[int]Subscriber),
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
		afterFunc:   time.AfterFunc,
	}
}

func (d *Dispatcher) SetMetrics(metrics Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Show enqueues a toast for the given logical event key. A toast for the
// same key shown within the de-duplication window is suppressed; the second
// return value reports whether the toast became visible.
func (d *Dispatcher) Show(eventKey string, kind domain.Kind, title, message string, opts ...ShowOption) (domain.Toast, bool) {
	eventKey = strings.TrimSpace(eventKey)
	if eventKey == "" {
		eventKey = "generic"
	}

	t := domain.Toast{
		ID:       uuid.NewString(),
		EventKey: eventKey,
		Kind:     kind,
		Title:    title,
		Message:  message,
		Duration: domain.DefaultToastDuration,
	}
	for _, opt := range opts {
		opt(&t)
	}

	d.mu.Lock()
	now := d.now()
	if last, ok := d.lastShown[eventKey]; ok && now.Sub(last) < d.dedupWindow {
		d.mu.Unlock()
		if d.metrics != nil {
			d.metrics.IncToastSuppressed(kind.String())
		}
		d.logger.Debug("toast suppressed",
			zap.String("eventKey", eventKey),
			zap.String("kind", kind.String()),
		)
		return domain.Toast{}, false
	}

	t.CreatedAt = now.UTC()
	d.lastShown[eventKey] = now
	d.active = append(d.active, t)
	d.timers[t.ID] = d.afterFunc(t.Duration, func() { d.Dismiss(t.ID) })
	subs := d.snapshotSubscribersLocked()
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.IncToastShown(kind.String())
	}
	for _, sub := range subs {
		sub(Event{Type: EventShown, Toast: t})
	}

	return t, true
}

// Dismiss removes a toast from the logical queue immediately. Dismissing an
// unknown id is a no-op.
func (d *Dispatcher) Dismiss(id string) {
	d.mu.Lock()
	idx := -1
	for i := range d.active {
		if d.active[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		return
	}

	dismissed := d.active[idx]
	d.active = append(d.active[:idx], d.active[idx+1:]...)
	if timer, ok := d.timers[id]; ok {
		timer.Stop()
		delete(d.timers, id)
	}
	subs := d.snapshotSubscribersLocked()
	d.mu.Unlock()

	for _, sub := range subs {
		sub(Event{Type: EventDismissed, Toast: dismissed})
	}
}

// Active returns the visible toasts in insertion order.
func (d *Dispatcher) Active() []domain.Toast {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.Toast, len(d.active))
	copy(out, d.active)
	return out
}

// Subscribe registers a subscriber and returns its unsubscribe func.
func (d *Dispatcher) Subscribe(sub Subscriber) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextSubID
	d.nextSubID++
	d.subscribers[id] = sub

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subscribers, id)
	}
}

// Close stops all pending auto-dismiss timers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
}

func (d *Dispatcher) snapshotSubscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(d.subscribers))
	for _, sub := range d.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

// ShowOption customizes a toast before it is enqueued.
type ShowOption func(*domain.Toast)

func WithDuration(duration time.Duration) ShowOption {
	return func(t *domain.Toast) {
		if duration > 0 {
			t.Duration = duration
		}
	}
}

func WithAction(action domain.ToastAction) ShowOption {
	return func(t *domain.Toast) {
		t.Action = &action
	}
}
