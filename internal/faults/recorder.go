package faults

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stakemesh/wallet-gateway/internal/domain"
)

const defaultRecorderCapacity = 100

// Recorder keeps a bounded in-memory ring of diagnostic faults. The ring is
// session-scoped: it is never persisted and resets on restart.
type Recorder struct {
	mu       sync.Mutex
	faults   []domain.Fault
	capacity int
	now      func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultRecorderCapacity
	}
	return &Recorder{
		faults:   make([]domain.Fault, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends a fault built from a classified error, evicting the oldest
// entry once the ring is full, and returns the stored record.
func (r *Recorder) Record(classified Classified, cause error, opts ...RecordOption) domain.Fault {
	fault := domain.Fault{
		ID:       uuid.NewString(),
		Category: classified.Category,
		Severity: classified.Severity,
		Message:  classified.Message,
	}
	if cause != nil {
		fault.Cause = cause.Error()
	}
	for _, opt := range opts {
		opt(&fault)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fault.CreatedAt = r.now().UTC()
	if len(r.faults) >= r.capacity {
		copy(r.faults, r.faults[1:])
		r.faults = r.faults[:len(r.faults)-1]
	}
	r.faults = append(r.faults, fault)

	return fault
}

// Snapshot returns the recorded faults in insertion order, oldest first.
func (r *Recorder) Snapshot() []domain.Fault {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Fault, len(r.faults))
	copy(out, r.faults)
	return out
}

// Len reports the number of faults currently retained.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.faults)
}

// RecordOption attaches optional context to a recorded fault.
type RecordOption func(*domain.Fault)

func WithContext(key, value string) RecordOption {
	return func(f *domain.Fault) {
		if f.Context == nil {
			f.Context = make(map[string]string)
		}
		f.Context[key] = value
	}
}

func WithAddress(address string) RecordOption {
	return func(f *domain.Fault) {
		f.Address = address
	}
}

func WithChainID(chainID uint64) RecordOption {
	return func(f *domain.Fault) {
		f.ChainID = chainID
	}
}
