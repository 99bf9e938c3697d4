package tracker

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stakemesh/wallet-gateway/internal/contract"
	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/toast"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultHistoryCap   = 10
)

// ReceiptSource is the subset of the chain RPC the tracker polls, satisfied
// by ethclient.Client.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
}

// Toaster is the subset of the toast dispatcher the tracker uses.
type Toaster interface {
	Show(eventKey string, kind domain.Kind, title, message string, opts ...toast.ShowOption) (domain.Toast, bool)
}

// RateLimiter bounds how often the tracker hits the RPC endpoint.
type RateLimiter interface {
	Wait(ctx context.Context, scope string) error
}

// Metrics is the subset of gateway metrics the tracker reports to.
type Metrics interface {
	IncReceiptPoll(outcome string)
	IncTxOutcome(status string)
}

// Tracker records submitted transactions and polls for their receipts.
// Records are kept newest-first with a bounded history; eviction is FIFO by
// submission order regardless of status. Each pending record is polled
// independently, so confirmation order need not match submission order.
type Tracker struct {
	mu      sync.Mutex
	records []domain.TrackedTransaction
	cancels map[string]context.CancelFunc
	retries map[string]func()

	source       ReceiptSource
	toasts       Toaster
	limiter      RateLimiter
	logger       *zap.Logger
	metrics      Metrics
	interval     time.Duration
	historyCap   int
	explorerBase string

	subscribers map[int]func(domain.TrackedTransaction)
	nextSubID   int
	now         func() time.Time
}

func NewTracker(
	source ReceiptSource,
	toasts Toaster,
	limiter RateLimiter,
	interval time.Duration,
	historyCap int,
	explorerBase string,
	logger *zap.Logger,
) (*Tracker, error) {
	if source == nil {
		return nil, fmt.Errorf("receipt source is required")
	}
	if toasts == nil {
		return nil, fmt.Errorf("toast dispatcher is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if historyCap <= 0 {
		historyCap = defaultHistoryCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tracker{
		cancels:      make(map[string]context.CancelFunc),
		retries:      make(map[string]func()),
		source:       source,
		toasts:       toasts,
		limiter:      limiter,
		logger:       logger,
		interval:     interval,
		historyCap:   historyCap,
		explorerBase: explorerBase,
		subscribers:  make(map[int]func(domain.TrackedTransaction)),
		now:          time.Now,
	}, nil
}

func (t *Tracker) SetMetrics(metrics Metrics) {
	if t == nil {
		return
	}
	t.metrics = metrics
}

// Track starts monitoring a submitted transaction. Tracking the same hash
// twice is a no-op.
func (t *Tracker) Track(ctx context.Context, hash common.Hash, description string, opts ...TrackOption) {
	record := domain.TrackedTransaction{
		Hash:        hash.Hex(),
		Description: description,
		Status:      domain.TxStatusPending,
	}
	var onRetry func()
	cfg := trackConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	record.GasEstimate = cfg.gasEstimate
	onRetry = cfg.onRetry

	t.mu.Lock()
	if t.indexLocked(record.Hash) >= 0 {
		t.mu.Unlock()
		return
	}

	record.SubmittedAt = t.now().UTC()
	t.records = append([]domain.TrackedTransaction{record}, t.records...)

	// FIFO eviction by submission order, independent of status. A still
	// pending evictee stops being polled.
	if len(t.records) > t.historyCap {
		evicted := t.records[len(t.records)-1]
		t.records = t.records[:len(t.records)-1]
		if cancel, ok := t.cancels[evicted.Hash]; ok {
			cancel()
			delete(t.cancels, evicted.Hash)
		}
		delete(t.retries, evicted.Hash)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	t.cancels[record.Hash] = cancel
	if onRetry != nil {
		t.retries[record.Hash] = onRetry
	}
	subs := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	publish(subs, record)
	t.toasts.Show("tx:"+record.Hash, domain.KindInfo, "Transaction submitted", description,
		toast.WithAction(domain.ToastAction{Label: "View on explorer", URL: t.explorerURL(record.Hash)}),
	)

	go t.poll(pollCtx, hash)
}

// Cancel marks a still-pending transaction as cancelled and stops polling
// it. Terminal records are left untouched.
func (t *Tracker) Cancel(hash common.Hash) bool {
	t.mu.Lock()
	idx := t.indexLocked(hash.Hex())
	if idx < 0 || t.records[idx].Status != domain.TxStatusPending {
		t.mu.Unlock()
		return false
	}
	t.records[idx].Status = domain.TxStatusCancelled
	record := t.records[idx]
	if cancel, ok := t.cancels[record.Hash]; ok {
		cancel()
		delete(t.cancels, record.Hash)
	}
	delete(t.retries, record.Hash)
	subs := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	publish(subs, record)
	return true
}

// List returns the tracked transactions, newest first.
func (t *Tracker) List() []domain.TrackedTransaction {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.TrackedTransaction, len(t.records))
	copy(out, t.records)
	return out
}

// Subscribe registers a status listener and returns its unsubscribe func.
func (t *Tracker) Subscribe(fn func(domain.TrackedTransaction)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subscribers, id)
	}
}

// Close stops polling every pending record.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for hash, cancel := range t.cancels {
		cancel()
		delete(t.cancels, hash)
	}
}

func (t *Tracker) poll(ctx context.Context, hash common.Hash) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.limiter != nil {
				if err := t.limiter.Wait(ctx, "receipt"); err != nil {
					if ctx.Err() != nil {
						return
					}
					t.logger.Warn("receipt poll rate limit failed", zap.Error(err))
					continue
				}
			}

			receipt, err := t.source.TransactionReceipt(ctx, hash)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if t.metrics != nil {
					t.metrics.IncReceiptPoll("miss")
				}
				if !errors.Is(err, ethereum.NotFound) {
					t.logger.Warn("receipt poll failed",
						zap.String("hash", hash.Hex()),
						zap.Error(err),
					)
				}
				continue
			}
			if receipt == nil {
				continue
			}

			if t.metrics != nil {
				t.metrics.IncReceiptPoll("hit")
			}
			t.finalize(hash, receipt)
			return
		}
	}
}

func (t *Tracker) finalize(hash common.Hash, receipt *gethtypes.Receipt) {
	summary := &domain.TxReceipt{
		Status:            receipt.Status,
		BlockNumber:       receipt.BlockNumber,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
	}

	t.mu.Lock()
	idx := t.indexLocked(hash.Hex())
	if idx < 0 || t.records[idx].Status != domain.TxStatusPending {
		// Evicted or cancelled while the receipt was in flight.
		if cancel, ok := t.cancels[hash.Hex()]; ok {
			cancel()
			delete(t.cancels, hash.Hex())
		}
		t.mu.Unlock()
		return
	}

	if receipt.Status == gethtypes.ReceiptStatusSuccessful {
		t.records[idx].Status = domain.TxStatusSuccess
	} else {
		t.records[idx].Status = domain.TxStatusError
		t.records[idx].Error = "transaction reverted"
	}
	t.records[idx].Receipt = summary
	record := t.records[idx]
	onRetry := t.retries[record.Hash]
	delete(t.retries, record.Hash)
	if cancel, ok := t.cancels[record.Hash]; ok {
		cancel()
		delete(t.cancels, record.Hash)
	}
	subs := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	publish(subs, record)

	if record.Status == domain.TxStatusSuccess {
		if t.metrics != nil {
			t.metrics.IncTxOutcome("success")
		}
		t.toasts.Show("tx:"+record.Hash, domain.KindSuccess, "Transaction confirmed",
			confirmMessage(record.Description, gasCost(record)),
			toast.WithAction(domain.ToastAction{Label: "View on explorer", URL: t.explorerURL(record.Hash)}),
		)
		return
	}

	if t.metrics != nil {
		t.metrics.IncTxOutcome("error")
	}
	action := domain.ToastAction{Label: "View on explorer", URL: t.explorerURL(record.Hash)}
	if onRetry != nil {
		action = domain.ToastAction{Label: "Try again", Invoke: onRetry}
	}
	t.toasts.Show("tx:"+record.Hash, domain.KindError, "Transaction failed", record.Description,
		toast.WithAction(action),
	)
}

func (t *Tracker) explorerURL(hash string) string {
	if t.explorerBase == "" {
		return ""
	}
	return t.explorerBase + "/tx/" + hash
}

func (t *Tracker) indexLocked(hash string) int {
	for i := range t.records {
		if t.records[i].Hash == hash {
			return i
		}
	}
	return -1
}

func (t *Tracker) snapshotSubscribersLocked() []func(domain.TrackedTransaction) {
	subs := make([]func(domain.TrackedTransaction), 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// gasCost computes the spent gas in decimal form from the receipt, falling
// back to the pre-submission estimate.
func gasCost(record domain.TrackedTransaction) string {
	if record.Receipt != nil && record.Receipt.EffectiveGasPrice != nil && record.Receipt.GasUsed > 0 {
		cost := new(big.Int).Mul(
			new(big.Int).SetUint64(record.Receipt.GasUsed),
			record.Receipt.EffectiveGasPrice,
		)
		return contract.FromBase(cost)
	}
	if record.GasEstimate != nil {
		return contract.FromBase(record.GasEstimate)
	}
	return ""
}

func confirmMessage(description, cost string) string {
	if cost == "" {
		return description
	}
	return fmt.Sprintf("%s (gas: %s)", description, cost)
}

func publish(subs []func(domain.TrackedTransaction), record domain.TrackedTransaction) {
	for _, fn := range subs {
		fn(record)
	}
}

type trackConfig struct {
	gasEstimate *big.Int
	onRetry     func()
}

// TrackOption customizes a tracked transaction.
type TrackOption func(*trackConfig)

// WithGasEstimate records the pre-submission gas cost estimate used when a
// receipt carries no effective gas price.
func WithGasEstimate(estimate *big.Int) TrackOption {
	return func(c *trackConfig) {
		c.gasEstimate = estimate
	}
}

// WithRetry attaches the retry affordance surfaced on a failure toast.
func WithRetry(onRetry func()) TrackOption {
	return func(c *trackConfig) {
		c.onRetry = onRetry
	}
}
