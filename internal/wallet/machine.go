package wallet

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/faults"
	"github.com/stakemesh/wallet-gateway/internal/kvstore"
	"github.com/stakemesh/wallet-gateway/internal/toast"
	"go.uber.org/zap"
)

// defaultGraceDelay keeps the modal open briefly after a successful
// connection so a success state can render before it closes.
const defaultGraceDelay = time.Second

// Toaster is the subset of the toast dispatcher the machine uses.
type Toaster interface {
	Show(eventKey string, kind domain.Kind, title, message string, opts ...toast.ShowOption) (domain.Toast, bool)
}

// Metrics is the subset of gateway metrics the machine reports to.
type Metrics interface {
	IncWalletConnect(connector, outcome string)
}

// PendingAction is a continuation stored while the connect modal is open
// and invoked once a connection succeeds.
type PendingAction func(ctx context.Context)

// Machine owns the wallet connection lifecycle: modal visibility, pending
// continuations, connector selection and connect/disconnect sequencing.
// Signing and connection negotiation are delegated to the connector.
type Machine struct {
	mu      sync.Mutex
	session domain.WalletSession
	pending PendingAction
	active  Connector

	registry   *Registry
	kv         kvstore.Store
	toasts     Toaster
	recorder   *faults.Recorder
	logger     *zap.Logger
	metrics    Metrics
	chainID    uint64
	graceDelay time.Duration

	subscribers map[int]func(domain.WalletSession)
	nextSubID   int
	afterFunc   func(time.Duration, func()) *time.Timer
}

func NewMachine(
	ctx context.Context,
	registry *Registry,
	kv kvstore.Store,
	toasts Toaster,
	recorder *faults.Recorder,
	chainID uint64,
	graceDelay time.Duration,
	logger *zap.Logger,
) (*Machine, error) {
	if registry == nil {
		return nil, fmt.Errorf("connector registry is required")
	}
	if kv == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if toasts == nil {
		return nil, fmt.Errorf("toast dispatcher is required")
	}
	if recorder == nil {
		recorder = faults.NewRecorder(0)
	}
	if graceDelay <= 0 {
		graceDelay = defaultGraceDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Machine{
		session:     domain.WalletSession{State: domain.ConnStateDisconnected},
		registry:    registry,
		kv:          kv,
		toasts:      toasts,
		recorder:    recorder,
		logger:      logger,
		chainID:     chainID,
		graceDelay:  graceDelay,
		subscribers: make(map[int]func(domain.WalletSession)),
		afterFunc:   time.AfterFunc,
	}

	// Hydrate persisted wallet preferences; absence is the default state.
	if last, ok, err := kv.Get(ctx, kvstore.KeyLastWallet); err == nil && ok {
		m.session.LastWallet = last
	}
	if remember, ok, err := kv.Get(ctx, kvstore.KeyRemember); err == nil && ok {
		m.session.Remember, _ = strconv.ParseBool(remember)
	}

	return m, nil
}

func (m *Machine) SetMetrics(metrics Metrics) {
	if m == nil {
		return
	}
	m.metrics = metrics
}

// OpenModal shows the connector-selection modal, optionally storing a
// continuation to run once a connection succeeds. Idempotent when the modal
// is already open.
func (m *Machine) OpenModal(pending PendingAction) {
	m.mu.Lock()
	if m.session.ModalOpen {
		if pending != nil {
			m.pending = pending
		}
		m.mu.Unlock()
		return
	}
	m.session.ModalOpen = true
	m.pending = pending
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	publish(subs, session)
}

// CloseModal hides the modal and discards any pending continuation together
// with in-modal error and selection state. No-op when already closed.
func (m *Machine) CloseModal() {
	m.mu.Lock()
	if !m.session.ModalOpen {
		m.mu.Unlock()
		return
	}
	m.session.ModalOpen = false
	m.session.ModalError = ""
	m.session.SelectedID = ""
	m.pending = nil
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	publish(subs, session)
}

// ConnectWith connects through the named connector. An already-connected
// session short-circuits to success without touching the provider. Failures
// are routed through the fault classifier; info-severity outcomes (e.g. a
// user rejection) surface as neutral messages, never as errors.
func (m *Machine) ConnectWith(ctx context.Context, connectorID string) error {
	m.mu.Lock()
	if m.session.Connected {
		m.mu.Unlock()
		return nil
	}
	if m.session.Connecting {
		m.mu.Unlock()
		return nil
	}

	connector, err := m.registry.Get(connectorID)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	m.session.Connecting = true
	m.session.State = domain.ConnStateConnecting
	m.session.SelectedID = connector.ID()
	m.session.ModalError = ""
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	if m.metrics != nil {
		m.metrics.IncWalletConnect(connector.ID(), "attempt")
	}

	if !connector.Detect(ctx) {
		m.failConnect(nil, faults.Classified{
			Message:         fmt.Sprintf("%s is not installed.", connector.Name()),
			Category:        domain.FaultConnection,
			Severity:        domain.SeverityWarning,
			InstallRequired: true,
		}, connector)
		return nil
	}

	result, connectErr := connector.Connect(ctx, m.chainID)
	if connectErr != nil {
		classified := faults.Classify(connectErr)
		m.failConnect(connectErr, classified, connector)
		if classified.Severity == domain.SeverityInfo {
			// Expected user behaviour, not a failure of the gateway.
			return nil
		}
		return connectErr
	}

	m.completeConnect(ctx, connector, result)
	return nil
}

// Disconnect tears the session down through the active connector and clears
// the persisted last-wallet value.
func (m *Machine) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	if !m.session.Connected {
		m.mu.Unlock()
		return nil
	}
	connector := m.active
	m.session.State = domain.ConnStateDisconnecting
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	if connector != nil {
		if err := connector.Disconnect(ctx); err != nil {
			classified := faults.Classify(err)
			m.recorder.Record(classified, err, faults.WithContext("operation", "disconnect"))
			m.logger.Warn("connector disconnect failed", zap.Error(err))
		}
	}

	if err := m.kv.Delete(ctx, kvstore.KeyLastWallet); err != nil {
		m.logger.Warn("failed to clear persisted wallet", zap.Error(err))
	}

	m.mu.Lock()
	m.session.Connected = false
	m.session.Connecting = false
	m.session.Address = ""
	m.session.ChainID = 0
	m.session.LastWallet = ""
	m.session.State = domain.ConnStateDisconnected
	m.active = nil
	session = m.session
	subs = m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	m.toasts.Show("disconnect", domain.KindInfo, "Wallet disconnected", "")
	return nil
}

// SetRemember persists the user's connection persistence preference.
func (m *Machine) SetRemember(ctx context.Context, remember bool) error {
	if err := m.kv.Set(ctx, kvstore.KeyRemember, strconv.FormatBool(remember)); err != nil {
		return fmt.Errorf("failed to persist remember preference: %w", err)
	}

	m.mu.Lock()
	m.session.Remember = remember
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	return nil
}

// Session returns a snapshot of the mirrored wallet state.
func (m *Machine) Session() domain.WalletSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Subscribe registers a session listener and returns its unsubscribe func.
func (m *Machine) Subscribe(fn func(domain.WalletSession)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *Machine) completeConnect(ctx context.Context, connector Connector, result ConnectResult) {
	if result.ChainID != 0 && result.ChainID != m.chainID {
		if err := connector.SwitchChain(ctx, m.chainID); err != nil {
			classified := faults.Classify(err)
			m.recorder.Record(classified, err,
				faults.WithContext("operation", "switch_chain"),
				faults.WithChainID(result.ChainID),
			)
			m.toasts.Show("network", domain.KindError, "Wrong network", classified.Message)
		} else {
			result.ChainID = m.chainID
		}
	}

	m.mu.Lock()
	m.session.Connected = true
	m.session.Connecting = false
	m.session.Address = result.Address
	m.session.ChainID = result.ChainID
	m.session.LastWallet = connector.Name()
	m.session.LastError = ""
	m.session.ModalError = ""
	m.session.State = domain.ConnStateConnected
	m.active = connector
	pending := m.pending
	m.pending = nil
	modalOpen := m.session.ModalOpen
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	if m.metrics != nil {
		m.metrics.IncWalletConnect(connector.ID(), "success")
	}

	if session.Remember {
		if err := m.kv.Set(ctx, kvstore.KeyLastWallet, connector.Name()); err != nil {
			m.logger.Warn("failed to persist last wallet", zap.Error(err))
		}
	}

	m.toasts.Show("connect", domain.KindSuccess, "Wallet connected", shortAddress(result.Address))

	if pending != nil {
		pending(ctx)
	}

	if modalOpen {
		// Grace delay lets the success state render before the modal closes.
		m.afterFunc(m.graceDelay, m.CloseModal)
	}
}

func (m *Machine) failConnect(cause error, classified faults.Classified, connector Connector) {
	m.recorder.Record(classified, cause,
		faults.WithContext("connector", connector.ID()),
		faults.WithContext("operation", "connect"),
	)

	if m.metrics != nil {
		m.metrics.IncWalletConnect(connector.ID(), "failure")
	}

	m.mu.Lock()
	m.session.Connecting = false
	m.session.State = domain.ConnStateDisconnected
	if classified.Severity != domain.SeverityInfo {
		m.session.ModalError = classified.Message
		m.session.LastError = classified.Message
	}
	session := m.session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()
	publish(subs, session)

	switch {
	case classified.InstallRequired:
		m.toasts.Show("connect", domain.KindWarning, "Wallet not found", classified.Message,
			toast.WithAction(domain.ToastAction{Label: "Install", URL: connector.InstallURL()}),
		)
	case classified.Severity == domain.SeverityInfo:
		m.toasts.Show("connect", domain.KindInfo, "Connection cancelled", classified.Message)
	default:
		m.toasts.Show("connect", domain.KindError, "Connection failed", classified.Message)
	}
}

func (m *Machine) snapshotSubscribersLocked() []func(domain.WalletSession) {
	subs := make([]func(domain.WalletSession), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(domain.WalletSession), session domain.WalletSession) {
	for _, fn := range subs {
		fn(session)
	}
}

func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
