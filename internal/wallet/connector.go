package wallet

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

// ConnectResult is the outcome of a successful connector handshake.
type ConnectResult struct {
	Address string
	ChainID uint64
}

// Connector adapts one wallet provider to a uniform connect/disconnect
// interface. The provider owns the canonical connection truth; the gateway
// only invokes these operations and mirrors the result.
type Connector interface {
	ID() string
	Name() string
	// Detect is the pre-flight check for the provider software. A false
	// result means the user should be redirected to InstallURL.
	Detect(ctx context.Context) bool
	InstallURL() string
	Connect(ctx context.Context, chainID uint64) (ConnectResult, error)
	Disconnect(ctx context.Context) error
	SwitchChain(ctx context.Context, chainID uint64) error
}

// Registry maps connector ids to connectors.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[string]Connector)}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

func (r *Registry) Register(c Connector) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[strings.ToLower(c.ID())] = c
}

func (r *Registry) Get(id string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w: connector %q", domain.ErrNotFound, id)
	}
	return c, nil
}

// IDs returns the registered connector ids in stable order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.connectors))
	for id := range r.connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
