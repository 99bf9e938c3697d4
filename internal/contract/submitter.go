package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var _ Submitter = (*RPCSubmitter)(nil)

// RPCSubmitter sends contract calls through eth_sendTransaction against an
// endpoint with a managed signer. The from address follows the connected
// wallet session.
type RPCSubmitter struct {
	client *rpc.Client

	mu   sync.RWMutex
	from common.Address
}

func DialRPCSubmitter(endpoint string) (*RPCSubmitter, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}

	client, err := rpc.Dial(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	return &RPCSubmitter{client: client}, nil
}

// SetFrom follows the wallet session: it must be called with the connected
// address before any submission, and cleared on disconnect.
func (s *RPCSubmitter) SetFrom(from common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.from = from
}

func (s *RPCSubmitter) SubmitCall(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	s.mu.RLock()
	from := s.from
	s.mu.RUnlock()

	if (from == common.Address{}) {
		return common.Hash{}, fmt.Errorf("no connected account to send from")
	}

	arg := map[string]interface{}{
		"from": from,
		"to":   to,
		"data": hexutil.Bytes(data),
	}
	if value != nil && value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(value)
	}

	var hash common.Hash
	if err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit transaction: %w", err)
	}
	return hash, nil
}

// Close releases the underlying RPC client.
func (s *RPCSubmitter) Close() {
	if s != nil && s.client != nil {
		s.client.Close()
	}
}
