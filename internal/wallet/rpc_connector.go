package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var _ Connector = (*RPCConnector)(nil)

// RPCConnector speaks to a wallet provider over JSON-RPC: a node with
// managed accounts or a remote signer exposing the standard wallet methods.
type RPCConnector struct {
	id         string
	name       string
	installURL string
	client     *rpc.Client
}

// DialRPCConnector connects the adapter to its JSON-RPC endpoint.
func DialRPCConnector(id, name, endpoint, installURL string) (*RPCConnector, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}

	client, err := rpc.Dial(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet rpc endpoint: %w", err)
	}

	return &RPCConnector{
		id:         id,
		name:       name,
		installURL: installURL,
		client:     client,
	}, nil
}

func (c *RPCConnector) ID() string         { return c.id }
func (c *RPCConnector) Name() string       { return c.name }
func (c *RPCConnector) InstallURL() string { return c.installURL }

func (c *RPCConnector) Detect(ctx context.Context) bool {
	if c == nil || c.client == nil {
		return false
	}

	var chainID hexutil.Big
	return c.client.CallContext(ctx, &chainID, "eth_chainId") == nil
}

func (c *RPCConnector) Connect(ctx context.Context, chainID uint64) (ConnectResult, error) {
	var accounts []string
	if err := c.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return ConnectResult{}, fmt.Errorf("failed to request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return ConnectResult{}, fmt.Errorf("wallet provider exposes no accounts")
	}

	var current hexutil.Big
	if err := c.client.CallContext(ctx, &current, "eth_chainId"); err != nil {
		return ConnectResult{}, fmt.Errorf("failed to read chain id: %w", err)
	}

	return ConnectResult{
		Address: accounts[0],
		ChainID: current.ToInt().Uint64(),
	}, nil
}

func (c *RPCConnector) Disconnect(context.Context) error {
	// The provider owns the session; there is nothing to revoke over RPC.
	return nil
}

func (c *RPCConnector) SwitchChain(ctx context.Context, chainID uint64) error {
	param := map[string]string{"chainId": hexutil.EncodeUint64(chainID)}
	if err := c.client.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		return fmt.Errorf("failed to switch chain: %w", err)
	}
	return nil
}

// Close releases the underlying RPC client.
func (c *RPCConnector) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}
