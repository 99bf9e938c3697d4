package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// stakingABI covers the calls the gateway makes. Reward math, rank
// thresholds and pool accounting live entirely on-chain; the gateway only
// reads the results.
const stakingABI = `[
	{"type":"function","name":"getStake","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getRank","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pendingReward","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalStaked","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"},{"name":"referrer","type":"address"}],"outputs":[]},
	{"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"upgradeRank","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

// Caller is the read side of the chain RPC, satisfied by ethclient.Client.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Submitter sends a contract call from the connected account and returns
// the transaction hash. Signing happens provider-side.
type Submitter interface {
	SubmitCall(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
}

// Position is the decoded staking read model for one account. Raw values
// keep the scaled integers; the display fields are their decimal form.
type Position struct {
	Address       common.Address `json:"address"`
	Stake         string         `json:"stake"`
	Rank          uint64         `json:"rank"`
	PendingReward string         `json:"pendingReward"`
	TotalStaked   string         `json:"totalStaked"`

	RawStake         *big.Int `json:"-"`
	RawPendingReward *big.Int `json:"-"`
	RawTotalStaked   *big.Int `json:"-"`
}

// Staking wraps the fixed staking contract on the target chain. Values are
// decoded at this boundary into typed results; nothing loosely-typed leaks
// past it.
type Staking struct {
	address   common.Address
	abi       abi.ABI
	caller    Caller
	submitter Submitter
}

func NewStaking(address common.Address, caller Caller, submitter Submitter) (*Staking, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is required")
	}

	parsed, err := abi.JSON(strings.NewReader(stakingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse staking abi: %w", err)
	}

	return &Staking{
		address:   address,
		abi:       parsed,
		caller:    caller,
		submitter: submitter,
	}, nil
}

// PositionOf reads the full staking position for an account.
func (s *Staking) PositionOf(ctx context.Context, account common.Address) (Position, error) {
	stake, err := s.readUint(ctx, "getStake", account)
	if err != nil {
		return Position{}, fmt.Errorf("failed to read stake: %w", err)
	}
	rank, err := s.readUint(ctx, "getRank", account)
	if err != nil {
		return Position{}, fmt.Errorf("failed to read rank: %w", err)
	}
	reward, err := s.readUint(ctx, "pendingReward", account)
	if err != nil {
		return Position{}, fmt.Errorf("failed to read pending reward: %w", err)
	}
	total, err := s.readUint(ctx, "totalStaked")
	if err != nil {
		return Position{}, fmt.Errorf("failed to read total staked: %w", err)
	}

	return Position{
		Address:          account,
		Stake:            FromBase(stake),
		Rank:             rank.Uint64(),
		PendingReward:    FromBase(reward),
		TotalStaked:      FromBase(total),
		RawStake:         stake,
		RawPendingReward: reward,
		RawTotalStaked:   total,
	}, nil
}

// Stake submits a stake of the given decimal amount, optionally crediting a
// referrer. It returns the transaction hash for tracking.
func (s *Staking) Stake(ctx context.Context, amountDecimal string, referrer *common.Address) (common.Hash, error) {
	if s.submitter == nil {
		return common.Hash{}, fmt.Errorf("no transaction submitter configured")
	}

	amount, err := ToBase(amountDecimal)
	if err != nil {
		return common.Hash{}, err
	}

	ref := common.Address{}
	if referrer != nil {
		ref = *referrer
	}

	data, err := s.abi.Pack("stake", amount, ref)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode stake call: %w", err)
	}

	return s.submitter.SubmitCall(ctx, s.address, data, nil)
}

// Claim submits a reward claim.
func (s *Staking) Claim(ctx context.Context) (common.Hash, error) {
	return s.submitVoid(ctx, "claim")
}

// UpgradeRank submits a rank upgrade.
func (s *Staking) UpgradeRank(ctx context.Context) (common.Hash, error) {
	return s.submitVoid(ctx, "upgradeRank")
}

func (s *Staking) submitVoid(ctx context.Context, method string) (common.Hash, error) {
	if s.submitter == nil {
		return common.Hash{}, fmt.Errorf("no transaction submitter configured")
	}

	data, err := s.abi.Pack(method)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	return s.submitter.SubmitCall(ctx, s.address, data, nil)
}

func (s *Staking) readUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	raw, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &s.address, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	values, err := s.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected %s result arity %d", method, len(values))
	}

	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, values[0])
	}
	return value, nil
}
