package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/stakemesh/wallet-gateway/internal/contract"
	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/tracker"
)

type StakingService interface {
	PositionOf(ctx context.Context, account common.Address) (contract.Position, error)
	Stake(ctx context.Context, amountDecimal string, referrer *common.Address) (common.Hash, error)
	Claim(ctx context.Context) (common.Hash, error)
	UpgradeRank(ctx context.Context) (common.Hash, error)
}

type TransactionSink interface {
	Track(ctx context.Context, hash common.Hash, description string, opts ...tracker.TrackOption)
}

type SessionSource interface {
	Session() domain.WalletSession
}

type StakingHandler struct {
	staking StakingService
	txs     TransactionSink
	session SessionSource
}

func NewStakingHandler(staking StakingService, txs TransactionSink, session SessionSource) (*StakingHandler, error) {
	if staking == nil {
		return nil, fmt.Errorf("staking service is required")
	}
	if txs == nil {
		return nil, fmt.Errorf("transaction sink is required")
	}
	if session == nil {
		return nil, fmt.Errorf("session source is required")
	}
	return &StakingHandler{staking: staking, txs: txs, session: session}, nil
}

func RegisterStakingRoutes(router fiber.Router, staking StakingService, txs TransactionSink, session SessionSource) error {
	h, err := NewStakingHandler(staking, txs, session)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/staking/position", h.GetPosition)
	v1.Post("/staking/stake", h.Stake)
	v1.Post("/staking/claim", h.Claim)
	v1.Post("/staking/upgrade", h.UpgradeRank)

	return nil
}

type stakeRequest struct {
	Amount string `json:"amount"`
}

type submittedResponse struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

func (h *StakingHandler) GetPosition(c *fiber.Ctx) error {
	account := strings.TrimSpace(c.Query("address"))
	if account == "" {
		account = h.session.Session().Address
	}
	if !common.IsHexAddress(account) {
		return fmt.Errorf("%w: a valid account address is required", domain.ErrValidation)
	}

	position, err := h.staking.PositionOf(c.Context(), common.HexToAddress(account))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(position)
}

func (h *StakingHandler) Stake(c *fiber.Ctx) error {
	var req stakeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Amount) == "" {
		return fmt.Errorf("%w: amount is required", domain.ErrValidation)
	}

	referrer, err := referrerFromQuery(c)
	if err != nil {
		return err
	}

	if err := h.requireConnected(); err != nil {
		return err
	}

	amount := strings.TrimSpace(req.Amount)
	hash, err := h.submitAndTrack(c.Context(), fmt.Sprintf("Stake %s", amount),
		func(ctx context.Context) (common.Hash, error) {
			return h.staking.Stake(ctx, amount, referrer)
		})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(submittedResponse{
		Hash:   hash.Hex(),
		Status: domain.TxStatusPending.String(),
	})
}

func (h *StakingHandler) Claim(c *fiber.Ctx) error {
	if err := h.requireConnected(); err != nil {
		return err
	}

	hash, err := h.submitAndTrack(c.Context(), "Claim rewards",
		func(ctx context.Context) (common.Hash, error) {
			return h.staking.Claim(ctx)
		})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(submittedResponse{
		Hash:   hash.Hex(),
		Status: domain.TxStatusPending.String(),
	})
}

func (h *StakingHandler) UpgradeRank(c *fiber.Ctx) error {
	if err := h.requireConnected(); err != nil {
		return err
	}

	hash, err := h.submitAndTrack(c.Context(), "Upgrade rank",
		func(ctx context.Context) (common.Hash, error) {
			return h.staking.UpgradeRank(ctx)
		})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(submittedResponse{
		Hash:   hash.Hex(),
		Status: domain.TxStatusPending.String(),
	})
}

// submitAndTrack submits a write call within the request context and hands
// the resulting hash to the tracker. Tracking outlives the request, so it
// runs on the background context, with a retry action that resubmits the
// same call if the transaction later fails.
func (h *StakingHandler) submitAndTrack(ctx context.Context, description string, submit func(context.Context) (common.Hash, error)) (common.Hash, error) {
	hash, err := submit(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	var retry func()
	retry = func() {
		rehash, err := submit(context.Background())
		if err != nil {
			return
		}
		h.txs.Track(context.Background(), rehash, description, tracker.WithRetry(retry))
	}

	h.txs.Track(context.Background(), hash, description, tracker.WithRetry(retry))
	return hash, nil
}

func (h *StakingHandler) requireConnected() error {
	if !h.session.Session().Connected {
		return fmt.Errorf("%w: wallet is not connected", domain.ErrValidation)
	}
	return nil
}

// referrerFromQuery reads the optional ref query parameter carried over from
// the landing URL. An absent or empty ref means no referrer.
func referrerFromQuery(c *fiber.Ctx) (*common.Address, error) {
	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		return nil, nil
	}
	if !common.IsHexAddress(ref) {
		return nil, fmt.Errorf("%w: ref is not a valid address", domain.ErrValidation)
	}

	address := common.HexToAddress(ref)
	return &address, nil
}
