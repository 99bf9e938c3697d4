package handler

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

type TransactionLog interface {
	List() []domain.TrackedTransaction
	Cancel(hash common.Hash) bool
}

type TransactionHandler struct {
	log TransactionLog
}

func NewTransactionHandler(log TransactionLog) (*TransactionHandler, error) {
	if log == nil {
		return nil, fmt.Errorf("transaction log is required")
	}
	return &TransactionHandler{log: log}, nil
}

func RegisterTransactionRoutes(router fiber.Router, log TransactionLog) error {
	h, err := NewTransactionHandler(log)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/transactions", h.ListTransactions)
	v1.Post("/transactions/:hash/cancel", h.CancelTransaction)

	return nil
}

type listTransactionsResponse struct {
	Data []domain.TrackedTransaction `json:"data"`
}

func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(listTransactionsResponse{
		Data: h.log.List(),
	})
}

func (h *TransactionHandler) CancelTransaction(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Params("hash"))
	if len(raw) != 66 || !strings.HasPrefix(raw, "0x") {
		return fmt.Errorf("%w: a 0x-prefixed transaction hash is required", domain.ErrValidation)
	}

	if !h.log.Cancel(common.HexToHash(raw)) {
		return fmt.Errorf("%w: no pending transaction %s", domain.ErrNotFound, raw)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
