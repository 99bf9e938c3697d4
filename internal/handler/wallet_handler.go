package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/wallet"
)

type WalletService interface {
	ConnectWith(ctx context.Context, connectorID string) error
	Disconnect(ctx context.Context) error
	SetRemember(ctx context.Context, remember bool) error
	OpenModal(pending wallet.PendingAction)
	CloseModal()
	Session() domain.WalletSession
}

type ConnectorCatalog interface {
	IDs() []string
}

type WalletHandler struct {
	service    WalletService
	connectors ConnectorCatalog
}

func NewWalletHandler(service WalletService, connectors ConnectorCatalog) (*WalletHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("wallet service is required")
	}
	if connectors == nil {
		return nil, fmt.Errorf("connector catalog is required")
	}
	return &WalletHandler{service: service, connectors: connectors}, nil
}

func RegisterWalletRoutes(router fiber.Router, service WalletService, connectors ConnectorCatalog) error {
	h, err := NewWalletHandler(service, connectors)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/wallet/connect", h.Connect)
	v1.Post("/wallet/disconnect", h.Disconnect)
	v1.Get("/wallet/session", h.GetSession)
	v1.Post("/wallet/modal/open", h.OpenModal)
	v1.Post("/wallet/modal/close", h.CloseModal)

	return nil
}

type connectRequest struct {
	ConnectorID string `json:"connectorId"`
	Remember    *bool  `json:"remember,omitempty"`
}

type sessionResponse struct {
	Session    domain.WalletSession `json:"session"`
	Connectors []string             `json:"connectors"`
}

func (h *WalletHandler) Connect(c *fiber.Ctx) error {
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ConnectorID == "" {
		return fmt.Errorf("%w: connectorId is required", domain.ErrValidation)
	}

	if req.Remember != nil {
		if err := h.service.SetRemember(c.Context(), *req.Remember); err != nil {
			return err
		}
	}

	if err := h.service.ConnectWith(c.Context(), req.ConnectorID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

func (h *WalletHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.service.Disconnect(c.Context()); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

func (h *WalletHandler) GetSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

func (h *WalletHandler) OpenModal(c *fiber.Ctx) error {
	h.service.OpenModal(nil)
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

func (h *WalletHandler) CloseModal(c *fiber.Ctx) error {
	h.service.CloseModal()
	return c.Status(fiber.StatusOK).JSON(h.sessionResponse())
}

func (h *WalletHandler) sessionResponse() sessionResponse {
	return sessionResponse{
		Session:    h.service.Session(),
		Connectors: h.connectors.IDs(),
	}
}
