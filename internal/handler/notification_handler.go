package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

type NotificationStore interface {
	List() []domain.Notification
	UnreadCount() int
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type NotificationHandler struct {
	store NotificationStore
}

func NewNotificationHandler(store NotificationStore) (*NotificationHandler, error) {
	if store == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	return &NotificationHandler{store: store}, nil
}

func RegisterNotificationRoutes(router fiber.Router, store NotificationStore) error {
	h, err := NewNotificationHandler(store)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/notifications", h.ListNotifications)
	v1.Post("/notifications/read-all", h.MarkAllRead)
	v1.Post("/notifications/:id/read", h.MarkRead)
	v1.Delete("/notifications/:id", h.RemoveNotification)
	v1.Delete("/notifications", h.ClearNotifications)

	return nil
}

type listNotificationsResponse struct {
	Data []domain.Notification `json:"data"`
	Meta notificationsMeta     `json:"meta"`
}

type notificationsMeta struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	notifications := h.store.List()
	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: notifications,
		Meta: notificationsMeta{
			Total:  len(notifications),
			Unread: h.store.UnreadCount(),
		},
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	if err := h.store.MarkRead(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.store.MarkAllRead(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) RemoveNotification(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	if err := h.store.Remove(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) ClearNotifications(c *fiber.Ctx) error {
	if err := h.store.Clear(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
