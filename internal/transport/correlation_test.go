package transport

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stakemesh/wallet-gateway/internal/observability"
)

func TestCorrelationMiddleware_AssignsID(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(CorrelationMiddleware())

	var captured string
	app.Get("/ping", func(c *fiber.Ctx) error {
		captured, _ = observability.CorrelationIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	header := resp.Header.Get(HeaderCorrelationID)
	if header == "" {
		t.Fatal("expected a correlation id response header")
	}
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("correlation id %q is not a uuid: %v", header, err)
	}
	if captured != header {
		t.Fatalf("context id %q does not match header %q", captured, header)
	}
}

func TestCorrelationMiddleware_EchoesCallerID(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(CorrelationMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderCorrelationID, "cid-from-caller")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if got := resp.Header.Get(HeaderCorrelationID); got != "cid-from-caller" {
		t.Fatalf("header = %q, want cid-from-caller", got)
	}
}

func TestErrorHandlerLogsCorrelationID(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(zap.New(core)),
	})
	app.Use(CorrelationMiddleware())
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fmt.Errorf("boom")
	})

	req := httptest.NewRequest("GET", "/fail", nil)
	req.Header.Set(HeaderCorrelationID, "cid-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["correlationId"]; got != "cid-42" {
		t.Fatalf("correlationId = %v, want cid-42", got)
	}
}
