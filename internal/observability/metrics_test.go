package observability

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsGatewayCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncWalletConnect("MetaMask", "success")
	metrics.IncToastShown("SUCCESS")
	metrics.IncToastSuppressed("success")
	metrics.IncReceiptPoll("miss")
	metrics.IncReceiptPoll("confirmed")
	metrics.IncTxOutcome("SUCCESS")
	metrics.IncNotificationStored()

	if got := testutil.ToFloat64(metrics.walletConnectsTotal.WithLabelValues("metamask", "success")); got != 1 {
		t.Fatalf("wallet_connects_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.toastsShownTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("toasts_shown_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.toastsSuppressedTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("toasts_suppressed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.receiptPollsTotal.WithLabelValues("miss")); got != 1 {
		t.Fatalf("receipt_polls_total{miss} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.transactionsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("transactions_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.notificationsStored); got != 1 {
		t.Fatalf("notifications_stored_total = %v, want 1", got)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.IncWalletConnect("metamask", "success")
	metrics.IncToastShown("info")
	metrics.IncReceiptPoll("miss")
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
