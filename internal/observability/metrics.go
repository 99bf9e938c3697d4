package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the HTTP surface and the
// wallet, toast, and transaction flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	walletConnectsTotal   *prometheus.CounterVec
	toastsShownTotal      *prometheus.CounterVec
	toastsSuppressedTotal *prometheus.CounterVec
	receiptPollsTotal     *prometheus.CounterVec
	transactionsTotal     *prometheus.CounterVec
	notificationsStored   prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wallet_gateway",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		walletConnectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "wallet_connects_total",
				Help:      "Total number of wallet connection attempts by connector and outcome.",
			},
			[]string{"connector", "outcome"},
		),
		toastsShownTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "toasts_shown_total",
				Help:      "Total number of toasts shown grouped by kind.",
			},
			[]string{"kind"},
		),
		toastsSuppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "toasts_suppressed_total",
				Help:      "Total number of toasts suppressed by the dedup window grouped by kind.",
			},
			[]string{"kind"},
		),
		receiptPollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "receipt_polls_total",
				Help:      "Total number of receipt poll attempts by outcome.",
			},
			[]string{"outcome"},
		),
		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "transactions_total",
				Help:      "Total number of tracked transactions that reached a terminal status.",
			},
			[]string{"status"},
		),
		notificationsStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wallet_gateway",
				Name:      "notifications_stored_total",
				Help:      "Total number of notifications written to the persistent store.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.walletConnectsTotal,
		m.toastsShownTotal,
		m.toastsSuppressedTotal,
		m.receiptPollsTotal,
		m.transactionsTotal,
		m.notificationsStored,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncWalletConnect(connector, outcome string) {
	if m == nil {
		return
	}
	m.walletConnectsTotal.WithLabelValues(normalizeLabel(connector), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncToastShown(kind string) {
	if m == nil {
		return
	}
	m.toastsShownTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncToastSuppressed(kind string) {
	if m == nil {
		return
	}
	m.toastsSuppressedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncReceiptPoll(outcome string) {
	if m == nil {
		return
	}
	m.receiptPollsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncTxOutcome(status string) {
	if m == nil {
		return
	}
	m.transactionsTotal.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *Metrics) IncNotificationStored() {
	if m == nil {
		return
	}
	m.notificationsStored.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
