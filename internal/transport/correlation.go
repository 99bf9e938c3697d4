package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/stakemesh/wallet-gateway/internal/observability"
)

// HeaderCorrelationID carries the request correlation id; callers may
// supply their own, otherwise one is assigned.
const HeaderCorrelationID = "X-Correlation-Id"

func CorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), correlationID))
		c.Set(HeaderCorrelationID, correlationID)
		return c.Next()
	}
}
