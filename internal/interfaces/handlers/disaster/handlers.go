package disaster

import (
	"encoding/json"

	disastersvc "spending-backend/internal/application/disaster"
	"spending-backend/internal/infrastructure/cache"
	"spending-backend/internal/middleware"
	"spending-backend/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serves POST /api/v2/disaster/* endpoints.
type Handlers struct {
	Service *disastersvc.Service
	Cache   *cache.Responses
}

// Register mounts every disaster endpoint under r.
func (h *Handlers) Register(r fiber.Router) {
	for _, e := range disastersvc.Endpoints() {
		r.Post("/"+string(e), h.Serve(e))
	}
}

// Serve returns the handler for one endpoint. Bodies must be JSON. Successful
// responses are cached by endpoint and canonical request body; X-Cache reports
// HIT or MISS.
func (h *Handlers) Serve(e disastersvc.Endpoint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req disastersvc.Request
		if err := c.BodyParser(&req); err != nil {
			return apperr.Invalid("Invalid request body")
		}

		key, keyErr := cache.Key(string(e), c.Body())
		if keyErr == nil {
			if b, ok := h.Cache.Get(c.UserContext(), key); ok {
				c.Set("X-Cache", "HIT")
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Send(b)
			}
		}

		var out interface{}
		var err error
		if e.Kind() == disastersvc.KindCount {
			out, err = h.Service.Count(c.UserContext(), e, req)
		} else {
			out, err = h.Service.Spending(c.UserContext(), e, req)
		}
		if err != nil {
			return err
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		if keyErr == nil {
			h.Cache.Set(c.UserContext(), key, b)
		}
		log.Debug().Str("trace_id", middleware.GetTraceID(c)).Str("endpoint", string(e)).Msg("disaster response computed")
		c.Set("X-Cache", "MISS")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(b)
	}
}
