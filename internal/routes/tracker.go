package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/tracker"
)

// RegisterTrackerRoutes wires the calorie form endpoints. All of them need a session.
func RegisterTrackerRoutes(r fiber.Router, h *tracker.Handler, requireSession, idempotency fiber.Handler) {
	r.Post("/submissions", requireSession, idempotency, h.Submit)
	r.Post("/estimate", requireSession, h.Estimate)
	r.Get("/records", requireSession, h.List)
}
