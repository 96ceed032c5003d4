package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/auth"
	"github.com/calories-tracker/calories_tracker/internal/identity"
)

// RegisterAuthRoutes wires registration, login, logout and the session profile.
func RegisterAuthRoutes(r fiber.Router, ids *identity.Handler, h *auth.Handler, rateLimiter, requireSession fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", ids.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/logout", requireSession, h.Logout)

	r.Get("/me", requireSession, h.Me)
}
