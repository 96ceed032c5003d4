package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/identity"
	"github.com/calories-tracker/calories_tracker/internal/session"
)

// Handler exposes auth endpoints for login/logout and the current session.
type Handler struct {
	svc *Service
	ttl time.Duration
}

// NewHandler builds the auth handler; ttl sizes the session cookie.
func NewHandler(svc *Service, ttl time.Duration) *Handler {
	return &Handler{svc: svc, ttl: ttl}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Email        string `json:"email"`
	SessionToken string `json:"session_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login validates credentials and opens a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Login(c.UserContext(), identity.Credentials{Identifier: req.Email, Password: req.Password})
	if errors.Is(err, ErrInvalidCredentials) {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not start session")
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(http.StatusOK).JSON(loginResponse{
		Email:        sess.Identifier,
		SessionToken: sess.Token,
		ExpiresIn:    int64(h.ttl.Seconds()),
	})
}

// Logout ends the current session and clears the cookie.
func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, ok := session.FromRequest(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	if err := h.svc.Logout(c.UserContext(), sess.Token); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	c.ClearCookie(session.CookieName)
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// Me describes the current session.
func (h *Handler) Me(c *fiber.Ctx) error {
	sess, ok := session.FromRequest(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{
		"email":      sess.Identifier,
		"created_at": sess.CreatedAt,
		"expires_at": sess.ExpiresAt,
	})
}
