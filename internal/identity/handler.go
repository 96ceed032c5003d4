package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/hashing"
)

// Handler exposes credential endpoints.
type Handler struct {
	service *Service
	log     *slog.Logger
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, log: logger}
}

type registerRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type registerResponse struct {
	Email      string `json:"email"`
	Registered bool   `json:"registered"`
}

// Register handles account creation.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	created, err := h.service.Register(c.UserContext(), Credentials{Identifier: req.Email, Password: req.Password})
	if IsValidationError(err) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not store credentials")
	}
	if !created {
		return fiber.NewError(http.StatusConflict, "email already registered")
	}
	if h.log != nil {
		h.log.Info("identity.register completed",
			slog.String("identifier", Normalize(req.Email)),
			slog.Int("status", http.StatusCreated),
		)
	}
	return c.Status(http.StatusCreated).JSON(registerResponse{Email: Normalize(req.Email), Registered: true})
}

// IsValidationError reports whether Register rejected the input itself rather
// than failing to store it.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, hashing.ErrPasswordTooLong)
}
