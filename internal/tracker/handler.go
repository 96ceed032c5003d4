package tracker

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/form"
	"github.com/calories-tracker/calories_tracker/internal/records"
	"github.com/calories-tracker/calories_tracker/internal/session"
)

// Handler exposes the submission form endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a tracker HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type resultResponse struct {
	Record        records.Record `json:"record"`
	CaloriesBurnt float64        `json:"calories_burnt"`
	Display       string         `json:"display"`
	Saved         bool           `json:"saved"`
	Notes         []string       `json:"notes,omitempty"`
}

// Submit handles a form submission and stores the result.
func (h *Handler) Submit(c *fiber.Ctx) error {
	sess, in, err := h.bind(c)
	if err != nil {
		return err
	}
	res, err := h.service.Submit(c.UserContext(), sess, in)
	if err != nil {
		return h.failure(c, err)
	}
	status := http.StatusCreated
	if !res.Saved {
		status = http.StatusOK
	}
	return c.Status(status).JSON(toResponse(res))
}

// Estimate runs the model for the form without saving.
func (h *Handler) Estimate(c *fiber.Ctx) error {
	sess, in, err := h.bind(c)
	if err != nil {
		return err
	}
	res, err := h.service.Estimate(c.UserContext(), sess, in)
	if err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(res))
}

// List returns the current identifier's stored records.
func (h *Handler) List(c *fiber.Ctx) error {
	sess, ok := session.FromRequest(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	recs, err := h.service.Records(c.UserContext(), sess)
	if err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"email": sess.Identifier, "records": recs})
}

func (h *Handler) bind(c *fiber.Ctx) (session.Session, form.RawInput, error) {
	sess, ok := session.FromRequest(c)
	if !ok {
		return session.Session{}, form.RawInput{}, fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	var in form.RawInput
	if err := c.BodyParser(&in); err != nil {
		return session.Session{}, form.RawInput{}, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return sess, in, nil
}

func (h *Handler) failure(c *fiber.Ctx, err error) error {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, ErrUnauthenticated):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func toResponse(res Result) resultResponse {
	return resultResponse{
		Record:        res.Record,
		CaloriesBurnt: res.Record.CaloriesBurnt,
		Display:       res.Display,
		Saved:         res.Saved,
		Notes:         res.Notes,
	}
}
