package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/calories-tracker/calories_tracker/internal/session"
)

// RequireSession resolves the session token from the Authorization bearer
// header or the session cookie and attaches the session to the request.
func RequireSession(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(session.CookieName)
		}
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "login required")
		}
		sess, err := sessions.Resolve(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "session expired or invalid")
		}
		session.Attach(c, sess)
		return c.Next()
	}
}

func bearerToken(authz string) string {
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}
