package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RegistrationLimiter abstracts the Redis-backed throttle so handlers and
// tests do not depend on a live Redis.
type RegistrationLimiter interface {
	Allow(ctx context.Context, email, ip string) (bool, error)
}

// Throttle refuses registration attempts beyond the configured rate per
// email and client IP. A throttle backend outage fails open: slowing an
// attacker is not worth refusing legitimate signups.
func Throttle(limiter RegistrationLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := peekEmail(c)

			ok, err := limiter.Allow(c.Request().Context(), email, c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("registration throttle unavailable, allowing request")
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many registration attempts, try again later")
			}
			return next(c)
		}
	}
}

// peekEmail reads the email field out of the JSON body, then restores the
// body so the handler can still bind it.
func peekEmail(c echo.Context) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(buf, &body); err != nil {
		return ""
	}
	return body.Email
}
