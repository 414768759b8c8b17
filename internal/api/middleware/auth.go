package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/api/metrics"
	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

// Context keys set by AuthWithConfig.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxRole      = "role"
	CtxSessionID = "session_id"
	CtxSession   = "session"
)

// SessionChecker is the part of the session service the middleware needs.
type SessionChecker interface {
	Touch(ctx context.Context, sessionID string) (*ports.SessionStatus, error)
	Peek(ctx context.Context, sessionID string) (*ports.SessionStatus, error)
}

type AuthConfig struct {
	Secret string
	// Sessions enables the idle-timeout check. Nil accepts any valid token.
	Sessions SessionChecker
	// Passive checks the session without counting the request as activity.
	Passive bool
}

// AuthWithConfig validates the JWT, then the server-side session it names.
func AuthWithConfig(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(cfg.Secret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid := claimString(claims, "sid")
			if cfg.Sessions != nil {
				if sid == "" {
					metrics.SessionRejectionsTotal.WithLabelValues("missing").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token is not bound to a session")
				}

				check := cfg.Sessions.Touch
				if cfg.Passive {
					check = cfg.Sessions.Peek
				}
				status, err := check(c.Request().Context(), sid)
				if err != nil {
					switch {
					case errors.Is(err, domain.ErrSessionExpired):
						metrics.SessionRejectionsTotal.WithLabelValues("expired").Inc()
					case errors.Is(err, domain.ErrSessionNotFound):
						metrics.SessionRejectionsTotal.WithLabelValues("not_found").Inc()
					}
					return err
				}
				c.Set(CtxSession, status)
			}

			c.Set(CtxUserID, claimString(claims, "sub"))
			c.Set(CtxEmail, claimString(claims, "email"))
			c.Set(CtxRole, claimString(claims, "role"))
			c.Set(CtxSessionID, sid)

			return next(c)
		}
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
