package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/api/middleware"
	"github.com/arielspace/listing-board/internal/core/ports"
)

// principal is the caller identity injected by the Auth middleware.
type principal struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
}

// ctxPrincipal extracts the auth claims and fails fast when the middleware
// did not run: a route that needs a caller but has no user id is a 401.
func ctxPrincipal(c echo.Context) (principal, error) {
	p := principal{}
	p.UserID, _ = c.Get(middleware.CtxUserID).(string)
	p.Email, _ = c.Get(middleware.CtxEmail).(string)
	p.Role, _ = c.Get(middleware.CtxRole).(string)
	p.SessionID, _ = c.Get(middleware.CtxSessionID).(string)
	if p.UserID == "" {
		return principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// ctxSession returns the session status the Auth middleware resolved, if any.
func ctxSession(c echo.Context) (*ports.SessionStatus, bool) {
	st, ok := c.Get(middleware.CtxSession).(*ports.SessionStatus)
	return st, ok && st != nil
}
