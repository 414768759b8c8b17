package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/api/metrics"
	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
)

type AuthHandler struct {
	authService ports.AuthService
	policy      session.Policy
}

func NewAuthHandler(authService ports.AuthService, policy session.Policy) *AuthHandler {
	return &AuthHandler{authService: authService, policy: policy}
}

// Signup creates a new user account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	metrics.AuthAttemptsTotal.WithLabelValues("signup", authOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login authenticates a user, opens a session and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("login", authOutcome(err)).Inc()
	if err != nil {
		return err
	}
	metrics.SessionsStartedTotal.Inc()

	return c.JSON(http.StatusOK, loginResponse{
		User:      res.User,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
		Session: loginSession{
			SessionID:      res.SessionID,
			TimeoutSeconds: int(h.policy.Timeout.Seconds()),
			WarningSeconds: int(h.policy.WarningWindow.Seconds()),
		},
	})
}

// Logout ends the caller's session. The token stops working immediately.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), p.SessionID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Me returns the caller's account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Session reports the idle-timeout state without counting as activity.
//
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return h.writeSession(c)
}

// ExtendSession is the "stay logged in" action; the session check in front
// of it has already refreshed the last activity.
//
// @Summary      Extend session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session/extend [post]
func (h *AuthHandler) ExtendSession(c echo.Context) error {
	return h.writeSession(c)
}

func (h *AuthHandler) writeSession(c echo.Context) error {
	st, ok := ctxSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	return c.JSON(http.StatusOK, toSessionResponse(st, h.policy))
}

func toSessionResponse(st *ports.SessionStatus, policy session.Policy) sessionResponse {
	return sessionResponse{
		SessionID:        st.SessionID,
		State:            st.State,
		LastActivity:     st.LastActivity.UTC(),
		ExpiresAt:        st.ExpiresAt.UTC(),
		RemainingSeconds: st.RemainingSeconds,
		TimeoutSeconds:   int(policy.Timeout.Seconds()),
		WarningSeconds:   int(policy.WarningWindow.Seconds()),
	}
}

func authOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	case errors.Is(err, domain.ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}
