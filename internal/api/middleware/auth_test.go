package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
)

type stubSessions struct {
	touched []string
	peeked  []string
	err     error
}

func (s *stubSessions) Touch(_ context.Context, id string) (*ports.SessionStatus, error) {
	s.touched = append(s.touched, id)
	if s.err != nil {
		return nil, s.err
	}
	return &ports.SessionStatus{SessionID: id, State: "active"}, nil
}

func (s *stubSessions) Peek(_ context.Context, id string) (*ports.SessionStatus, error) {
	s.peeked = append(s.peeked, id)
	if s.err != nil {
		return nil, s.err
	}
	return &ports.SessionStatus{SessionID: id, State: "warning"}, nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-1",
		"email": "admin@arielspace.com",
		"role":  "admin",
		"sid":   "session-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d error, got %v", code, err)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	c, rec := newAuthContext("Bearer " + signToken(t, validClaims()))

	called := false
	handler := AuthWithConfig(AuthConfig{Secret: "secret"})(func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "user-1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(CtxRole) != "admin" {
			t.Fatalf("role not set")
		}
		if c.Get(CtxEmail) != "admin@arielspace.com" {
			t.Fatalf("email not set")
		}
		if c.Get(CtxSessionID) != "session-1" {
			t.Fatalf("session_id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	c, _ := newAuthContext("")
	handler := AuthWithConfig(AuthConfig{Secret: "secret"})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	expectStatus(t, handler(c), http.StatusUnauthorized)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := map[string]string{
		"expired":   "Bearer " + signToken(t, expired),
		"alg none":  "Bearer " + none,
		"wrong key": "Bearer " + wrongKey,
		"no scheme": signToken(t, validClaims()),
		"basic":     "Basic dXNlcjpwYXNz",
	}
	for name, header := range cases {
		c, _ := newAuthContext(header)
		handler := AuthWithConfig(AuthConfig{Secret: "secret"})(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next handler", name)
			return nil
		})
		expectStatus(t, handler(c), http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_TouchesSession(t *testing.T) {
	sessions := &stubSessions{}
	c, _ := newAuthContext("Bearer " + signToken(t, validClaims()))

	handler := AuthWithConfig(AuthConfig{Secret: "secret", Sessions: sessions})(func(c echo.Context) error {
		st, ok := c.Get(CtxSession).(*ports.SessionStatus)
		if !ok || st.SessionID != "session-1" {
			t.Fatalf("session status not set: %v", c.Get(CtxSession))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(sessions.touched) != 1 || len(sessions.peeked) != 0 {
		t.Fatalf("expected one touch, got touched=%v peeked=%v", sessions.touched, sessions.peeked)
	}
}

func TestAuthMiddleware_PassivePeeks(t *testing.T) {
	sessions := &stubSessions{}
	c, _ := newAuthContext("Bearer " + signToken(t, validClaims()))

	handler := AuthWithConfig(AuthConfig{Secret: "secret", Sessions: sessions, Passive: true})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(sessions.touched) != 0 || len(sessions.peeked) != 1 {
		t.Fatalf("expected one peek, got touched=%v peeked=%v", sessions.touched, sessions.peeked)
	}
}

func TestAuthMiddleware_ExpiredSession(t *testing.T) {
	sessions := &stubSessions{err: domain.ErrSessionExpired}
	c, _ := newAuthContext("Bearer " + signToken(t, validClaims()))

	handler := AuthWithConfig(AuthConfig{Secret: "secret", Sessions: sessions})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthMiddleware_TokenWithoutSession(t *testing.T) {
	claims := validClaims()
	delete(claims, "sid")
	c, _ := newAuthContext("Bearer " + signToken(t, claims))

	handler := AuthWithConfig(AuthConfig{Secret: "secret", Sessions: &stubSessions{}})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	expectStatus(t, handler(c), http.StatusUnauthorized)
}
