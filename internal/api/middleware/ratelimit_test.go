package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_DeniesAfterBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(0.001, 2, "login")
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	for i := 0; i < 2; i++ {
		if err := call("10.0.0.1"); err != nil {
			t.Fatalf("request %d within burst rejected: %v", i, err)
		}
	}

	var he *echo.HTTPError
	if err := call("10.0.0.1"); !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", err)
	}
	if err := call("10.0.0.2"); err != nil {
		t.Fatalf("other clients must not be throttled: %v", err)
	}
}
