package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func TestSecure_SetsHeadersOnEveryOutcome(t *testing.T) {
	e := echo.New()
	e.Pre(Secure())
	e.Use(echomiddleware.Recover())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(c echo.Context) error { return errors.New("boom") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })

	for _, tc := range []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/ok", http.StatusOK},
		{http.MethodGet, "/fail", http.StatusInternalServerError},
		{http.MethodGet, "/panic", http.StatusInternalServerError},
		{http.MethodGet, "/missing", http.StatusNotFound},
		{http.MethodPost, "/ok", http.StatusMethodNotAllowed},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		if rec.Code != tc.code {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.code, rec.Code)
		}
		for k, v := range SecurityHeaders {
			if got := rec.Header().Get(k); got != v {
				t.Errorf("%s %s: header %s = %q, want %q", tc.method, tc.path, k, got, v)
			}
		}
		if rec.Header().Get("X-Powered-By") != "" || rec.Header().Get("Server") != "" {
			t.Errorf("%s %s: stack disclosure header present", tc.method, tc.path)
		}
	}
}

func TestContentSecurityPolicy_ExplicitDirectives(t *testing.T) {
	for _, d := range []string{"frame-ancestors 'none'", "form-action 'self'", "object-src 'none'"} {
		if !strings.Contains(ContentSecurityPolicy, d) {
			t.Errorf("CSP missing %q", d)
		}
	}
	if strings.Contains(ContentSecurityPolicy, "unsafe-inline") {
		t.Errorf("CSP must not allow inline scripts")
	}
}
