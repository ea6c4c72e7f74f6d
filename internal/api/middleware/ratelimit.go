package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/appsec-lab/gateway/internal/api/metrics"
)

// RateLimitConfig is a per-client token bucket. Buckets idle for ExpiresIn
// are forgotten.
type RateLimitConfig struct {
	Rate      rate.Limit
	Burst     int
	ExpiresIn time.Duration
}

// PerMinute allows n requests per minute with a burst of n.
func PerMinute(n int) RateLimitConfig {
	return RateLimitConfig{
		Rate:      rate.Limit(float64(n) / 60.0),
		Burst:     n,
		ExpiresIn: 10 * time.Minute,
	}
}

// retryAfter is the number of seconds until one token is back.
func (c RateLimitConfig) retryAfter() int {
	if c.Rate <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(1.0/float64(c.Rate))))
}

// RateLimit rejects clients over cfg with 429 and Retry-After. Clients are
// keyed by c.RealIP, so the router's IPExtractor decides whether forwarding
// headers are trusted.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      cfg.Rate,
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
			c.Response().Header().Set("Retry-After", strconv.Itoa(cfg.retryAfter()))
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
