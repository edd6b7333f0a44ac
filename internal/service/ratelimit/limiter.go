// Package ratelimit throttles dashboard actions per client address.
package ratelimit

import (
	"time"

	xhttp "NiftyDash/pkg/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Config of the per-client token bucket. PerSecond may be zero, in which case
// a client gets Burst requests and nothing more until its bucket expires.
type Config struct {
	PerSecond float64
	Burst     int
	ExpiresIn time.Duration
}

// Middleware rejects requests over the limit with 429 in the API envelope.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.PerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests, slow down"))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return xhttp.AppErrorResponse(c, xhttp.InternalError("rate limiter unavailable").WithError(err))
		},
	})
}
