package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"community/config"
	deliverycontext "community/internal/delivery/context"
	domainerrors "community/internal/domain/errors"
)

// rateLimitVisitorTTL is how long an idle client keeps its token bucket.
const rateLimitVisitorTTL = 3 * time.Minute

// NewRateLimit returns a per-client-IP token bucket limiter, or nil when
// http.rateLimit is disabled.
func NewRateLimit(cfg *config.Config, logger *slog.Logger) echo.MiddlewareFunc {
	limit := cfg.HTTP.RateLimit
	if limit == nil || !limit.Enabled || limit.Rate <= 0 {
		return nil
	}

	burst := limit.Burst
	if burst <= 0 {
		burst = int(limit.Rate) + 1
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit.Rate),
			Burst:     burst,
			ExpiresIn: rateLimitVisitorTTL,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return domainerrors.ErrInternalError.WithDetails(err.Error())
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), logger).
				Warn("Rate limit exceeded", slog.String("client", identifier))

			return domainerrors.ErrRateLimitExceeded
		},
	})
}
