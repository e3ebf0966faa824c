package middleware

import (
	"context"
	"log"
	"strconv"
	"time"

	"skillbridge/internal/infrastructure/ratelimit"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

type RateLimiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// RateLimitMiddleware keys buckets by authenticated user, falling back to
// the client IP. Limiter errors let the request through.
type RateLimitMiddleware struct {
	limiter  RateLimiter
	rejected *prometheus.CounterVec
	logger   *log.Logger
}

func NewRateLimitMiddleware(limiter RateLimiter, rejected *prometheus.CounterVec, logger *log.Logger) *RateLimitMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &RateLimitMiddleware{limiter: limiter, rejected: rejected, logger: logger}
}

func (m *RateLimitMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m == nil || m.limiter == nil || c.Method() == fiber.MethodGet {
			return c.Next()
		}

		route := c.Route().Path
		subject := "ip:" + c.IP()
		if id, ok := UserID(c); ok {
			subject = "user:" + id.String()
		}
		subject += ":" + route

		decision, err := m.limiter.Allow(c.Context(), subject)
		if err != nil {
			m.logger.Printf("[RateLimit] check failed subject=%s err=%v", subject, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if decision.Allowed {
			return c.Next()
		}

		retryAfter := int(decision.RetryAfter.Round(time.Second).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set("Retry-After", strconv.Itoa(retryAfter))
		if m.rejected != nil {
			m.rejected.WithLabelValues(route).Inc()
		}
		return NewAppError(fiber.StatusTooManyRequests, "Too many requests, please slow down", nil, nil)
	}
}
