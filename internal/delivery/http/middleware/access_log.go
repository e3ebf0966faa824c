package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// AccessLogMiddleware writes one line per request. Probe paths are skipped
// unless they fail.
type AccessLogMiddleware struct {
	logger *log.Logger
	quiet  map[string]bool
}

func NewAccessLogMiddleware(logger *log.Logger, quietPaths ...string) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}
	return &AccessLogMiddleware{logger: logger, quiet: quiet}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if m.quiet[c.Path()] && status < fiber.StatusBadRequest {
			return err
		}

		uid := "-"
		if id, ok := UserID(c); ok {
			uid = id.String()
		}

		m.logger.Printf(
			"[HTTP] access rid=%s method=%s path=%s route=%s status=%d latency=%s user_id=%s ip=%s resp_bytes=%d",
			rid, c.Method(), c.OriginalURL(), c.Route().Path, status, time.Since(start), uid, c.IP(), len(c.Response().Body()),
		)
		return err
	}
}
