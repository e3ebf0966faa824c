package middleware

import (
	"errors"
	"strconv"
	"time"

	"skillbridge/internal/infrastructure/telemetry"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityMiddleware records request metrics and wraps each request in
// a server span. It runs outside ErrorMiddleware so it sees final statuses.
type ObservabilityMiddleware struct {
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

func NewObservabilityMiddleware(metrics *telemetry.Metrics) *ObservabilityMiddleware {
	return &ObservabilityMiddleware{metrics: metrics, tracer: otel.Tracer("skillbridge/api")}
}

func (m *ObservabilityMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		ctx, span := m.tracer.Start(c.Context(), c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if err != nil && errors.As(err, &fe) {
			status = fe.Code
		}
		route := c.Route().Path

		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}

		if m.metrics != nil {
			label := strconv.Itoa(status)
			m.metrics.RequestTotal.WithLabelValues(c.Method(), route, label).Inc()
			m.metrics.RequestDuration.WithLabelValues(c.Method(), route, label).Observe(time.Since(start).Seconds())
		}
		return err
	}
}
