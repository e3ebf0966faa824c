package worker

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"skillbridge/internal/config"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/telemetry"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	logger  *log.Logger
	server  *asynq.Server
	sched   *asynq.Scheduler
	jobs    Maintenance
	metrics *telemetry.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewServer(logger *log.Logger, queueCfg config.QueueConfig, jobs Maintenance, metrics *telemetry.Metrics) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	return &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: max(1, queueCfg.Concurrency),
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.Printf("[Worker] task failed type=%s retry=%d/%d err=%v", task.Type(), retried, maxRetry, err)
				}),
			},
		),
		sched: asynq.NewScheduler(queueCfg.RedisClientOpt(), &asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.WarnLevel,
		}),
		jobs:    jobs,
		metrics: metrics,
		tracer:  otel.Tracer("skillbridge/worker"),
		now:     time.Now,
	}
}

// Schedule registers the periodic maintenance tasks on queueName.
func (s *Server) Schedule(queueName string) error {
	if _, err := s.sched.Register("0 0 * * *", queue.NewResetQuotasTask(), asynq.Queue(queueName)); err != nil {
		return fmt.Errorf("schedule quota reset: %w", err)
	}
	if _, err := s.sched.Register("@every 1h", queue.NewExpireMembershipsTask(), asynq.Queue(queueName)); err != nil {
		return fmt.Errorf("schedule membership expiry: %w", err)
	}
	return nil
}

func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeResetQuotas, s.handleResetQuotas)
	mux.HandleFunc(queue.TypeExpireMemberships, s.handleExpireMemberships)
	mux.HandleFunc(queue.TypeSubmissionReviewed, s.handleSubmissionReviewed)
	return mux
}

// Start runs the scheduler and the task server until Shutdown.
func (s *Server) Start() error {
	if err := s.sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := s.server.Start(s.Mux()); err != nil {
		s.sched.Shutdown()
		return fmt.Errorf("start task server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() {
	s.sched.Shutdown()
	s.server.Shutdown()
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) handleResetQuotas(ctx context.Context, task *asynq.Task) error {
	return s.observe(ctx, task, func(ctx context.Context) error {
		_, err := s.jobs.ResetQuotas(ctx, s.now())
		return err
	})
}

func (s *Server) handleExpireMemberships(ctx context.Context, task *asynq.Task) error {
	return s.observe(ctx, task, func(ctx context.Context) error {
		_, err := s.jobs.ExpireMemberships(ctx, s.now())
		return err
	})
}

func (s *Server) handleSubmissionReviewed(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseSubmissionReviewedPayload(task)
	if err != nil {
		s.metrics.TasksProcessed.WithLabelValues(task.Type(), "invalid").Inc()
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}
	return s.observe(ctx, task, func(ctx context.Context) error {
		_, err := s.jobs.RecordEarning(ctx, payload)
		return err
	})
}

func (s *Server) observe(ctx context.Context, task *asynq.Task, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "worker."+task.Type(), trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(attribute.String("task.type", task.Type()))
	defer span.End()

	status := "succeeded"
	if err := fn(ctx); err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, "task failed")
		s.metrics.TasksProcessed.WithLabelValues(task.Type(), status).Inc()
		return err
	}
	s.metrics.TasksProcessed.WithLabelValues(task.Type(), status).Inc()
	return nil
}
