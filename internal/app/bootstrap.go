package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillbridge/internal/config"
	"skillbridge/internal/delivery/http/handler"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/delivery/http/routes"
	v1 "skillbridge/internal/delivery/http/routes/v1"
	"skillbridge/internal/infrastructure/ratelimit"
	"skillbridge/internal/infrastructure/telemetry"
	"skillbridge/internal/pkg/payment"
	"skillbridge/internal/usecase"
	ucjob "skillbridge/internal/usecase/job"
	ucmembership "skillbridge/internal/usecase/membership"
	ucprofile "skillbridge/internal/usecase/profile"
	ucsub "skillbridge/internal/usecase/submission"
	"skillbridge/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
	Hub       *ws.Hub
}

// Bootstrap connects every dependency, starts the realtime relay and returns
// the HTTP app with a cleanup function that releases everything.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer initCancel()

	shutdownTracing, err := telemetry.SetupTracing(initCtx, cfg.App.AppName+"-api", cfg.Tracing, c.Logger)
	if err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("setup tracing: %w", err)
	}
	if err := c.InitStorage(initCtx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	c.InitQueue()

	runCtx, stop := context.WithCancel(context.Background())

	hub := ws.NewHub(c.Logger)
	hub.OnCount(func(total int) { c.Metrics.WSConnections.Set(float64(total)) })
	go hub.Run(runCtx.Done())

	listener := ws.NewListener(cfg.Database.DSN(), hub, c.Logger)
	go func() {
		if err := listener.Run(runCtx); err != nil {
			c.Logger.Printf("[Realtime] listener stopped err=%v", err)
		}
	}()

	a := &App{Fiber: New(cfg, c, hub), Container: c, Hub: hub}

	cleanup := func() error {
		stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			c.Logger.Printf("[Tracing] shutdown failed err=%v", err)
		}
		return c.Close()
	}
	return a, cleanup, nil
}

// New builds the fiber app from an initialised container.
func New(cfg config.Config, c *Container, hub *ws.Hub) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1<<20,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, cfg, c, hub)

	return f
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewObservabilityMiddleware(c.Metrics).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(c.Logger, "/health", "/metrics").Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, cfg config.Config, c *Container, hub *ws.Hub) {
	if app == nil {
		return
	}

	roles := c.Roles()

	authUC := usecase.NewAuthUsecase(usecase.AuthDeps{
		Users:           c.Users,
		Profiles:        c.Profiles,
		Roles:           roles,
		JWT:             c.JWT,
		Denylist:        c.Cache,
		RequireVerified: cfg.App.RequireVerifiedEmail,
		CallbackURL:     strings.TrimRight(cfg.App.PublicBaseURL, "/") + "/auth/callback",
		Logger:          c.Logger,
	})
	jobListUC := usecase.NewJobListUsecase(c.Jobs, c.Profiles, c.Cache, c.Logger)
	jobSvc := ucjob.NewService(c.Jobs, c.Categories, c.Profiles, c.Submissions, c.Storage)
	profileSvc := ucprofile.NewService(c.Profiles)
	subSvc := ucsub.NewService(c.Jobs, c.Profiles, c.Submissions, c.Storage, cfg.Storage.MaxUploadBytes, c.Logger)
	membershipSvc := ucmembership.NewService(
		c.Profiles,
		c.Transactions,
		payment.NewPayPal(cfg.Payment.PayPalEmail, cfg.Payment.Currency, cfg.Payment.BrandName),
		c.Logger,
	)
	adminSvc := c.AdminService()

	mw := v1.Middlewares{
		Auth:  middleware.NewAuthMiddleware(c.JWT, c.Cache).Middleware(),
		Admin: middleware.NewAdminMiddleware(roles).Middleware(),
	}
	if rdb := c.Cache.Client(); rdb != nil {
		bucket, err := ratelimit.NewRedisTokenBucket(rdb, cfg.RateLimit.Capacity, cfg.RateLimit.Window, "ratelimit:")
		if err != nil {
			c.Logger.Printf("[RateLimit] disabled err=%v", err)
		} else {
			mw.RateLimit = middleware.NewRateLimitMiddleware(bucket, c.Metrics.RateLimitRejected, c.Logger).Middleware()
		}
	}

	health := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": c.DB,
		"redis":    c.Cache,
		"storage":  c.Storage,
	}, c.Metrics.Handler())

	handlers := v1.Handlers{
		Auth:        handler.NewAuthHandler(authUC),
		Profile:     handler.NewProfileHandler(profileSvc),
		Jobs:        handler.NewJobsHandler(jobListUC, jobSvc),
		Submissions: handler.NewSubmissionsHandler(subSvc, c.Metrics.Submissions),
		Membership:  handler.NewMembershipHandler(membershipSvc, c.Metrics.Checkouts),
		Admin:       handler.NewAdminHandler(adminSvc, membershipSvc, c.Metrics.Reviews),
		Realtime:    ws.NewHandler(hub, c.JWT, c.Logger),
	}

	routes.NewRegistry(health, handlers, mw).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
