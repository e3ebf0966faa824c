package app

import (
	"context"
	"errors"
	"log"
	"time"

	"skillbridge/internal/config"
	"skillbridge/internal/database"
	dbpostgres "skillbridge/internal/database/postgres"
	"skillbridge/internal/infrastructure/cache"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/storage"
	"skillbridge/internal/infrastructure/telemetry"
	"skillbridge/internal/pkg/jwt"
	"skillbridge/internal/repository"
	"skillbridge/internal/usecase"
	ucadmin "skillbridge/internal/usecase/admin"
	"skillbridge/internal/worker"
)

// Container owns the connections shared by the API, the worker and marketctl.
type Container struct {
	Config  config.Config
	Logger  *log.Logger
	DB      database.DB
	Cache   *cache.Redis
	JWT     jwt.Service
	Metrics *telemetry.Metrics

	Storage *storage.Client
	Queue   *queue.Client

	Users        *repository.PostgresUserRepository
	Profiles     *repository.PostgresProfileRepository
	Jobs         *repository.PostgresJobRepository
	Categories   *repository.PostgresCategoryRepository
	Submissions  *repository.PostgresSubmissionRepository
	Transactions *repository.PostgresTransactionRepository
}

func NewContainer(cfg config.Config) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := log.Default()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.VerifySecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
			cfg.JWT.VerifyExpiresIn,
		),
		Metrics: telemetry.NewMetrics(),

		Users:        repository.NewPostgresUserRepository(db),
		Profiles:     repository.NewPostgresProfileRepository(db),
		Jobs:         repository.NewPostgresJobRepository(db),
		Categories:   repository.NewPostgresCategoryRepository(db),
		Submissions:  repository.NewPostgresSubmissionRepository(db),
		Transactions: repository.NewPostgresTransactionRepository(db),
	}
	return c, nil
}

// InitStorage connects the object store. A missing bucket is created; an
// unreachable endpoint is logged and uploads will fail until it recovers.
func (c *Container) InitStorage(ctx context.Context) error {
	st, err := storage.NewClient(c.Config.Storage)
	if err != nil {
		return err
	}
	if err := st.EnsureBucket(ctx); err != nil {
		c.Logger.Printf("[Storage] ensure bucket failed bucket=%s err=%v", st.Bucket(), err)
	}
	c.Storage = st
	return nil
}

func (c *Container) InitQueue() {
	q := queue.NewClient(c.Config.Queue.RedisClientOpt(), c.Config.Queue.Name)
	q.CountEnqueued(c.Metrics.TasksEnqueued)
	c.Queue = q
}

func (c *Container) Roles() *usecase.Roles {
	return usecase.NewRoles(c.Users, c.Cache, c.Logger)
}

func (c *Container) AdminService() *ucadmin.Service {
	deps := ucadmin.Deps{
		Jobs:         c.Jobs,
		Categories:   c.Categories,
		Submissions:  c.Submissions,
		Transactions: c.Transactions,
		Users:        c.Users,
		Cache:        c.Cache,
		Logger:       c.Logger,
	}
	if c.Storage != nil {
		deps.Files = c.Storage
	}
	if c.Queue != nil {
		deps.Queue = c.Queue
	}
	return ucadmin.NewService(deps)
}

func (c *Container) Maintenance() worker.Maintenance {
	return worker.Maintenance{Profiles: c.Profiles, Transactions: c.Transactions, Logger: c.Logger}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Queue != nil {
		errs = append(errs, c.Queue.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
