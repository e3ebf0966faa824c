package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Payment   PaymentConfig
	Queue     QueueConfig
	Tracing   TracingConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	AppName       string
	Environment   string
	HTTPPort      string
	PublicBaseURL string
	// RequireVerifiedEmail blocks password sign-in until the signup link is used.
	RequireVerifiedEmail bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// DSN returns the keyword/value connection string understood by both pgx and lib/pq.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.DBHost),
		strings.TrimSpace(c.DBPort),
		strings.TrimSpace(c.DBUser),
		c.DBPassword,
		strings.TrimSpace(c.DBName),
		strings.TrimSpace(c.DBSSLMode),
	)
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	VerifySecret     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
	VerifyExpiresIn  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	PublicBaseURL  string
	MaxUploadBytes int64
	PresignTTL     time.Duration
}

type PaymentConfig struct {
	PayPalEmail string
	Currency    string
	BrandName   string
}

type QueueConfig struct {
	Name          string
	Concurrency   int
	MetricsPort   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func (q QueueConfig) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     q.RedisAddr,
		Password: q.RedisPassword,
		DB:       q.RedisDB,
	}
}

type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

type RateLimitConfig struct {
	Capacity int
	Window   time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	def := func(key, fallback string) string {
		if v := opt(key); v != "" {
			return v
		}
		return fallback
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		PublicBaseURL: def("APP_PUBLIC_URL", "http://localhost:5173"),

		RequireVerifiedEmail: envBool(opt("AUTH_REQUIRE_VERIFIED_EMAIL"), true),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                def("DB_HOST", "localhost"),
		DBPort:                def("DB_PORT", "5432"),
		DBName:                req("DB_NAME"),
		DBUser:                req("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             def("DB_SSL_MODE", "disable"),
		ConnectTimeout:        envDuration(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(envInt(opt("DB_POOL_MAX_CONNS"), 10)),
		PoolMinConns:          int32(envInt(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   envDuration(opt("DB_POOL_MAX_CONN_LIFETIME"), time.Hour),
		PoolMaxConnIdleTime:   envDuration(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 30*time.Minute),
		PoolHealthCheckPeriod: envDuration(opt("DB_POOL_HEALTH_CHECK_PERIOD"), time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		VerifySecret:     def("JWT_VERIFY_SECRET", opt("JWT_REFRESH_SECRET")+":verify"),
		AccessExpiresIn:  envDuration(opt("JWT_ACCESS_EXPIRES_IN"), time.Hour),
		RefreshExpiresIn: envDuration(opt("JWT_REFRESH_EXPIRES_IN"), 7*24*time.Hour),
		VerifyExpiresIn:  envDuration(opt("JWT_VERIFY_EXPIRES_IN"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Addr:     def("REDIS_ADDR", "localhost:6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       envInt(opt("REDIS_DB"), 0),
		CacheTTL: envDuration(opt("REDIS_TTL"), 10*time.Minute),
	}

	cfg.Storage = StorageConfig{
		Endpoint:       def("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:      def("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:      def("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:         def("MINIO_BUCKET", "skillbridge-media"),
		UseSSL:         envBool(opt("MINIO_USE_SSL"), false),
		PublicBaseURL:  opt("MINIO_PUBLIC_URL"),
		MaxUploadBytes: int64(envInt(opt("MAX_UPLOAD_BYTES"), 100*1024*1024)),
		PresignTTL:     envDuration(opt("MINIO_PRESIGN_TTL"), 15*time.Minute),
	}

	cfg.Payment = PaymentConfig{
		PayPalEmail: req("PAYPAL_EMAIL"),
		Currency:    def("PAYMENT_CURRENCY", "USD"),
		BrandName:   def("PAYMENT_BRAND", "SkillBridge"),
	}

	cfg.Queue = QueueConfig{
		Name:          def("ASYNC_QUEUE", "default"),
		Concurrency:   envInt(opt("WORKER_CONCURRENCY"), 5),
		MetricsPort:   def("WORKER_METRICS_PORT", "9091"),
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}

	cfg.Tracing = TracingConfig{
		Exporter:     def("TRACE_EXPORTER", "none"),
		OTLPEndpoint: opt("OTLP_ENDPOINT"),
		OTLPInsecure: envBool(opt("OTLP_INSECURE"), true),
	}

	cfg.RateLimit = RateLimitConfig{
		Capacity: envInt(opt("RATE_LIMIT_CAPACITY"), 30),
		Window:   envDuration(opt("RATE_LIMIT_WINDOW"), time.Minute),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
