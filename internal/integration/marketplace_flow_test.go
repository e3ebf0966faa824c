package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/database"
	"skillbridge/internal/database/migration"
	dbpostgres "skillbridge/internal/database/postgres"
	"skillbridge/internal/domain/user"
	"skillbridge/internal/infrastructure/cache"
	"skillbridge/internal/infrastructure/storage"
	"skillbridge/internal/infrastructure/telemetry"
	"skillbridge/internal/pkg/jwt"
	"skillbridge/internal/repository"
	"skillbridge/internal/ws"
	"skillbridge/migrations"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sessionData struct {
	User struct {
		ID uuid.UUID `json:"id"`
	} `json:"user"`
	Session struct {
		AccessToken string `json:"access_token"`
	} `json:"session"`
}

type jobDetail struct {
	ID        uuid.UUID `json:"id"`
	CanAccess bool      `json:"can_access"`
	CanSubmit bool      `json:"can_submit"`
}

func TestIntegration_CheckoutConfirmSubmitReview(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	r := migration.Runner{Source: migrations.FS}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	c := newTestContainer(t, db)
	fiberApp := app.New(c.Config, c, ws.NewHub(c.Logger))

	suffix := uuid.NewString()[:8]
	memberEmail := "member-" + suffix + "@example.test"
	adminEmail := "admin-" + suffix + "@example.test"
	defer cleanupUsers(t, db, memberEmail, adminEmail)

	register(t, fiberApp, memberEmail)
	register(t, fiberApp, adminEmail)

	member := login(t, fiberApp, memberEmail)
	admin := login(t, fiberApp, adminEmail)

	if err := c.Roles().Grant(ctx, admin.User.ID, user.RoleAdmin); err != nil {
		t.Fatalf("grant admin: %v", err)
	}

	sr := call(t, fiberApp, http.MethodPost, "/api/v1/admin/jobs", admin.Session.AccessToken, map[string]any{
		"title":          "Integration job " + suffix,
		"description":    "Tag ten photos",
		"payment_amount": 4.5,
		"difficulty":     "easy",
		"required_tier":  "regular",
	})
	expectStatus(t, "create job", sr, http.StatusCreated)
	var created jobDetail
	mustUnmarshal(t, sr.Data, &created)
	defer func() { _, _ = db.Exec(context.Background(), `DELETE FROM jobs WHERE id = $1`, created.ID) }()

	sr = call(t, fiberApp, http.MethodGet, "/api/v1/jobs/"+created.ID.String(), member.Session.AccessToken, nil)
	expectStatus(t, "job detail before checkout", sr, http.StatusOK)
	var before jobDetail
	mustUnmarshal(t, sr.Data, &before)
	if before.CanAccess || before.CanSubmit {
		t.Fatalf("expected a member without a plan to be locked out, got %+v", before)
	}

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/jobs/"+created.ID.String()+"/submissions", member.Session.AccessToken, map[string]any{
		"content": "done",
	})
	expectStatus(t, "submit without plan", sr, http.StatusForbidden)

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/membership/checkout", member.Session.AccessToken, map[string]any{"tier": "regular"})
	expectStatus(t, "checkout", sr, http.StatusOK)
	var checkout struct {
		PaymentURL  string `json:"payment_url"`
		Transaction *struct {
			ID uuid.UUID `json:"id"`
		} `json:"transaction"`
	}
	mustUnmarshal(t, sr.Data, &checkout)
	if !strings.Contains(checkout.PaymentURL, "paypal.com") || checkout.Transaction == nil {
		t.Fatalf("unexpected checkout response %s", string(sr.Data))
	}

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/admin/transactions/"+checkout.Transaction.ID.String()+"/confirm", admin.Session.AccessToken, map[string]any{"status": "completed"})
	expectStatus(t, "confirm", sr, http.StatusOK)

	sr = call(t, fiberApp, http.MethodGet, "/api/v1/users/me", member.Session.AccessToken, nil)
	expectStatus(t, "profile", sr, http.StatusOK)
	var me struct {
		MembershipTier   string `json:"membership_tier"`
		MembershipStatus string `json:"membership_status"`
		DailyLimit       int    `json:"daily_limit"`
	}
	mustUnmarshal(t, sr.Data, &me)
	if me.MembershipTier != "regular" || me.MembershipStatus != "active" || me.DailyLimit != 4 {
		t.Fatalf("unexpected membership after confirm %+v", me)
	}

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/jobs/"+created.ID.String()+"/submissions", member.Session.AccessToken, map[string]any{
		"content": "ten photos tagged",
	})
	expectStatus(t, "submit", sr, http.StatusCreated)
	var sub struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	mustUnmarshal(t, sr.Data, &sub)
	if sub.Status != "pending" {
		t.Fatalf("expected pending submission, got %s", sub.Status)
	}

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/jobs/"+created.ID.String()+"/submissions", member.Session.AccessToken, map[string]any{
		"content": "again",
	})
	expectStatus(t, "duplicate submit", sr, http.StatusConflict)

	sr = call(t, fiberApp, http.MethodGet, "/api/v1/admin/stats", member.Session.AccessToken, nil)
	expectStatus(t, "member on admin route", sr, http.StatusForbidden)

	sr = call(t, fiberApp, http.MethodPost, "/api/v1/admin/submissions/"+sub.ID.String()+"/review", admin.Session.AccessToken, map[string]any{
		"status":   "approved",
		"feedback": "nice",
	})
	expectStatus(t, "review", sr, http.StatusOK)

	sr = call(t, fiberApp, http.MethodGet, "/api/v1/submissions", member.Session.AccessToken, nil)
	expectStatus(t, "my submissions", sr, http.StatusOK)
	var mine struct {
		Counts struct {
			Total    int `json:"total"`
			Approved int `json:"approved"`
		} `json:"counts"`
	}
	mustUnmarshal(t, sr.Data, &mine)
	if mine.Counts.Total != 1 || mine.Counts.Approved != 1 {
		t.Fatalf("unexpected counts %+v", mine.Counts)
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	usr := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || usr == "" {
		t.Skip("missing test DB env vars: set SKILLBRIDGE_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:         host,
		DBPort:         port,
		DBName:         name,
		DBUser:         usr,
		DBPassword:     pass,
		DBSSLMode:      ssl,
		ConnectTimeout: 5 * time.Second,
		PoolMaxConns:   4,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func newTestContainer(t *testing.T, db database.DB) *app.Container {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{AppName: "SkillBridge", Environment: "test", HTTPPort: "0", PublicBaseURL: "http://localhost:5173"},
		JWT: config.JWTConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			VerifySecret:     "test-verify-secret",
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
			VerifyExpiresIn:  time.Hour,
		},
		Redis:   config.RedisConfig{Addr: stringsOrDefault(os.Getenv("SKILLBRIDGE_TEST_REDIS_ADDR"), "127.0.0.1:1")},
		Storage: config.StorageConfig{Endpoint: "localhost:9000", Bucket: "skillbridge-test", MaxUploadBytes: 1 << 20, PresignTTL: time.Minute},
		Payment: config.PaymentConfig{PayPalEmail: "pay@example.test", Currency: "USD", BrandName: "SkillBridge"},
	}
	logger := log.New(io.Discard, "", 0)

	st, err := storage.NewClient(cfg.Storage)
	if err != nil {
		t.Fatalf("storage client: %v", err)
	}

	return &app.Container{
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
		Storage: st,

		Users:        repository.NewPostgresUserRepository(db),
		Profiles:     repository.NewPostgresProfileRepository(db),
		Jobs:         repository.NewPostgresJobRepository(db),
		Categories:   repository.NewPostgresCategoryRepository(db),
		Submissions:  repository.NewPostgresSubmissionRepository(db),
		Transactions: repository.NewPostgresTransactionRepository(db),
	}
}

func register(t *testing.T, a *fiber.App, email string) {
	t.Helper()

	sr := call(t, a, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"full_name": "Integration User",
	})
	expectStatus(t, "register "+email, sr, http.StatusCreated)
}

func login(t *testing.T, a *fiber.App, email string) sessionData {
	t.Helper()

	sr := call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "password123"})
	expectStatus(t, "login "+email, sr, http.StatusOK)

	var out sessionData
	mustUnmarshal(t, sr.Data, &out)
	if out.Session.AccessToken == "" || out.User.ID == uuid.Nil {
		t.Fatalf("login: missing session for %s", email)
	}
	return out
}

func call(t *testing.T, a *fiber.App, method, path, token string, body any) semanticResponse {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s request error: %v", method, path, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		sr.Status = resp.StatusCode
	}
	return sr
}

func expectStatus(t *testing.T, step string, sr semanticResponse, want int) {
	t.Helper()

	if sr.Status != want {
		t.Fatalf("%s: expected status=%d, got %d (message=%s)", step, want, sr.Status, sr.Message)
	}
}

func mustUnmarshal(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()

	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("data unmarshal error: %v (data=%s)", err, string(raw))
	}
}

func cleanupUsers(t *testing.T, db database.DB, emails ...string) {
	t.Helper()

	for _, email := range emails {
		_, _ = db.Exec(context.Background(), `DELETE FROM users WHERE email = $1`, email)
	}
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
