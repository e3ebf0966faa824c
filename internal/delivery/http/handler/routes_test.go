package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/pkg/payment"
	"skillbridge/internal/usecase"
	ucadmin "skillbridge/internal/usecase/admin"
	ucmembership "skillbridge/internal/usecase/membership"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// newTestApp wires the error middleware and a signed-in member in front of
// the routes registered by mount.
func newTestApp(mount func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	userID := uuid.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals(middleware.CtxUserIDKey, userID)
		return c.Next()
	})
	mount(app)
	return app
}

type apiResult struct {
	status  int
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) apiResult {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := apiResult{status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return out
}

type recordingJobList struct {
	calls  int
	params usecase.JobListParams
}

func (r *recordingJobList) ListJobs(_ context.Context, _ uuid.UUID, p usecase.JobListParams) ([]usecase.JobListItem, error) {
	r.calls++
	r.params = p
	return nil, nil
}

func TestJobsHandler_ListQueryParams(t *testing.T) {
	categoryID := uuid.New()

	t.Run("category filter is parsed", func(t *testing.T) {
		list := &recordingJobList{}
		app := newTestApp(func(app *fiber.App) { NewJobsHandler(list, nil).RegisterRoutes(app) })

		res := doJSON(t, app, http.MethodGet, "/jobs?category_id="+categoryID.String()+"&difficulty=easy", "")
		if res.status != fiber.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", res.status, res.Message)
		}
		if list.params.CategoryID == nil || *list.params.CategoryID != categoryID {
			t.Fatalf("expected category %s, got %v", categoryID, list.params.CategoryID)
		}
		if list.params.Difficulty != "easy" || list.params.Limit != 20 {
			t.Fatalf("unexpected params %+v", list.params)
		}
	})

	t.Run("no category means no filter", func(t *testing.T) {
		list := &recordingJobList{}
		app := newTestApp(func(app *fiber.App) { NewJobsHandler(list, nil).RegisterRoutes(app) })

		if res := doJSON(t, app, http.MethodGet, "/jobs", ""); res.status != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", res.status)
		}
		if list.params.CategoryID != nil {
			t.Fatalf("expected nil category, got %v", list.params.CategoryID)
		}
	})

	t.Run("invalid category id", func(t *testing.T) {
		list := &recordingJobList{}
		app := newTestApp(func(app *fiber.App) { NewJobsHandler(list, nil).RegisterRoutes(app) })

		res := doJSON(t, app, http.MethodGet, "/jobs?category_id=design", "")
		if res.status != fiber.StatusBadRequest || res.Message != "Invalid category_id" {
			t.Fatalf("expected 400 Invalid category_id, got %d %q", res.status, res.Message)
		}
		if list.calls != 0 {
			t.Fatalf("expected list not to be called")
		}
	})

	t.Run("limit above fifty", func(t *testing.T) {
		app := newTestApp(func(app *fiber.App) {
			NewJobsHandler(usecase.NewJobListUsecase(nil, nil, nil, nil), nil).RegisterRoutes(app)
		})

		if res := doJSON(t, app, http.MethodGet, "/jobs?limit=51", ""); res.status != fiber.StatusBadRequest {
			t.Fatalf("expected 400, got %d", res.status)
		}
	})
}

func TestMembershipHandler_CheckoutUnknownPlan(t *testing.T) {
	svc := ucmembership.NewService(nil, nil, payment.NewPayPal("pay@skillbridge.test", "", ""), log.New(io.Discard, "", 0))
	app := newTestApp(func(app *fiber.App) { NewMembershipHandler(svc, nil).RegisterRoutes(app) })

	res := doJSON(t, app, http.MethodPost, "/checkout", `{"tier":"gold"}`)
	if res.status != fiber.StatusBadRequest || res.Message != "Unknown membership plan" {
		t.Fatalf("expected 400 Unknown membership plan, got %d %q", res.status, res.Message)
	}
}

type reviewedSubmissions struct {
	submission.Repository
	reviews int
}

func (r *reviewedSubmissions) Review(context.Context, submission.Review) (submission.Submission, error) {
	r.reviews++
	return submission.Submission{}, submission.ErrNotPending
}

func TestAdminHandler_ReviewAlreadyReviewed(t *testing.T) {
	subs := &reviewedSubmissions{}
	svc := ucadmin.NewService(ucadmin.Deps{Submissions: subs, Logger: log.New(io.Discard, "", 0)})
	app := newTestApp(func(app *fiber.App) { NewAdminHandler(svc, nil, nil).RegisterRoutes(app) })

	res := doJSON(t, app, http.MethodPost, "/submissions/"+uuid.NewString()+"/review", `{"status":"approved"}`)
	if res.status != fiber.StatusConflict || res.Message != "Submission already reviewed" {
		t.Fatalf("expected 409, got %d %q", res.status, res.Message)
	}
	if subs.reviews != 1 {
		t.Fatalf("expected one review attempt, got %d", subs.reviews)
	}
}

func TestAdminHandler_CreateJobRejectsSchemaViolations(t *testing.T) {
	app := newTestApp(func(app *fiber.App) { NewAdminHandler(nil, nil, nil).RegisterRoutes(app) })

	tests := []struct {
		name string
		body string
	}{
		{"missing required fields", `{"title":"Label photos"}`},
		{"unknown difficulty", `{"title":"Label photos","description":"d","payment_amount":5,"difficulty":"extreme","required_tier":"regular"}`},
		{"unexpected field", `{"title":"Label photos","description":"d","payment_amount":5,"difficulty":"easy","required_tier":"regular","bonus":1}`},
		{"not json", `title=Label`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := doJSON(t, app, http.MethodPost, "/jobs", tt.body)
			if res.status != fiber.StatusBadRequest || res.Message != "Invalid job payload" {
				t.Fatalf("expected 400 Invalid job payload, got %d %q", res.status, res.Message)
			}
		})
	}

	res := doJSON(t, app, http.MethodPost, "/jobs", `{"title":"Label photos"}`)
	var problems []string
	if err := json.Unmarshal(res.Data, &problems); err != nil || len(problems) == 0 {
		t.Fatalf("expected schema problems in data, got %s", string(res.Data))
	}
}
