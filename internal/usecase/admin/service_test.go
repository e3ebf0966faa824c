package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"
)

type fakeJobs struct {
	job.Repository
	created   *job.Job
	current   job.Job
	createErr error
}

func (f *fakeJobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	if f.createErr != nil {
		return job.Job{}, f.createErr
	}
	j.ID = uuid.New()
	f.created = &j
	return j, nil
}

func (f *fakeJobs) GetByID(context.Context, uuid.UUID) (job.Job, error) { return f.current, nil }

func (f *fakeJobs) Update(_ context.Context, j job.Job) (job.Job, error) { return j, nil }

type fakeSubmissions struct {
	submission.Repository
	reviewed  *submission.Review
	reviewErr error
	rows      []submission.Submission
	pages     []submission.ListFilter
}

func (f *fakeSubmissions) Review(_ context.Context, r submission.Review) (submission.Submission, error) {
	if f.reviewErr != nil {
		return submission.Submission{}, f.reviewErr
	}
	f.reviewed = &r
	at := r.At
	return submission.Submission{ID: r.ID, UserID: uuid.New(), JobTitle: "Label images", Status: r.Status, PaymentAmount: 3, ReviewedAt: &at}, nil
}

func (f *fakeSubmissions) List(_ context.Context, lf submission.ListFilter) ([]submission.Submission, error) {
	f.pages = append(f.pages, lf)
	if lf.Offset >= len(f.rows) {
		return nil, nil
	}
	end := lf.Offset + lf.Limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[lf.Offset:end], nil
}

type fakeFiles struct {
	uploadErr error
	removed   []string
}

func (f *fakeFiles) Upload(_ context.Context, key, name string, _ io.Reader, _ int64, contentType string) (storage.Object, error) {
	if f.uploadErr != nil {
		return storage.Object{}, f.uploadErr
	}
	return storage.Object{Key: key, URL: "http://files/" + key, Name: name, ContentType: contentType}, nil
}

func (f *fakeFiles) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type fakeCache struct{ invalidated int }

func (f *fakeCache) InvalidateJobs(context.Context) error {
	f.invalidated++
	return nil
}

type fakeQueue struct {
	payloads []queue.SubmissionReviewedPayload
	err      error
}

func (f *fakeQueue) EnqueueSubmissionReviewed(_ context.Context, p queue.SubmissionReviewedPayload) (*asynq.TaskInfo, error) {
	f.payloads = append(f.payloads, p)
	return &asynq.TaskInfo{}, f.err
}

func newTestService(deps Deps) *Service {
	deps.Logger = log.New(&bytes.Buffer{}, "", 0)
	s := NewService(deps)
	s.now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestDecodeJobPayload(t *testing.T) {
	in, err := DecodeJobPayload([]byte(`{"title":"Label images","description":"Tag 20 photos","payment_amount":4.5,"difficulty":"easy","required_tier":"pro","max_submissions":10}`))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if in.Title != "Label images" || in.PaymentAmount != 4.5 || in.MaxSubmissions == nil || *in.MaxSubmissions != 10 {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestDecodeJobPayload_SchemaProblems(t *testing.T) {
	_, err := DecodeJobPayload([]byte(`{"title":"ab","description":"x","payment_amount":-1,"difficulty":"extreme","required_tier":"pro","color":"red"}`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	joined := strings.Join(verr.Problems, "\n")
	for _, want := range []string{"/title", "/payment_amount", "/difficulty"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected a problem for %s, got %v", want, verr.Problems)
		}
	}
}

func TestDecodeJobPayload_NotJSON(t *testing.T) {
	if _, err := DecodeJobPayload([]byte(`title=x`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestCreateJob(t *testing.T) {
	jobs := &fakeJobs{}
	files := &fakeFiles{}
	cache := &fakeCache{}
	s := newTestService(Deps{Jobs: jobs, Files: files, Cache: cache})

	in := JobInput{Title: "  Label images ", Description: "Tag photos", PaymentAmount: 2, Difficulty: "medium", RequiredTier: "vip"}
	created, err := s.CreateJob(context.Background(), in, &FileInput{Name: "brief.pdf", ContentType: "application/pdf", Size: 3, Reader: strings.NewReader("pdf")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.Title != "Label images" || created.RequiredTier != membership.TierVIP || !created.IsActive {
		t.Fatalf("unexpected job %+v", created)
	}
	if created.File == nil || !strings.HasPrefix(created.File.Key, "jobs/") {
		t.Fatalf("expected attachment, got %+v", created.File)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected job cache invalidation, got %d", cache.invalidated)
	}
}

func TestCreateJob_UploadFailureKeepsJob(t *testing.T) {
	jobs := &fakeJobs{}
	s := newTestService(Deps{Jobs: jobs, Files: &fakeFiles{uploadErr: errors.New("minio down")}})

	in := JobInput{Title: "Label images", Description: "Tag photos", Difficulty: "easy", RequiredTier: "regular"}
	created, err := s.CreateJob(context.Background(), in, &FileInput{Name: "brief.pdf", Size: 3, Reader: strings.NewReader("pdf")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.File != nil {
		t.Fatalf("expected job without attachment")
	}
}

func TestCreateJob_InsertFailureRemovesUpload(t *testing.T) {
	files := &fakeFiles{}
	s := newTestService(Deps{Jobs: &fakeJobs{createErr: job.ErrCategoryNotFound}, Files: files})

	in := JobInput{Title: "Label images", Description: "Tag photos", Difficulty: "easy", RequiredTier: "regular"}
	_, err := s.CreateJob(context.Background(), in, &FileInput{Name: "brief.pdf", Size: 3, Reader: strings.NewReader("pdf")})
	if !errors.Is(err, ErrCategoryMissing) {
		t.Fatalf("expected ErrCategoryMissing, got %v", err)
	}
	if len(files.removed) != 1 {
		t.Fatalf("expected orphan upload to be removed, got %v", files.removed)
	}
}

func TestUpdateJob_ReplacesAttachment(t *testing.T) {
	jobs := &fakeJobs{current: job.Job{ID: uuid.New(), Title: "Old", IsActive: true, File: &job.Attachment{Key: "jobs/old.pdf"}}}
	files := &fakeFiles{}
	s := newTestService(Deps{Jobs: jobs, Files: files})

	in := JobInput{Title: "New title", Description: "d", Difficulty: "hard", RequiredTier: "pro"}
	updated, err := s.UpdateJob(context.Background(), jobs.current.ID, in, &FileInput{Name: "new.pdf", Size: 3, Reader: strings.NewReader("pdf")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.File == nil || updated.File.Key == "jobs/old.pdf" {
		t.Fatalf("expected new attachment, got %+v", updated.File)
	}
	if len(files.removed) != 1 || files.removed[0] != "jobs/old.pdf" {
		t.Fatalf("expected old attachment removal, got %v", files.removed)
	}
}

func TestReview(t *testing.T) {
	subs := &fakeSubmissions{}
	q := &fakeQueue{}
	s := newTestService(Deps{Submissions: subs, Queue: q})
	reviewer := uuid.New()

	got, err := s.Review(context.Background(), reviewer, uuid.New(), "approved", "  good work ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Status != submission.StatusApproved {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if subs.reviewed.Feedback == nil || *subs.reviewed.Feedback != "good work" || subs.reviewed.ReviewerID != reviewer {
		t.Fatalf("unexpected review %+v", subs.reviewed)
	}
	if len(q.payloads) != 1 || q.payloads[0].Status != "approved" || q.payloads[0].Amount != 3 {
		t.Fatalf("unexpected enqueued payloads %+v", q.payloads)
	}
}

func TestReview_DuplicateTaskIsNotAnError(t *testing.T) {
	s := newTestService(Deps{Submissions: &fakeSubmissions{}, Queue: &fakeQueue{err: asynq.ErrTaskIDConflict}})
	if _, err := s.Review(context.Background(), uuid.New(), uuid.New(), "rejected", ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestReview_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status string
		repo   error
		want   error
	}{
		{name: "pending is not a verdict", status: "pending", want: ErrInvalidInput},
		{name: "unknown status", status: "maybe", want: ErrInvalidInput},
		{name: "missing", status: "approved", repo: submission.ErrNotFound, want: ErrNotFound},
		{name: "already reviewed", status: "approved", repo: submission.ErrNotPending, want: ErrAlreadyReviewed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService(Deps{Submissions: &fakeSubmissions{reviewErr: tc.repo}})
			if _, err := s.Review(context.Background(), uuid.New(), uuid.New(), tc.status, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestExportSubmissionsXLSX_PagesThroughEverything(t *testing.T) {
	rows := make([]submission.Submission, exportPageSize+3)
	for i := range rows {
		rows[i] = submission.Submission{
			ID:                uuid.New(),
			Status:            submission.StatusApproved,
			JobTitle:          "Label images",
			UserEmail:         "m@example.test",
			SubmissionContent: "done",
			PaymentAmount:     2,
			CreatedAt:         time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		}
	}
	subs := &fakeSubmissions{rows: rows}
	s := newTestService(Deps{Submissions: subs})

	b, n, err := s.ExportSubmissionsXLSX(context.Background(), "approved")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if n != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), n)
	}
	if len(subs.pages) != 2 || subs.pages[1].Offset != exportPageSize || subs.pages[0].Status != submission.StatusApproved {
		t.Fatalf("unexpected paging %+v", subs.pages)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Submissions", "A1")
	if header != "Submitted At" {
		t.Fatalf("unexpected header %q", header)
	}
	got, _ := f.GetCellValue("Submissions", "E2")
	if got != "m@example.test" {
		t.Fatalf("unexpected member email cell %q", got)
	}
}

func TestExportSubmissionsXLSX_InvalidStatus(t *testing.T) {
	s := newTestService(Deps{Submissions: &fakeSubmissions{}})
	if _, _, err := s.ExportSubmissionsXLSX(context.Background(), "archived"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
