package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/domain/transaction"
	"skillbridge/internal/domain/user"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var (
	ErrInvalidPayload  = errors.New("invalid job payload")
	ErrInvalidInput    = errors.New("invalid input")
	ErrJobNotFound     = errors.New("job not found")
	ErrCategoryMissing = errors.New("category not found")
	ErrCategoryExists  = errors.New("category already exists")
	ErrNotFound        = errors.New("submission not found")
	ErrAlreadyReviewed = errors.New("submission already reviewed")
	ErrInternal        = errors.New("internal error")
)

type FileStore interface {
	Upload(ctx context.Context, key, name string, r io.Reader, size int64, contentType string) (storage.Object, error)
	Remove(ctx context.Context, key string) error
}

type JobsCache interface {
	InvalidateJobs(ctx context.Context) error
}

type ReviewEnqueuer interface {
	EnqueueSubmissionReviewed(ctx context.Context, payload queue.SubmissionReviewedPayload) (*asynq.TaskInfo, error)
}

// JobInput mirrors the validated JSON document.
type JobInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Instructions     string     `json:"instructions"`
	PaymentAmount    float64    `json:"payment_amount"`
	Difficulty       string     `json:"difficulty"`
	RequiredTier     string     `json:"required_tier"`
	EstimatedTime    *string    `json:"estimated_time"`
	Deadline         *time.Time `json:"deadline"`
	SubmissionFormat *string    `json:"submission_format"`
	MaxSubmissions   *int       `json:"max_submissions"`
	IsActive         *bool      `json:"is_active"`
	CategoryID       *uuid.UUID `json:"category_id"`
}

type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Stats struct {
	Users               int               `json:"users"`
	ActiveJobs          int               `json:"active_jobs"`
	Submissions         submission.Counts `json:"submissions"`
	ApprovedPayouts     float64           `json:"approved_payouts"`
	SubscriptionRevenue float64           `json:"subscription_revenue"`
}

type Deps struct {
	Jobs         job.Repository
	Categories   job.CategoryRepository
	Submissions  submission.Repository
	Transactions transaction.Repository
	Users        user.Repository
	Files        FileStore
	Cache        JobsCache
	Queue        ReviewEnqueuer
	Logger       *log.Logger
}

type Service struct {
	deps Deps
	now  func() time.Time
}

func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Service{deps: deps, now: time.Now}
}

// DecodeJobPayload validates raw against the job schema and decodes it.
func DecodeJobPayload(raw []byte) (JobInput, error) {
	if err := ValidateJobPayload(raw); err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			return JobInput{}, err
		}
		return JobInput{}, ErrInternal
	}
	var in JobInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return JobInput{}, ErrInvalidPayload
	}
	return in, nil
}

func (in JobInput) apply(j *job.Job) error {
	d, ok := job.ParseDifficulty(in.Difficulty)
	if !ok {
		return ErrInvalidPayload
	}
	t, err := membership.ParseTier(in.RequiredTier)
	if err != nil {
		return ErrInvalidPayload
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Description) == "" {
		return ErrInvalidPayload
	}

	j.Title = title
	j.Description = in.Description
	j.Instructions = in.Instructions
	j.PaymentAmount = in.PaymentAmount
	j.Difficulty = d
	j.RequiredTier = t
	j.EstimatedTime = in.EstimatedTime
	j.Deadline = in.Deadline
	j.SubmissionFormat = in.SubmissionFormat
	j.MaxSubmissions = in.MaxSubmissions
	j.CategoryID = in.CategoryID
	if in.IsActive != nil {
		j.IsActive = *in.IsActive
	}
	return nil
}

// CreateJob stores a job. A failed attachment upload is logged and the job is
// created without it.
func (s *Service) CreateJob(ctx context.Context, in JobInput, file *FileInput) (job.Job, error) {
	j := job.Job{IsActive: true}
	if err := in.apply(&j); err != nil {
		return job.Job{}, err
	}

	if att, ok := s.uploadJobFile(ctx, file); ok {
		j.File = att
	}

	created, err := s.deps.Jobs.Create(ctx, j)
	if err != nil {
		if j.File != nil {
			_ = s.deps.Files.Remove(ctx, j.File.Key)
		}
		return job.Job{}, s.mapJobErr(err)
	}

	s.invalidate(ctx)
	s.deps.Logger.Printf("[Admin] job created id=%s title=%q", created.ID, created.Title)
	return created, nil
}

// UpdateJob replaces the job fields. A new attachment replaces the old one
// only when its upload succeeds.
func (s *Service) UpdateJob(ctx context.Context, id uuid.UUID, in JobInput, file *FileInput) (job.Job, error) {
	current, err := s.deps.Jobs.GetByID(ctx, id)
	if err != nil {
		return job.Job{}, s.mapJobErr(err)
	}

	j := current
	if err := in.apply(&j); err != nil {
		return job.Job{}, err
	}

	att, uploaded := s.uploadJobFile(ctx, file)
	if uploaded {
		j.File = att
	}

	updated, err := s.deps.Jobs.Update(ctx, j)
	if err != nil {
		if uploaded {
			_ = s.deps.Files.Remove(ctx, att.Key)
		}
		return job.Job{}, s.mapJobErr(err)
	}
	if uploaded && current.File != nil && current.File.Key != "" {
		if err := s.deps.Files.Remove(ctx, current.File.Key); err != nil {
			s.deps.Logger.Printf("[Admin] remove replaced job file failed key=%s err=%v", current.File.Key, err)
		}
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) DeleteJob(ctx context.Context, id uuid.UUID) error {
	current, err := s.deps.Jobs.GetByID(ctx, id)
	if err != nil {
		return s.mapJobErr(err)
	}
	if err := s.deps.Jobs.Delete(ctx, id); err != nil {
		return s.mapJobErr(err)
	}
	if current.File != nil && current.File.Key != "" && s.deps.Files != nil {
		if err := s.deps.Files.Remove(ctx, current.File.Key); err != nil {
			s.deps.Logger.Printf("[Admin] remove job file failed key=%s err=%v", current.File.Key, err)
		}
	}
	s.invalidate(ctx)
	s.deps.Logger.Printf("[Admin] job deleted id=%s", id)
	return nil
}

func (s *Service) SetJobActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.deps.Jobs.SetActive(ctx, id, active); err != nil {
		return s.mapJobErr(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (job.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 80 {
		return job.Category{}, ErrInvalidInput
	}
	c, err := s.deps.Categories.Create(ctx, name)
	if err != nil {
		if errors.Is(err, job.ErrCategoryExists) {
			return job.Category{}, ErrCategoryExists
		}
		return job.Category{}, ErrInternal
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *Service) ListSubmissions(ctx context.Context, status, search string, limit, offset int) ([]submission.Submission, error) {
	f, err := submissionFilter(status, search, limit, offset)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Submissions.List(ctx, f)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

// Review settles a pending submission and schedules the follow-up bookkeeping.
func (s *Service) Review(ctx context.Context, reviewerID, id uuid.UUID, status, feedback string) (submission.Submission, error) {
	st, err := submission.ParseStatus(status)
	if err != nil || st == submission.StatusPending {
		return submission.Submission{}, ErrInvalidInput
	}

	var fb *string
	if v := strings.TrimSpace(feedback); v != "" {
		fb = &v
	}

	reviewed, err := s.deps.Submissions.Review(ctx, submission.Review{
		ID:         id,
		Status:     st,
		Feedback:   fb,
		ReviewerID: reviewerID,
		At:         s.now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrNotFound):
			return submission.Submission{}, ErrNotFound
		case errors.Is(err, submission.ErrNotPending):
			return submission.Submission{}, ErrAlreadyReviewed
		default:
			return submission.Submission{}, ErrInternal
		}
	}

	if s.deps.Queue != nil {
		reviewedAt := s.now().UTC()
		if reviewed.ReviewedAt != nil {
			reviewedAt = *reviewed.ReviewedAt
		}
		_, err := s.deps.Queue.EnqueueSubmissionReviewed(ctx, queue.SubmissionReviewedPayload{
			SubmissionID: reviewed.ID,
			UserID:       reviewed.UserID,
			JobTitle:     reviewed.JobTitle,
			Status:       string(reviewed.Status),
			Amount:       reviewed.PaymentAmount,
			ReviewedAt:   reviewedAt,
		})
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			s.deps.Logger.Printf("[Admin] enqueue review task failed submission_id=%s err=%v", reviewed.ID, err)
		}
	}

	s.deps.Logger.Printf("[Admin] submission reviewed id=%s status=%s reviewer=%s", reviewed.ID, reviewed.Status, reviewerID)
	return reviewed, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		out Stats
		err error
	)
	if out.Users, err = s.deps.Users.Count(ctx); err != nil {
		return Stats{}, ErrInternal
	}
	if out.ActiveJobs, err = s.deps.Jobs.CountActive(ctx); err != nil {
		return Stats{}, ErrInternal
	}
	if out.Submissions, err = s.deps.Submissions.CountByStatus(ctx, nil); err != nil {
		return Stats{}, ErrInternal
	}
	if out.ApprovedPayouts, err = s.deps.Submissions.SumApproved(ctx); err != nil {
		return Stats{}, ErrInternal
	}
	if out.SubscriptionRevenue, err = s.deps.Transactions.SumCompletedSubscriptions(ctx); err != nil {
		return Stats{}, ErrInternal
	}
	return out, nil
}

func (s *Service) uploadJobFile(ctx context.Context, file *FileInput) (*job.Attachment, bool) {
	if file == nil || file.Reader == nil || file.Size <= 0 || s.deps.Files == nil {
		return nil, false
	}
	key := storage.JobFileKey(file.Name)
	obj, err := s.deps.Files.Upload(ctx, key, file.Name, file.Reader, file.Size, file.ContentType)
	if err != nil {
		s.deps.Logger.Printf("[Admin] job file upload failed name=%q err=%v", file.Name, err)
		return nil, false
	}
	return &job.Attachment{URL: obj.URL, Key: obj.Key, Name: file.Name, Type: obj.ContentType}, true
}

func (s *Service) invalidate(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.InvalidateJobs(ctx); err != nil {
		s.deps.Logger.Printf("[Admin] job cache invalidation failed err=%v", err)
	}
}

func (s *Service) mapJobErr(err error) error {
	switch {
	case errors.Is(err, job.ErrNotFound):
		return ErrJobNotFound
	case errors.Is(err, job.ErrCategoryNotFound):
		return ErrCategoryMissing
	default:
		s.deps.Logger.Printf("[Admin] job write failed err=%v", err)
		return ErrInternal
	}
}

func submissionFilter(status, search string, limit, offset int) (submission.ListFilter, error) {
	f := submission.ListFilter{Search: search, Limit: limit, Offset: offset}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != "all" {
		st, err := submission.ParseStatus(status)
		if err != nil {
			return submission.ListFilter{}, ErrInvalidInput
		}
		f.Status = st
	}
	return f, nil
}
