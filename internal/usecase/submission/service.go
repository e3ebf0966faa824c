package submission

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/infrastructure/storage"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrNoMembership     = errors.New("an active membership is required to submit work")
	ErrTierTooLow       = errors.New("membership tier does not cover this job")
	ErrAlreadySubmitted = errors.New("you have already submitted work for this job")
	ErrEmptySubmission  = errors.New("submission needs a file or text content")
	ErrFileTooLarge     = errors.New("file exceeds the 100MB limit")
	ErrQuotaExceeded    = errors.New("daily submission limit reached")
	ErrJobFull          = errors.New("job is no longer accepting submissions")
	ErrUploadFailed     = errors.New("failed to upload file, please try submitting as text instead")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

type Uploader interface {
	Upload(ctx context.Context, key, name string, r io.Reader, size int64, contentType string) (storage.Object, error)
	Remove(ctx context.Context, key string) error
}

type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type SubmitInput struct {
	UserID  uuid.UUID
	JobID   uuid.UUID
	Content string
	File    *FileInput
}

type MineResult struct {
	Items  []submission.Submission
	Counts submission.Counts
}

type Service struct {
	jobs        job.Repository
	profiles    profile.Repository
	submissions submission.Repository
	uploader    Uploader
	maxBytes    int64
	logger      *log.Logger
	now         func() time.Time
}

func NewService(jobs job.Repository, profiles profile.Repository, submissions submission.Repository, uploader Uploader, maxBytes int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		jobs:        jobs,
		profiles:    profiles,
		submissions: submissions,
		uploader:    uploader,
		maxBytes:    maxBytes,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (submission.Submission, error) {
	if in.UserID == uuid.Nil || in.JobID == uuid.Nil {
		return submission.Submission{}, ErrInvalidInput
	}

	j, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return submission.Submission{}, ErrJobNotFound
		}
		return submission.Submission{}, ErrInternal
	}
	if !j.IsActive {
		return submission.Submission{}, ErrJobNotFound
	}

	p, err := s.profiles.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return submission.Submission{}, ErrNoMembership
		}
		return submission.Submission{}, ErrInternal
	}
	if p.MembershipTier == membership.TierNone || !p.MembershipTier.Valid() {
		return submission.Submission{}, ErrNoMembership
	}

	if !p.MembershipTier.Covers(j.RequiredTier) {
		return submission.Submission{}, ErrTierTooLow
	}

	exists, err := s.submissions.Exists(ctx, in.UserID, in.JobID)
	if err != nil {
		return submission.Submission{}, ErrInternal
	}
	if exists {
		return submission.Submission{}, ErrAlreadySubmitted
	}

	content := strings.TrimSpace(in.Content)
	hasFile := in.File != nil && in.File.Reader != nil && in.File.Size > 0
	if !hasFile && content == "" {
		return submission.Submission{}, ErrEmptySubmission
	}
	if hasFile && s.maxBytes > 0 && in.File.Size > s.maxBytes {
		return submission.Submission{}, ErrFileTooLarge
	}

	now := s.now()
	if p.RemainingToday(now) == 0 {
		return submission.Submission{}, ErrQuotaExceeded
	}
	if j.Full() {
		return submission.Submission{}, ErrJobFull
	}

	sub := submission.Submission{
		JobID:             j.ID,
		UserID:            in.UserID,
		SubmissionContent: content,
		PaymentAmount:     j.PaymentAmount,
		Status:            submission.StatusPending,
	}

	if hasFile {
		if s.uploader == nil {
			return submission.Submission{}, ErrUploadFailed
		}
		key := storage.SubmissionKey(in.UserID, in.File.Name)
		obj, err := s.uploader.Upload(ctx, key, in.File.Name, in.File.Reader, in.File.Size, in.File.ContentType)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return submission.Submission{}, ErrFileTooLarge
			}
			s.logger.Printf("[Submissions] upload failed user_id=%s job_id=%s err=%v", in.UserID, j.ID, err)
			return submission.Submission{}, ErrUploadFailed
		}
		sub.File = &submission.Attachment{
			URL:  obj.URL,
			Key:  obj.Key,
			Name: in.File.Name,
			Type: obj.ContentType,
			Size: obj.Size,
		}
		if sub.SubmissionContent == "" {
			sub.SubmissionContent = "File uploaded: " + in.File.Name
		}
	}

	created, err := s.submissions.Create(ctx, submission.NewSubmission{
		Submission: sub,
		DailyLimit: p.MembershipTier.DailyLimit(),
		Day:        membership.QuotaDay(now),
	})
	if err != nil {
		if sub.File != nil {
			if rmErr := s.uploader.Remove(ctx, sub.File.Key); rmErr != nil {
				s.logger.Printf("[Submissions] orphan cleanup failed key=%s err=%v", sub.File.Key, rmErr)
			}
		}
		switch {
		case errors.Is(err, submission.ErrAlreadySubmitted):
			return submission.Submission{}, ErrAlreadySubmitted
		case errors.Is(err, submission.ErrQuotaExceeded):
			return submission.Submission{}, ErrQuotaExceeded
		case errors.Is(err, submission.ErrJobFull):
			return submission.Submission{}, ErrJobFull
		default:
			s.logger.Printf("[Submissions] insert failed user_id=%s job_id=%s err=%v", in.UserID, j.ID, err)
			return submission.Submission{}, ErrInternal
		}
	}

	s.logger.Printf("[Submissions] created id=%s user_id=%s job_id=%s", created.ID, created.UserID, created.JobID)
	return created, nil
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, status string, limit, offset int) (MineResult, error) {
	f := submission.ListFilter{UserID: &userID, Limit: limit, Offset: offset}
	if status != "" && status != "all" {
		st, err := submission.ParseStatus(status)
		if err != nil {
			return MineResult{}, ErrInvalidInput
		}
		f.Status = st
	}

	items, err := s.submissions.List(ctx, f)
	if err != nil {
		return MineResult{}, ErrInternal
	}
	counts, err := s.submissions.CountByStatus(ctx, &userID)
	if err != nil {
		return MineResult{}, ErrInternal
	}
	return MineResult{Items: items, Counts: counts}, nil
}
