package job

import (
	"context"
	"errors"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrForbidden = errors.New("membership tier does not cover this job")
	ErrNoFile    = errors.New("job has no attachment")
	ErrInternal  = errors.New("internal error")
)

type SubmissionChecker interface {
	Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
}

type FileLinker interface {
	PresignedGetURL(ctx context.Context, key, name string) (string, error)
}

// Detail is a job as seen by one member.
type Detail struct {
	Job            job.Job
	CanAccess      bool
	CanSubmit      bool
	HasSubmitted   bool
	RemainingToday int
}

type Service struct {
	jobs        job.Repository
	categories  job.CategoryRepository
	profiles    profile.Repository
	submissions SubmissionChecker
	files       FileLinker
	now         func() time.Time
}

func NewService(jobs job.Repository, categories job.CategoryRepository, profiles profile.Repository, submissions SubmissionChecker, files FileLinker) *Service {
	return &Service{
		jobs:        jobs,
		categories:  categories,
		profiles:    profiles,
		submissions: submissions,
		files:       files,
		now:         time.Now,
	}
}

func (s *Service) Categories(ctx context.Context) ([]job.Category, error) {
	out, err := s.categories.List(ctx)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (s *Service) Detail(ctx context.Context, userID, jobID uuid.UUID) (Detail, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, ErrInternal
	}
	if !j.IsActive {
		return Detail{}, ErrNotFound
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return Detail{}, ErrInternal
	}
	if errors.Is(err, profile.ErrNotFound) {
		p.MembershipTier = membership.TierNone
	}

	submitted, err := s.submissions.Exists(ctx, userID, jobID)
	if err != nil {
		return Detail{}, ErrInternal
	}

	d := Detail{
		Job:            j,
		CanAccess:      p.MembershipTier.Covers(j.RequiredTier),
		HasSubmitted:   submitted,
		RemainingToday: p.RemainingToday(s.now()),
	}
	d.CanSubmit = d.CanAccess &&
		p.MembershipTier != membership.TierNone &&
		!submitted &&
		!j.Full() &&
		d.RemainingToday != 0
	return d, nil
}

// FileURL returns where the job attachment can be downloaded. Only members
// whose tier covers the job may fetch it.
func (s *Service) FileURL(ctx context.Context, userID, jobID uuid.UUID) (string, error) {
	d, err := s.Detail(ctx, userID, jobID)
	if err != nil {
		return "", err
	}
	if !d.CanAccess {
		return "", ErrForbidden
	}
	f := d.Job.File
	if f == nil {
		return "", ErrNoFile
	}
	if f.Key == "" || s.files == nil {
		if f.URL == "" {
			return "", ErrNoFile
		}
		return f.URL, nil
	}

	link, err := s.files.PresignedGetURL(ctx, f.Key, f.Name)
	if err != nil {
		if f.URL != "" {
			return f.URL, nil
		}
		return "", ErrInternal
	}
	return link, nil
}
