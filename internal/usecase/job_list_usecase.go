package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"

	"github.com/google/uuid"
)

type JobListParams struct {
	CategoryID     *uuid.UUID
	Difficulty     string
	RequiredTier   string
	AccessibleOnly bool
	Search         string
	Limit          int
	Offset         int
}

type JobListItem struct {
	Job          job.Job
	IsAccessible bool
}

type JobListUsecase interface {
	ListJobs(ctx context.Context, userID uuid.UUID, params JobListParams) ([]JobListItem, error)
}

type JobList struct {
	jobs     job.Repository
	profiles profile.Repository
	cache    Cache
	logger   *log.Logger
}

func NewJobListUsecase(jobs job.Repository, profiles profile.Repository, cache Cache, logger *log.Logger) *JobList {
	return &JobList{jobs: jobs, profiles: profiles, cache: cache, logger: logger}
}

func (u *JobList) ListJobs(ctx context.Context, userID uuid.UUID, params JobListParams) ([]JobListItem, error) {
	limit := params.Limit
	if limit == 0 {
		limit = 20
	}
	if limit < 0 || limit > 50 {
		return nil, ErrInvalidInput
	}
	if params.Offset < 0 {
		return nil, ErrInvalidInput
	}
	params.Limit = limit

	f := job.ListFilter{
		CategoryID: params.CategoryID,
		Search:     strings.TrimSpace(params.Search),
		Limit:      limit,
		Offset:     params.Offset,
	}
	if params.Difficulty != "" {
		d, ok := job.ParseDifficulty(params.Difficulty)
		if !ok {
			return nil, ErrInvalidInput
		}
		f.Difficulty = d
	}
	if params.RequiredTier != "" {
		t, err := membership.ParseTier(params.RequiredTier)
		if err != nil {
			return nil, ErrInvalidInput
		}
		f.RequiredTier = t
	}

	tier := membership.TierNone
	p, err := u.profiles.GetByID(ctx, userID)
	switch {
	case err == nil:
		tier = p.MembershipTier
	case errors.Is(err, profile.ErrNotFound):
	default:
		return nil, ErrInternal
	}
	if params.AccessibleOnly {
		f.MaxTier = tier
	}

	jobs, err := u.cachedList(ctx, params, f)
	if err != nil {
		return nil, err
	}

	out := make([]JobListItem, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobListItem{Job: j, IsAccessible: tier.Covers(j.RequiredTier)})
	}
	return out, nil
}

func (u *JobList) cachedList(ctx context.Context, params JobListParams, f job.ListFilter) ([]job.Job, error) {
	if u.cache == nil {
		rows, err := u.jobs.List(ctx, f)
		if err != nil {
			return nil, ErrInternal
		}
		return rows, nil
	}

	cacheKey := JobsListCacheKey(params, string(f.MaxTier))
	lockKey := JobsListLockKey(cacheKey)

	var cached []job.Job
	if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		u.logf("[Jobs] Cache HIT: %s", cacheKey)
		return cached, nil
	}
	u.logf("[Jobs] Cache MISS: %s", cacheKey)

	lockAcquired := false
	ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", 30*time.Second)
	if err == nil && ok {
		lockAcquired = true
	} else if err == nil && !ok {
		jitter := time.Duration(time.Now().UnixNano()%201) * time.Millisecond
		select {
		case <-time.After(300*time.Millisecond + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			u.logf("[Jobs] Cache HIT after wait: %s", cacheKey)
			return cached, nil
		}
		u.logf("[Jobs] Lock wait fallback: %s", lockKey)
	}

	rows, err := u.jobs.List(ctx, f)
	if err != nil {
		if lockAcquired {
			_ = u.cache.Delete(ctx, lockKey)
		}
		return nil, ErrInternal
	}

	_ = u.cache.SetJSON(ctx, cacheKey, rows, 0)
	u.logf("[Jobs] Cache SET: %s", cacheKey)
	if lockAcquired {
		_ = u.cache.Delete(ctx, lockKey)
	}
	return rows, nil
}

func (u *JobList) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
