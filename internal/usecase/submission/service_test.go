package submission

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
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/infrastructure/storage"

	"github.com/google/uuid"
)

type fakeJobs struct {
	job.Repository
	j   job.Job
	err error
}

func (f fakeJobs) GetByID(context.Context, uuid.UUID) (job.Job, error) { return f.j, f.err }

type fakeProfiles struct {
	profile.Repository
	p   profile.Profile
	err error
}

func (f fakeProfiles) GetByID(context.Context, uuid.UUID) (profile.Profile, error) { return f.p, f.err }

type fakeSubmissions struct {
	submission.Repository
	exists    bool
	createErr error
	created   *submission.NewSubmission
	items     []submission.Submission
	counts    submission.Counts
	lastList  submission.ListFilter
}

func (f *fakeSubmissions) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.exists, nil
}

func (f *fakeSubmissions) Create(_ context.Context, n submission.NewSubmission) (submission.Submission, error) {
	f.created = &n
	if f.createErr != nil {
		return submission.Submission{}, f.createErr
	}
	out := n.Submission
	out.ID = uuid.New()
	return out, nil
}

func (f *fakeSubmissions) List(_ context.Context, lf submission.ListFilter) ([]submission.Submission, error) {
	f.lastList = lf
	return f.items, nil
}

func (f *fakeSubmissions) CountByStatus(context.Context, *uuid.UUID) (submission.Counts, error) {
	return f.counts, nil
}

type fakeUploader struct {
	err     error
	removed []string
	keys    []string
}

func (f *fakeUploader) Upload(_ context.Context, key, name string, _ io.Reader, size int64, contentType string) (storage.Object, error) {
	if f.err != nil {
		return storage.Object{}, f.err
	}
	f.keys = append(f.keys, key)
	return storage.Object{Key: key, URL: "http://files/" + key, Name: name, ContentType: contentType, Size: size}, nil
}

func (f *fakeUploader) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func activeJob(required membership.Tier) job.Job {
	return job.Job{ID: uuid.New(), Title: "Label images", PaymentAmount: 3.5, RequiredTier: required, IsActive: true}
}

func member(t membership.Tier, used int) profile.Profile {
	return profile.Profile{
		ID:                uuid.New(),
		MembershipTier:    t,
		MembershipStatus:  membership.StatusActive,
		DailyTasksUsed:    used,
		LastTaskResetDate: testNow,
	}
}

func newTestService(j fakeJobs, p fakeProfiles, subs *fakeSubmissions, up *fakeUploader) *Service {
	var uploader Uploader
	if up != nil {
		uploader = up
	}
	s := NewService(j, p, subs, uploader, 1024, log.New(&bytes.Buffer{}, "", 0))
	s.now = func() time.Time { return testNow }
	return s
}

func TestSubmit_Rules(t *testing.T) {
	cases := []struct {
		name    string
		job     fakeJobs
		profile fakeProfiles
		subs    *fakeSubmissions
		in      SubmitInput
		want    error
	}{
		{
			name: "unknown job",
			job:  fakeJobs{err: job.ErrNotFound},
			in:   SubmitInput{Content: "x"},
			want: ErrJobNotFound,
		},
		{
			name: "inactive job",
			job:  fakeJobs{j: job.Job{ID: uuid.New(), IsActive: false}},
			in:   SubmitInput{Content: "x"},
			want: ErrJobNotFound,
		},
		{
			name:    "no membership",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierNone, 0)},
			in:      SubmitInput{Content: "x"},
			want:    ErrNoMembership,
		},
		{
			name:    "tier below job",
			job:     fakeJobs{j: activeJob(membership.TierVIP)},
			profile: fakeProfiles{p: member(membership.TierPro, 0)},
			in:      SubmitInput{Content: "x"},
			want:    ErrTierTooLow,
		},
		{
			name:    "already submitted",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierRegular, 0)},
			subs:    &fakeSubmissions{exists: true},
			in:      SubmitInput{Content: "x"},
			want:    ErrAlreadySubmitted,
		},
		{
			name:    "blank content and no file",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierRegular, 0)},
			in:      SubmitInput{Content: "   "},
			want:    ErrEmptySubmission,
		},
		{
			name:    "file over limit",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierRegular, 0)},
			in:      SubmitInput{File: &FileInput{Name: "big.zip", Size: 4096, Reader: strings.NewReader("x")}},
			want:    ErrFileTooLarge,
		},
		{
			name:    "quota used up today",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierRegular, 4)},
			in:      SubmitInput{Content: "x"},
			want:    ErrQuotaExceeded,
		},
		{
			name: "job full",
			job: fakeJobs{j: func() job.Job {
				j := activeJob(membership.TierRegular)
				limit := 2
				j.MaxSubmissions = &limit
				j.CurrentSubmissions = 2
				return j
			}()},
			profile: fakeProfiles{p: member(membership.TierRegular, 0)},
			in:      SubmitInput{Content: "x"},
			want:    ErrJobFull,
		},
		{
			name:    "quota race lost at insert",
			job:     fakeJobs{j: activeJob(membership.TierRegular)},
			profile: fakeProfiles{p: member(membership.TierRegular, 3)},
			subs:    &fakeSubmissions{createErr: submission.ErrQuotaExceeded},
			in:      SubmitInput{Content: "x"},
			want:    ErrQuotaExceeded,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs := tc.subs
			if subs == nil {
				subs = &fakeSubmissions{}
			}
			s := newTestService(tc.job, tc.profile, subs, &fakeUploader{})
			tc.in.UserID = uuid.New()
			tc.in.JobID = uuid.New()

			_, err := s.Submit(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmit_YesterdayCounterDoesNotBlock(t *testing.T) {
	p := member(membership.TierRegular, 4)
	p.LastTaskResetDate = testNow.AddDate(0, 0, -1)
	subs := &fakeSubmissions{}
	s := newTestService(fakeJobs{j: activeJob(membership.TierRegular)}, fakeProfiles{p: p}, subs, nil)

	if _, err := s.Submit(context.Background(), SubmitInput{UserID: p.ID, JobID: uuid.New(), Content: "done"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSubmit_TextOnly(t *testing.T) {
	j := activeJob(membership.TierRegular)
	p := member(membership.TierPro, 1)
	subs := &fakeSubmissions{}
	s := newTestService(fakeJobs{j: j}, fakeProfiles{p: p}, subs, nil)

	got, err := s.Submit(context.Background(), SubmitInput{UserID: p.ID, JobID: j.ID, Content: "  tagged all  "})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Status != submission.StatusPending || got.SubmissionContent != "tagged all" || got.PaymentAmount != 3.5 {
		t.Fatalf("unexpected submission %+v", got)
	}
	if subs.created.DailyLimit != 6 {
		t.Fatalf("expected pro daily limit 6, got %d", subs.created.DailyLimit)
	}
	if !subs.created.Day.Equal(membership.QuotaDay(testNow)) {
		t.Fatalf("expected quota day %s, got %s", membership.QuotaDay(testNow), subs.created.Day)
	}
}

func TestSubmit_FileOnlyGetsPlaceholderContent(t *testing.T) {
	j := activeJob(membership.TierRegular)
	p := member(membership.TierRegular, 0)
	subs := &fakeSubmissions{}
	up := &fakeUploader{}
	s := newTestService(fakeJobs{j: j}, fakeProfiles{p: p}, subs, up)

	got, err := s.Submit(context.Background(), SubmitInput{
		UserID: p.ID,
		JobID:  j.ID,
		File:   &FileInput{Name: "work.pdf", ContentType: "application/pdf", Size: 10, Reader: strings.NewReader("0123456789")},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.SubmissionContent != "File uploaded: work.pdf" {
		t.Fatalf("unexpected content %q", got.SubmissionContent)
	}
	if got.File == nil || got.File.Name != "work.pdf" || got.File.Size != 10 {
		t.Fatalf("unexpected attachment %+v", got.File)
	}
	if len(up.keys) != 1 || !strings.HasPrefix(up.keys[0], "submissions/"+p.ID.String()+"/") {
		t.Fatalf("unexpected upload keys %v", up.keys)
	}
}

func TestSubmit_UploadFailure(t *testing.T) {
	j := activeJob(membership.TierRegular)
	p := member(membership.TierRegular, 0)
	subs := &fakeSubmissions{}
	s := newTestService(fakeJobs{j: j}, fakeProfiles{p: p}, subs, &fakeUploader{err: errors.New("connection refused")})

	_, err := s.Submit(context.Background(), SubmitInput{
		UserID:  p.ID,
		JobID:   j.ID,
		Content: "see file",
		File:    &FileInput{Name: "a.txt", Size: 1, Reader: strings.NewReader("a")},
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if subs.created != nil {
		t.Fatalf("expected no row to be written")
	}
}

func TestSubmit_InsertFailureRemovesUpload(t *testing.T) {
	j := activeJob(membership.TierRegular)
	p := member(membership.TierRegular, 0)
	subs := &fakeSubmissions{createErr: submission.ErrAlreadySubmitted}
	up := &fakeUploader{}
	s := newTestService(fakeJobs{j: j}, fakeProfiles{p: p}, subs, up)

	_, err := s.Submit(context.Background(), SubmitInput{
		UserID: p.ID,
		JobID:  j.ID,
		File:   &FileInput{Name: "a.txt", Size: 1, Reader: strings.NewReader("a")},
	})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if len(up.removed) != 1 || up.removed[0] != up.keys[0] {
		t.Fatalf("expected uploaded object to be removed, removed=%v", up.removed)
	}
}

func TestListMine(t *testing.T) {
	userID := uuid.New()
	subs := &fakeSubmissions{
		items:  []submission.Submission{{ID: uuid.New(), Status: submission.StatusApproved}},
		counts: submission.Counts{Total: 3, Approved: 1, Pending: 2},
	}
	s := newTestService(fakeJobs{}, fakeProfiles{}, subs, nil)

	res, err := s.ListMine(context.Background(), userID, "approved", 20, 0)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if subs.lastList.Status != submission.StatusApproved || *subs.lastList.UserID != userID {
		t.Fatalf("unexpected filter %+v", subs.lastList)
	}
	if len(res.Items) != 1 || res.Counts.Total != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := s.ListMine(context.Background(), userID, "archived", 20, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
