package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("submission not found")
	ErrAlreadySubmitted = errors.New("job already submitted by user")
	ErrQuotaExceeded    = errors.New("daily submission limit reached")
	ErrJobFull          = errors.New("job is not accepting submissions")
	ErrNotPending       = errors.New("submission already reviewed")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown submission status %q", s)
	}
}

type Attachment struct {
	URL  string
	Key  string
	Name string
	Type string
	Size int64
}

type Submission struct {
	ID                uuid.UUID
	JobID             uuid.UUID
	UserID            uuid.UUID
	SubmissionContent string
	File              *Attachment
	PaymentAmount     float64
	Status            Status
	AdminFeedback     *string
	ReviewedAt        *time.Time
	ReviewedBy        *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Populated by list queries.
	JobTitle      string
	JobDifficulty string
	JobCategory   *string
	UserEmail     string
	UserFullName  *string
}

type ListFilter struct {
	UserID *uuid.UUID
	Status Status
	Search string
	Limit  int
	Offset int
}

type Counts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (c *Counts) Add(s Status, n int) {
	c.Total += n
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusApproved:
		c.Approved += n
	case StatusRejected:
		c.Rejected += n
	}
}

// NewSubmission carries what the quota-guarded insert needs.
type NewSubmission struct {
	Submission Submission
	// DailyLimit is negative for unlimited tiers.
	DailyLimit int
	Day        time.Time
}

type Review struct {
	ID         uuid.UUID
	Status     Status
	Feedback   *string
	ReviewerID uuid.UUID
	At         time.Time
}
