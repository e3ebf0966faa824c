package job

import (
	"errors"
	"strings"
	"time"

	"skillbridge/internal/domain/membership"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("job not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Attachment is a file kept in object storage. Key is empty for files that
// were linked by URL only.
type Attachment struct {
	URL  string
	Key  string
	Name string
	Type string
}

type Job struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	Instructions       string
	PaymentAmount      float64
	Difficulty         Difficulty
	RequiredTier       membership.Tier
	EstimatedTime      *string
	Deadline           *time.Time
	SubmissionFormat   *string
	MaxSubmissions     *int
	CurrentSubmissions int
	IsActive           bool
	CategoryID         *uuid.UUID
	CategoryName       *string
	File               *Attachment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Full reports whether the job stopped accepting submissions.
func (j Job) Full() bool {
	return j.MaxSubmissions != nil && j.CurrentSubmissions >= *j.MaxSubmissions
}

type ListFilter struct {
	CategoryID   *uuid.UUID
	Difficulty   Difficulty
	RequiredTier membership.Tier
	// MaxTier limits results to jobs whose required tier ranks at or below it.
	MaxTier      membership.Tier
	Search       string
	IncludeDraft bool
	Limit        int
	Offset       int
}
