package repository

import (
	"context"
	"fmt"
	"strings"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/submission"

	"github.com/google/uuid"
)

type PostgresSubmissionRepository struct {
	db database.DB
}

func NewPostgresSubmissionRepository(db database.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{db: db}
}

const submissionSelect = `SELECT s.id, s.job_id, s.user_id, s.submission_content,
	s.file_url, s.file_key, s.file_name, s.file_type, s.file_size,
	s.payment_amount, s.status, s.admin_feedback, s.reviewed_at, s.reviewed_by,
	s.created_at, s.updated_at,
	COALESCE(j.title, ''), COALESCE(j.difficulty, ''), c.name, p.email, p.full_name
	FROM job_submissions s
	LEFT JOIN jobs j ON j.id = s.job_id
	LEFT JOIN job_categories c ON c.id = j.category_id
	JOIN profiles p ON p.id = s.user_id`

func scanSubmission(row database.Row) (submission.Submission, error) {
	var (
		s                          submission.Submission
		fileURL, fileKey, fileName *string
		fileType                   *string
		fileSize                   *int64
	)
	err := row.Scan(
		&s.ID, &s.JobID, &s.UserID, &s.SubmissionContent,
		&fileURL, &fileKey, &fileName, &fileType, &fileSize,
		&s.PaymentAmount, &s.Status, &s.AdminFeedback, &s.ReviewedAt, &s.ReviewedBy,
		&s.CreatedAt, &s.UpdatedAt,
		&s.JobTitle, &s.JobDifficulty, &s.JobCategory, &s.UserEmail, &s.UserFullName,
	)
	if err != nil {
		return submission.Submission{}, err
	}
	if fileURL != nil || fileKey != nil {
		s.File = &submission.Attachment{
			URL:  deref(fileURL),
			Key:  deref(fileKey),
			Name: deref(fileName),
			Type: deref(fileType),
		}
		if fileSize != nil {
			s.File.Size = *fileSize
		}
	}
	return s, nil
}

func (r *PostgresSubmissionRepository) Create(ctx context.Context, n submission.NewSubmission) (submission.Submission, error) {
	s := n.Submission
	var id uuid.UUID

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		affected, err := tx.Exec(ctx,
			`UPDATE profiles
			 SET daily_tasks_used = CASE WHEN last_task_reset_date < $2 THEN 1 ELSE daily_tasks_used + 1 END,
			     last_task_reset_date = $2,
			     updated_at = now()
			 WHERE id = $1
			   AND ($3 < 0 OR (CASE WHEN last_task_reset_date < $2 THEN 0 ELSE daily_tasks_used END) < $3)`,
			s.UserID, n.Day, n.DailyLimit,
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			return submission.ErrQuotaExceeded
		}

		affected, err = tx.Exec(ctx,
			`UPDATE jobs
			 SET current_submissions = current_submissions + 1, updated_at = now()
			 WHERE id = $1
			   AND is_active
			   AND (max_submissions IS NULL OR current_submissions < max_submissions)`,
			s.JobID,
		)
		if err != nil {
			return err
		}
		if affected == 0 {
			return submission.ErrJobFull
		}

		f := s.File
		if f == nil {
			f = &submission.Attachment{}
		}
		var size *int64
		if s.File != nil {
			size = &f.Size
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO job_submissions (job_id, user_id, submission_content,
			                              file_url, file_key, file_name, file_type, file_size,
			                              payment_amount, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			s.JobID, s.UserID, s.SubmissionContent,
			nullable(f.URL), nullable(f.Key), nullable(f.Name), nullable(f.Type), size,
			s.PaymentAmount, submission.StatusPending,
		).Scan(&id)
		if err != nil {
			if database.IsUniqueViolation(err, "job_submissions_job_id_user_id_key") {
				return submission.ErrAlreadySubmitted
			}
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE profiles SET pending_earnings = pending_earnings + $2 WHERE id = $1`,
			s.UserID, s.PaymentAmount,
		)
		return err
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresSubmissionRepository) Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_submissions WHERE user_id = $1 AND job_id = $2)`,
		userID, jobID,
	).Scan(&ok)
	return ok, err
}

func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	s, err := scanSubmission(r.db.QueryRow(ctx, submissionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, err
	}
	return s, nil
}

func (r *PostgresSubmissionRepository) List(ctx context.Context, f submission.ListFilter) ([]submission.Submission, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 50, 500)

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != nil {
		where = append(where, "s.user_id = "+arg(*f.UserID))
	}
	if f.Status != "" {
		where = append(where, "s.status = "+arg(string(f.Status)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, "(j.title ILIKE "+p+" OR p.email ILIKE "+p+" OR p.full_name ILIKE "+p+")")
	}

	q := submissionSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY s.created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]submission.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSubmissionRepository) CountByStatus(ctx context.Context, userID *uuid.UUID) (submission.Counts, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*)
		 FROM job_submissions
		 WHERE $1::uuid IS NULL OR user_id = $1
		 GROUP BY status`,
		userID,
	)
	if err != nil {
		return submission.Counts{}, err
	}
	defer rows.Close()

	var c submission.Counts
	for rows.Next() {
		var (
			st submission.Status
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return submission.Counts{}, err
		}
		c.Add(st, n)
	}
	if err := rows.Err(); err != nil {
		return submission.Counts{}, err
	}
	return c, nil
}

func (r *PostgresSubmissionRepository) Review(ctx context.Context, rv submission.Review) (submission.Submission, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var (
			userID uuid.UUID
			amount float64
		)
		err := tx.QueryRow(ctx,
			`UPDATE job_submissions
			 SET status = $2, admin_feedback = $3, reviewed_at = $4, reviewed_by = $5, updated_at = now()
			 WHERE id = $1 AND status = $6
			 RETURNING user_id, payment_amount`,
			rv.ID, rv.Status, rv.Feedback, rv.At, rv.ReviewerID, submission.StatusPending,
		).Scan(&userID, &amount)
		if err != nil {
			if !database.IsNoRows(err) {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM job_submissions WHERE id = $1)`, rv.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return submission.ErrNotFound
			}
			return submission.ErrNotPending
		}

		if rv.Status == submission.StatusApproved {
			_, err = tx.Exec(ctx,
				`UPDATE profiles
				 SET pending_earnings = GREATEST(pending_earnings - $2, 0),
				     approved_earnings = approved_earnings + $2,
				     total_earnings = total_earnings + $2,
				     tasks_completed = tasks_completed + 1,
				     updated_at = now()
				 WHERE id = $1`,
				userID, amount,
			)
		} else {
			_, err = tx.Exec(ctx,
				`UPDATE profiles
				 SET pending_earnings = GREATEST(pending_earnings - $2, 0), updated_at = now()
				 WHERE id = $1`,
				userID, amount,
			)
		}
		return err
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return r.GetByID(ctx, rv.ID)
}

func (r *PostgresSubmissionRepository) SumApproved(ctx context.Context) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(payment_amount), 0) FROM job_submissions WHERE status = $1`,
		submission.StatusApproved,
	).Scan(&sum)
	return sum, err
}
