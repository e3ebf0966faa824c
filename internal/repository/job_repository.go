package repository

import (
	"context"
	"fmt"
	"strings"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/job"
	"skillbridge/internal/domain/membership"

	"github.com/google/uuid"
)

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobSelect = `SELECT j.id, j.title, j.description, j.instructions, j.payment_amount,
	j.difficulty, j.required_tier, j.estimated_time, j.deadline, j.submission_format,
	j.max_submissions, j.current_submissions, j.is_active, j.category_id, c.name,
	j.job_file_url, j.job_file_key, j.job_file_name, j.job_file_type,
	j.created_at, j.updated_at
	FROM jobs j
	LEFT JOIN job_categories c ON c.id = j.category_id`

func scanJob(row database.Row) (job.Job, error) {
	var (
		j                          job.Job
		fileURL, fileKey, fileName *string
		fileType                   *string
	)
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Instructions, &j.PaymentAmount,
		&j.Difficulty, &j.RequiredTier, &j.EstimatedTime, &j.Deadline, &j.SubmissionFormat,
		&j.MaxSubmissions, &j.CurrentSubmissions, &j.IsActive, &j.CategoryID, &j.CategoryName,
		&fileURL, &fileKey, &fileName, &fileType,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return job.Job{}, err
	}
	if fileURL != nil || fileKey != nil {
		j.File = &job.Attachment{
			URL:  deref(fileURL),
			Key:  deref(fileKey),
			Name: deref(fileName),
			Type: deref(fileType),
		}
	}
	return j, nil
}

func (r *PostgresJobRepository) List(ctx context.Context, f job.ListFilter) ([]job.Job, error) {
	limit, offset := clampPage(f.Limit, f.Offset, 50, 200)

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeDraft {
		where = append(where, "j.is_active")
	}
	if f.CategoryID != nil {
		where = append(where, "j.category_id = "+arg(*f.CategoryID))
	}
	if f.Difficulty != "" {
		where = append(where, "j.difficulty = "+arg(string(f.Difficulty)))
	}
	if f.RequiredTier != "" {
		where = append(where, "j.required_tier = "+arg(string(f.RequiredTier)))
	}
	if f.MaxTier != "" {
		where = append(where, "j.required_tier = ANY("+arg(tiersUpTo(f.MaxTier))+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, "(j.title ILIKE "+p+" OR j.description ILIKE "+p+")")
	}

	q := jobSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY j.created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	f := j.File
	if f == nil {
		f = &job.Attachment{}
	}
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO jobs (title, description, instructions, payment_amount, difficulty,
		                   required_tier, estimated_time, deadline, submission_format,
		                   max_submissions, is_active, category_id,
		                   job_file_url, job_file_key, job_file_name, job_file_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		j.Title, j.Description, j.Instructions, j.PaymentAmount, j.Difficulty,
		j.RequiredTier, j.EstimatedTime, j.Deadline, j.SubmissionFormat,
		j.MaxSubmissions, j.IsActive, j.CategoryID,
		nullable(f.URL), nullable(f.Key), nullable(f.Name), nullable(f.Type),
	).Scan(&id)
	if err != nil {
		return job.Job{}, mapCategoryFK(err)
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	f := j.File
	if f == nil {
		f = &job.Attachment{}
	}
	n, err := r.db.Exec(ctx,
		`UPDATE jobs
		 SET title = $2, description = $3, instructions = $4, payment_amount = $5,
		     difficulty = $6, required_tier = $7, estimated_time = $8, deadline = $9,
		     submission_format = $10, max_submissions = $11, is_active = $12,
		     category_id = $13, job_file_url = $14, job_file_key = $15,
		     job_file_name = $16, job_file_type = $17, updated_at = now()
		 WHERE id = $1`,
		j.ID, j.Title, j.Description, j.Instructions, j.PaymentAmount,
		j.Difficulty, j.RequiredTier, j.EstimatedTime, j.Deadline,
		j.SubmissionFormat, j.MaxSubmissions, j.IsActive,
		j.CategoryID, nullable(f.URL), nullable(f.Key),
		nullable(f.Name), nullable(f.Type),
	)
	if err != nil {
		return job.Job{}, mapCategoryFK(err)
	}
	if n == 0 {
		return job.Job{}, job.ErrNotFound
	}
	return r.GetByID(ctx, j.ID)
}

func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET is_active = $2, updated_at = now() WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE is_active`).Scan(&n)
	return n, err
}

func tiersUpTo(top membership.Tier) []string {
	out := make([]string, 0, 4)
	for _, t := range []membership.Tier{membership.TierNone, membership.TierRegular, membership.TierPro, membership.TierVIP} {
		if top.Covers(t) {
			out = append(out, string(t))
		}
	}
	return out
}
