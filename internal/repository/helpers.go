package repository

import (
	"errors"
	"strings"

	"skillbridge/internal/domain/job"

	"github.com/jackc/pgx/v5/pgconn"
)

func clampPage(limit, offset, def, ceiling int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > ceiling {
		limit = ceiling
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const foreignKeyViolation = "23503"

func mapCategoryFK(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return job.ErrCategoryNotFound
	}
	return err
}
