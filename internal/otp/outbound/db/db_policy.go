package db

import (
	"context"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

func (s *DB) GetPolicy(ctx context.Context) (_ *entity.Policy, err error) {
	ctx, span := s.startSpan(ctx, "GetPolicy")
	defer func() { s.endSpan(span, err) }()

	var p entity.Policy
	err = s.conn.QueryRow(ctx,
		`SELECT code_length, lifetime_minutes, updated_at FROM otp_policy WHERE id = 1`,
	).Scan(&p.CodeLength, &p.LifetimeMinutes, &p.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// UpdatePolicy replaces the values of the single policy row. It returns
// goerror.ErrNotFound when the row was never bootstrapped.
func (s *DB) UpdatePolicy(ctx context.Context, p entity.Policy) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePolicy")
	defer func() { s.endSpan(span, err) }()

	err = s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.conn.Exec(ctx,
			`UPDATE otp_policy SET code_length = $1, lifetime_minutes = $2, updated_at = now() WHERE id = 1`,
			p.CodeLength, p.LifetimeMinutes)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrNotFound
		}
		return nil
	})
	return s.mapError(err)
}
