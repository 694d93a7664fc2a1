package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
)

const (
	retryBase     = 50 * time.Millisecond
	retryAttempts = 3
)

type digester interface {
	Digest(s string) string
}

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
	uid  uid.NumberID
	hash digester
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, id uid.NumberID, hash digester) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
		uid:  id,
		hash: hash,
	}
}

// - 23505 unique_violation → goerror.ErrConflict
// - 40001 serialization_failure, 40P01 deadlock_detected → retried
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// withRetry runs fn again on serialization failures and deadlocks.
func (s *DB) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(retryAttempts-1, retry.NewExponential(retryBase))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
