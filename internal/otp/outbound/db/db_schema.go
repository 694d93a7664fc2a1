package db

import (
	"context"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS otp_records (
	id           BIGINT PRIMARY KEY,
	owner_id     BIGINT       NOT NULL,
	operation_id VARCHAR(100) NOT NULL,
	code_digest  CHAR(64)     NOT NULL,
	channel      SMALLINT     NOT NULL,
	status       SMALLINT     NOT NULL,
	created_at   TIMESTAMPTZ  NOT NULL,
	expires_at   TIMESTAMPTZ  NOT NULL,
	updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_otp_records_lookup ON otp_records (operation_id, code_digest);
CREATE INDEX IF NOT EXISTS idx_otp_records_active_expiry ON otp_records (expires_at) WHERE status = 1;
CREATE INDEX IF NOT EXISTS idx_otp_records_owner ON otp_records (owner_id);

CREATE TABLE IF NOT EXISTS otp_policy (
	id               SMALLINT    PRIMARY KEY CHECK (id = 1),
	code_length      SMALLINT    NOT NULL CHECK (code_length BETWEEN 6 AND 8),
	lifetime_minutes SMALLINT    NOT NULL CHECK (lifetime_minutes BETWEEN 1 AND 15),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the ledger and policy tables when absent.
func (s *DB) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureSchema")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, schema)
	return s.mapError(err)
}

// EnsureDefaultPolicy inserts p as the single policy row unless one exists.
func (s *DB) EnsureDefaultPolicy(ctx context.Context, p entity.Policy) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureDefaultPolicy")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO otp_policy (id, code_length, lifetime_minutes) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING`,
		p.CodeLength, p.LifetimeMinutes)
	return s.mapError(err)
}
