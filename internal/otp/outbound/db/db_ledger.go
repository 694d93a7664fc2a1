package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
)

const recordColumns = `id, owner_id, operation_id, channel, status, created_at, expires_at`

func scanRecord(row pgx.Row) (entity.Record, error) {
	var r entity.Record
	if err := row.Scan(&r.ID, &r.OwnerID, &r.OperationID, &r.Channel, &r.Status, &r.CreatedAt, &r.ExpiresAt); err != nil {
		return entity.Record{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.ExpiresAt = r.ExpiresAt.UTC()
	return r, nil
}

func collectRecords(rows pgx.Rows) ([]entity.Record, error) {
	defer rows.Close()

	items := make([]entity.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// InsertRecord assigns an id and persists rec. Only the code digest is stored.
func (s *DB) InsertRecord(ctx context.Context, rec entity.Record) (_ entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "InsertRecord")
	defer func() { s.endSpan(span, err) }()

	rec.ID = s.uid.Generate()
	_, err = s.conn.Exec(ctx,
		`INSERT INTO otp_records (`+recordColumns+`, code_digest) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.OwnerID, rec.OperationID, rec.Channel, rec.Status, rec.CreatedAt, rec.ExpiresAt, s.hash.Digest(rec.Code))
	if err != nil {
		return entity.Record{}, s.mapError(err)
	}

	return rec, nil
}

// FindCandidate returns the record matching code and operation regardless of
// status. Among duplicates an ACTIVE record wins, then the newest.
func (s *DB) FindCandidate(ctx context.Context, code, operationID string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "FindCandidate")
	defer func() { s.endSpan(span, err) }()

	r, err := scanRecord(s.conn.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM otp_records
		WHERE operation_id = $1 AND code_digest = $2
		ORDER BY (status = $3) DESC, created_at DESC, id DESC
		LIMIT 1`,
		operationID, s.hash.Digest(code), entity.StatusActive))
	if err != nil {
		return nil, s.mapError(err)
	}

	return &r, nil
}

// TransitionIfStatus moves record id from expected to next in one conditional
// write. It reports false when the stored status no longer equals expected.
func (s *DB) TransitionIfStatus(ctx context.Context, id int64, expected, next entity.Status) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "TransitionIfStatus")
	defer func() { s.endSpan(span, err) }()

	var moved bool
	err = s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.conn.Exec(ctx,
			`UPDATE otp_records SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
			id, expected, next)
		if err != nil {
			return err
		}
		moved = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, s.mapError(err)
	}

	return moved, nil
}

// ScanExpiredActive lists ACTIVE records whose deadline is before now, oldest
// deadline first. A limit of 0 means no limit.
func (s *DB) ScanExpiredActive(ctx context.Context, now time.Time, limit int) (_ []entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "ScanExpiredActive")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+recordColumns+` FROM otp_records
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC, id ASC
		LIMIT NULLIF($3::INT, 0)`,
		entity.StatusActive, now, limit)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := collectRecords(rows)
	return items, s.mapError(err)
}

func (s *DB) ListByOwner(ctx context.Context, ownerID int64) (_ []entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "ListByOwner")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+recordColumns+` FROM otp_records WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := collectRecords(rows)
	return items, s.mapError(err)
}

func (s *DB) DeleteByOwner(ctx context.Context, ownerID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteByOwner")
	defer func() { s.endSpan(span, err) }()

	var n int64
	err = s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.conn.Exec(ctx, `DELETE FROM otp_records WHERE owner_id = $1`, ownerID)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}
