package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/hash"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
)

func TestMapError(t *testing.T) {
	s := &DB{}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no rows", in: pgx.ErrNoRows, want: goerror.ErrNotFound},
		{name: "unique", in: &pgconn.PgError{Code: "23505"}, want: goerror.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.mapError(tt.in); !errors.Is(got, tt.want) && got != tt.want {
				t.Fatalf("mapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetry(t *testing.T) {
	s := &DB{}

	t.Run("serialization failure is retried", func(t *testing.T) {
		var calls int
		err := s.withRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Fatalf("withRetry() = %v after %d calls", err, calls)
		}
	})

	t.Run("attempts are bounded", func(t *testing.T) {
		var calls int
		err := s.withRetry(context.Background(), func(context.Context) error {
			calls++
			return &pgconn.PgError{Code: "40P01"}
		})
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || calls != retryAttempts {
			t.Fatalf("withRetry() = %v after %d calls", err, calls)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		var calls int
		_ = s.withRetry(context.Background(), func(context.Context) error {
			calls++
			return &pgconn.PgError{Code: "23505"}
		})
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("otp"),
		postgres.WithUsername("otp"),
		postgres.WithPassword("otp"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	h, err := hash.NewHMACSHA256("test-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	s := NewDB(pool, instrument.NewNoop(), sf, h)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() second run error = %v", err)
	}
	return s
}

func TestDB_Postgres(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	insert := func(t *testing.T, owner int64, op, code string, expires time.Time) entity.Record {
		t.Helper()
		rec, err := s.InsertRecord(ctx, entity.Record{
			OwnerID: owner, OperationID: op, Code: code, Channel: entity.ChannelEmail,
			Status: entity.StatusActive, CreatedAt: now, ExpiresAt: expires,
		})
		if err != nil {
			t.Fatalf("InsertRecord() error = %v", err)
		}
		return rec
	}

	t.Run("policy bootstrap and update", func(t *testing.T) {
		if _, err := s.GetPolicy(ctx); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("GetPolicy() before bootstrap error = %v", err)
		}
		if err := s.UpdatePolicy(ctx, entity.Policy{CodeLength: 7, LifetimeMinutes: 10}); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("UpdatePolicy() before bootstrap error = %v", err)
		}

		if err := s.EnsureDefaultPolicy(ctx, entity.DefaultPolicy()); err != nil {
			t.Fatalf("EnsureDefaultPolicy() error = %v", err)
		}
		if err := s.UpdatePolicy(ctx, entity.Policy{CodeLength: 7, LifetimeMinutes: 10}); err != nil {
			t.Fatalf("UpdatePolicy() error = %v", err)
		}
		// A second bootstrap must not reset the updated row.
		if err := s.EnsureDefaultPolicy(ctx, entity.DefaultPolicy()); err != nil {
			t.Fatalf("EnsureDefaultPolicy() error = %v", err)
		}

		p, err := s.GetPolicy(ctx)
		if err != nil || p.CodeLength != 7 || p.LifetimeMinutes != 10 {
			t.Fatalf("GetPolicy() = %+v, %v", p, err)
		}
	})

	t.Run("find candidate matches code and operation only", func(t *testing.T) {
		rec := insert(t, 11, "find-op", "123456", now.Add(5*time.Minute))

		got, err := s.FindCandidate(ctx, "123456", "find-op")
		if err != nil {
			t.Fatalf("FindCandidate() error = %v", err)
		}
		if got.ID != rec.ID || got.Code != "" || !got.ExpiresAt.Equal(rec.ExpiresAt) || got.Status != entity.StatusActive {
			t.Fatalf("FindCandidate() = %+v, want %+v without code", got, rec)
		}

		if _, err := s.FindCandidate(ctx, "654321", "find-op"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("wrong code error = %v", err)
		}
		if _, err := s.FindCandidate(ctx, "123456", "other-op"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("wrong operation error = %v", err)
		}

		// Terminal records are still returned.
		if ok, err := s.TransitionIfStatus(ctx, rec.ID, entity.StatusActive, entity.StatusUsed); !ok || err != nil {
			t.Fatalf("TransitionIfStatus() = %v, %v", ok, err)
		}
		got, err = s.FindCandidate(ctx, "123456", "find-op")
		if err != nil || got.Status != entity.StatusUsed {
			t.Fatalf("FindCandidate() after use = %+v, %v", got, err)
		}

		// A newer active duplicate wins over the used one.
		dup := insert(t, 11, "find-op", "123456", now.Add(5*time.Minute))
		got, _ = s.FindCandidate(ctx, "123456", "find-op")
		if got.ID != dup.ID {
			t.Fatalf("FindCandidate() = %d, want active duplicate %d", got.ID, dup.ID)
		}
	})

	t.Run("conditional transition has a single winner", func(t *testing.T) {
		rec := insert(t, 12, "race-op", "777777", now.Add(5*time.Minute))

		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				next := entity.StatusUsed
				if i%2 == 0 {
					next = entity.StatusExpired
				}
				ok, err := s.TransitionIfStatus(ctx, rec.ID, entity.StatusActive, next)
				if err != nil {
					t.Errorf("TransitionIfStatus() error = %v", err)
				}
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("winners = %d, want 1", wins.Load())
		}
	})

	t.Run("scan expired active", func(t *testing.T) {
		old := insert(t, 13, "scan-a", "111111", now.Add(-2*time.Minute))
		older := insert(t, 13, "scan-b", "222222", now.Add(-3*time.Minute))
		used := insert(t, 13, "scan-c", "333333", now.Add(-time.Minute))
		insert(t, 13, "scan-d", "444444", now.Add(time.Hour))
		if _, err := s.TransitionIfStatus(ctx, used.ID, entity.StatusActive, entity.StatusUsed); err != nil {
			t.Fatalf("TransitionIfStatus() error = %v", err)
		}

		got, err := s.ScanExpiredActive(ctx, now, 0)
		if err != nil {
			t.Fatalf("ScanExpiredActive() error = %v", err)
		}
		var ids []int64
		for _, r := range got {
			if r.OwnerID == 13 {
				ids = append(ids, r.ID)
			}
		}
		if len(ids) != 2 || ids[0] != older.ID || ids[1] != old.ID {
			t.Fatalf("scan ids = %v, want [%d %d]", ids, older.ID, old.ID)
		}

		limited, err := s.ScanExpiredActive(ctx, now, 1)
		if err != nil || len(limited) != 1 {
			t.Fatalf("limited scan = %v, %v", limited, err)
		}
	})

	t.Run("list and delete by owner", func(t *testing.T) {
		first := insert(t, 14, "own-a", "123123", now.Add(time.Minute))
		second := insert(t, 14, "own-b", "321321", now.Add(time.Minute))
		insert(t, 15, "own-c", "999999", now.Add(time.Minute))

		list, err := s.ListByOwner(ctx, 14)
		if err != nil || len(list) != 2 {
			t.Fatalf("ListByOwner() = %v, %v", list, err)
		}
		if list[0].ID != second.ID || list[1].ID != first.ID {
			t.Fatalf("ListByOwner() order = %d,%d", list[0].ID, list[1].ID)
		}

		n, err := s.DeleteByOwner(ctx, 14)
		if err != nil || n != 2 {
			t.Fatalf("DeleteByOwner() = %d, %v", n, err)
		}
		if left, _ := s.ListByOwner(ctx, 15); len(left) != 1 {
			t.Fatal("other owner's records were deleted")
		}
	})
}
