package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(client, instrument.NewNoop(), max, window), mr
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks after max failures", func(t *testing.T) {
		l, _ := newTestLimiter(t, 3, time.Minute)

		for i := range 3 {
			blocked, err := l.Blocked(ctx, 7, "op")
			if err != nil || blocked {
				t.Fatalf("attempt %d blocked = %v, %v", i, blocked, err)
			}
			if err := l.RecordFailure(ctx, 7, "op"); err != nil {
				t.Fatalf("RecordFailure() error = %v", err)
			}
		}

		blocked, err := l.Blocked(ctx, 7, "op")
		if err != nil || !blocked {
			t.Fatalf("Blocked() = %v, %v, want true", blocked, err)
		}
		if blocked, _ := l.Blocked(ctx, 7, "other"); blocked {
			t.Fatal("counter leaked across operations")
		}
		if blocked, _ := l.Blocked(ctx, 8, "op"); blocked {
			t.Fatal("counter leaked across callers")
		}
	})

	t.Run("window expires", func(t *testing.T) {
		l, mr := newTestLimiter(t, 1, time.Minute)

		if err := l.RecordFailure(ctx, 7, "op"); err != nil {
			t.Fatalf("RecordFailure() error = %v", err)
		}
		if ttl := mr.TTL(keyPrefix + "7:op"); ttl != time.Minute {
			t.Fatalf("ttl = %v, want 1m", ttl)
		}

		mr.FastForward(time.Minute + time.Second)
		if blocked, _ := l.Blocked(ctx, 7, "op"); blocked {
			t.Fatal("still blocked after the window")
		}
	})

	t.Run("reset", func(t *testing.T) {
		l, _ := newTestLimiter(t, 1, time.Minute)

		_ = l.RecordFailure(ctx, 7, "op")
		if err := l.Reset(ctx, 7, "op"); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if blocked, _ := l.Blocked(ctx, 7, "op"); blocked {
			t.Fatal("blocked after reset")
		}
	})

	t.Run("redis down", func(t *testing.T) {
		l, mr := newTestLimiter(t, 1, time.Minute)
		mr.Close()

		if _, err := l.Blocked(ctx, 7, "op"); err == nil {
			t.Fatal("Blocked() expected an error")
		}
		if err := l.RecordFailure(ctx, 7, "op"); err == nil {
			t.Fatal("RecordFailure() expected an error")
		}
	})
}
