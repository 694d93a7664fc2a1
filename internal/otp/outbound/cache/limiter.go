package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = 15 * time.Minute
	keyPrefix          = "otp:verify:fail:"
)

// Limiter counts failed verifications per caller and operation in a fixed
// window, so one caller's failures never throttle another.
type Limiter struct {
	client      redis.UniversalClient
	ins         instrument.Instrumentation
	maxAttempts int64
	window      time.Duration
}

func NewLimiter(client redis.UniversalClient, ins instrument.Instrumentation, maxAttempts int, window time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}

	return &Limiter{
		client:      client,
		ins:         ins,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (l *Limiter) key(ownerID int64, operationID string) string {
	return keyPrefix + strconv.FormatInt(ownerID, 10) + ":" + operationID
}

func (l *Limiter) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return l.ins.Tracer("otp.outbound.cache").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Blocked reports whether the caller reached the failure limit on the operation.
func (l *Limiter) Blocked(ctx context.Context, ownerID int64, operationID string) (_ bool, err error) {
	ctx, span := l.startSpan(ctx, "Blocked")
	defer func() { endSpan(span, err) }()

	count, err := l.client.Get(ctx, l.key(ownerID, operationID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return count >= l.maxAttempts, nil
}

// RecordFailure counts one failed attempt. The window starts at the first failure.
func (l *Limiter) RecordFailure(ctx context.Context, ownerID int64, operationID string) (err error) {
	ctx, span := l.startSpan(ctx, "RecordFailure")
	defer func() { endSpan(span, err) }()

	key := l.key(ownerID, operationID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, key, l.window).Err()
	}

	return nil
}

// Reset clears the caller's failure counter of an operation.
func (l *Limiter) Reset(ctx context.Context, ownerID int64, operationID string) (err error) {
	ctx, span := l.startSpan(ctx, "Reset")
	defer func() { endSpan(span, err) }()

	return l.client.Del(ctx, l.key(ownerID, operationID)).Err()
}
