package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/clock"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/config"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/jwt"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/otp"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/validator"
)

const (
	defaultDispatchTimeout = 10 * time.Second
	defaultSweepBatch      = 500
)

type repoDB interface {
	InsertRecord(ctx context.Context, rec entity.Record) (entity.Record, error)
	FindCandidate(ctx context.Context, code, operationID string) (*entity.Record, error)
	TransitionIfStatus(ctx context.Context, id int64, expected, next entity.Status) (bool, error)
	ScanExpiredActive(ctx context.Context, now time.Time, limit int) ([]entity.Record, error)
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]entity.Record, error)

	GetPolicy(ctx context.Context) (*entity.Policy, error)
	UpdatePolicy(ctx context.Context, p entity.Policy) error
}

type repoChannel interface {
	Dispatch(ctx context.Context, ch entity.Channel, to entity.Recipient, code string) error
}

type repoLimiter interface {
	Blocked(ctx context.Context, ownerID int64, operationID string) (bool, error)
	RecordFailure(ctx context.Context, ownerID int64, operationID string) error
	Reset(ctx context.Context, ownerID int64, operationID string) error
}

type repoMessaging interface {
	PublishIssued(ctx context.Context, ev LifecycleEvent) error
	PublishVerified(ctx context.Context, ev LifecycleEvent) error
	PublishExpired(ctx context.Context, ev LifecycleEvent) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Dependency struct {
	RepoDB        repoDB
	RepoChannel   repoChannel
	RepoLimiter   repoLimiter
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Enforcer      enforcer
	Generator     otp.Generator
	Config        config.Config
	Clock         clock.Clocker
	Validator     validator.Validator
	Instrument    instrument.Instrumentation
}

type metrics struct {
	issued        metric.Int64Counter
	verified      metric.Int64Counter
	dispatchFail  metric.Int64Counter
	sweptExpired  metric.Int64Counter
	sweptFailures metric.Int64Counter
}

type Usecase struct {
	repoDB        repoDB
	repoChannel   repoChannel
	repoLimiter   repoLimiter
	repoMessaging repoMessaging
	idem          idempotency.Idempotency
	enforcer      enforcer
	gen           otp.Generator
	cfg           config.Config
	clock         clock.Clocker
	validator     validator.Validator
	ins           instrument.Instrumentation
	metrics       metrics
}

func NewOTP(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoChannel:   dep.RepoChannel,
		repoLimiter:   dep.RepoLimiter,
		repoMessaging: dep.RepoMessaging,
		idem:          dep.Idempotency,
		enforcer:      dep.Enforcer,
		gen:           dep.Generator,
		cfg:           dep.Config,
		clock:         dep.Clock,
		validator:     dep.Validator,
		ins:           ins,
		metrics:       newMetrics(ins.Meter("otp.usecase")),
	}
}

func newMetrics(m metric.Meter) metrics {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Warn("failed to create counter", "name", name, "error", err)
		}
		return c
	}

	return metrics{
		issued:        counter("otp.issued", "Number of issued codes"),
		verified:      counter("otp.verify.outcome", "Number of verifications by outcome"),
		dispatchFail:  counter("otp.dispatch.failed", "Number of failed deliveries"),
		sweptExpired:  counter("otp.sweeper.expired", "Number of records expired by the sweeper"),
		sweptFailures: counter("otp.sweeper.failed", "Number of sweeper transitions that errored"),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) add(ctx context.Context, c metric.Int64Counter, n int64, opts ...metric.AddOption) {
	if c != nil && n > 0 {
		c.Add(ctx, n, opts...)
	}
}

func (s *Usecase) dispatchTimeout() time.Duration {
	if s.cfg != nil {
		if d := s.cfg.GetSecond("modules.otp.channel.timeout_seconds"); d > 0 {
			return d
		}
	}
	return defaultDispatchTimeout
}

func (s *Usecase) sweepBatch() int {
	if s.cfg != nil {
		if n := s.cfg.GetInt("modules.otp.sweeper.batch_size"); n > 0 {
			return n
		}
	}
	return defaultSweepBatch
}

func (s *Usecase) owner(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.UserID <= 0 {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

// callerID is the authenticated user id, or zero for internal callers.
func callerID(ctx context.Context) int64 {
	if clm := jwt.GetAuth(ctx); clm != nil {
		return clm.UserID
	}
	return 0
}

// authorize checks the caller's role against the RBAC policy for obj/act.
func (s *Usecase) authorize(ctx context.Context, obj, act string) error {
	clm, err := s.owner(ctx)
	if err != nil {
		return err
	}
	if s.enforcer == nil {
		return goerror.NewBusiness("access denied", goerror.CodeForbidden)
	}

	ok, err := s.enforcer.Enforce(clm.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce permission", "role", clm.Role, "object", obj, "action", act, "error", err)
		return goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "permission denied", "user_id", clm.UserID, "role", clm.Role, "object", obj, "action", act)
		return goerror.NewBusiness("access denied", goerror.CodeForbidden)
	}

	return nil
}
