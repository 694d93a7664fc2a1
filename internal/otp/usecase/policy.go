package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

const (
	objectPolicy  = "otp.policy"
	objectRecords = "otp.records"

	actionRead   = "read"
	actionWrite  = "write"
	actionDelete = "delete"
)

type (
	UpdatePolicyInput struct {
		CodeLength      int
		LifetimeMinutes int
	}
)

func (s *Usecase) GetPolicy(ctx context.Context) (*entity.Policy, error) {
	ctx, span := s.startSpan(ctx, "GetPolicy")
	defer span.End()

	if err := s.authorize(ctx, objectPolicy, actionRead); err != nil {
		return nil, err
	}

	p, err := s.repoDB.GetPolicy(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusinessCause(entity.ErrPolicyMissing, "OTP policy is not configured", goerror.CodeUnavailable)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	return p, nil
}

// UpdatePolicy replaces code length and lifetime in place after bounds checks.
func (s *Usecase) UpdatePolicy(ctx context.Context, in UpdatePolicyInput) (*entity.Policy, error) {
	ctx, span := s.startSpan(ctx, "UpdatePolicy")
	defer span.End()

	if err := s.authorize(ctx, objectPolicy, actionWrite); err != nil {
		return nil, err
	}

	p := entity.Policy{
		CodeLength:      in.CodeLength,
		LifetimeMinutes: in.LifetimeMinutes,
		UpdatedAt:       s.clock.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.repoDB.UpdatePolicy(ctx, p)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusinessCause(entity.ErrPolicyMissing, "OTP policy is not configured", goerror.CodeUnavailable)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp policy updated", "code_length", p.CodeLength, "lifetime_minutes", p.LifetimeMinutes)

	return &p, nil
}
