package inbound

import (
	"context"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
)

type ucConsumer interface {
	ConsumeUserDeleted(ctx context.Context, in usecase.OwnerInput) error
}

type ucJob interface {
	SweepExpired(ctx context.Context) (entity.SweepResult, error)
}

type uc interface {
	ucConsumer
	ucJob

	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (entity.VerifyOutcome, error)
	GetPolicy(ctx context.Context) (*entity.Policy, error)
	UpdatePolicy(ctx context.Context, in usecase.UpdatePolicyInput) (*entity.Policy, error)
	ListByOwner(ctx context.Context, in usecase.OwnerInput) ([]entity.Record, error)
	DeleteByOwner(ctx context.Context, in usecase.OwnerInput) (int64, error)
}
