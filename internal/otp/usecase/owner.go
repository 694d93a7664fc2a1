package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

type (
	OwnerInput struct {
		OwnerID int64 `validate:"required,gt=0"`
	}
)

// ListByOwner returns an owner's records, newest first. Codes are never included.
func (s *Usecase) ListByOwner(ctx context.Context, in OwnerInput) ([]entity.Record, error) {
	ctx, span := s.startSpan(ctx, "ListByOwner")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.authorize(ctx, objectRecords, actionRead); err != nil {
		return nil, err
	}

	recs, err := s.repoDB.ListByOwner(ctx, in.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list records by owner", "owner_id", in.OwnerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return recs, nil
}

// DeleteByOwner removes every record of an owner on an admin request.
func (s *Usecase) DeleteByOwner(ctx context.Context, in OwnerInput) (int64, error) {
	ctx, span := s.startSpan(ctx, "DeleteByOwner")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return 0, goerror.NewInvalidInput(err)
	}

	if err := s.authorize(ctx, objectRecords, actionDelete); err != nil {
		return 0, err
	}

	return s.purgeOwner(ctx, in.OwnerID)
}

// ConsumeUserDeleted purges the records of a removed user. Invalid payloads
// are dropped so the broker does not redeliver them.
func (s *Usecase) ConsumeUserDeleted(ctx context.Context, in OwnerInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserDeleted")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	_, err := s.purgeOwner(ctx, in.OwnerID)
	return err
}

func (s *Usecase) purgeOwner(ctx context.Context, ownerID int64) (int64, error) {
	n, err := s.repoDB.DeleteByOwner(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete records by owner", "owner_id", ownerID, "error", err)
		return 0, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp records deleted", "owner_id", ownerID, "count", n)
	return n, nil
}
