package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

type (
	VerifyInput struct {
		Code        string `validate:"required,otp_code"`
		OperationID string `validate:"required,max=100"`
	}
)

// Verify consumes a code. Exactly one caller among concurrent verifications
// of the same live code observes VerifySuccess. The returned error is only
// set for invalid input, throttling or infrastructure failures; the four
// outcomes are reported through VerifyOutcome.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (entity.VerifyOutcome, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	in.OperationID = strings.TrimSpace(in.OperationID)

	if err := s.validator.Validate(in); err != nil {
		return 0, goerror.NewInvalidInput(err)
	}

	caller := callerID(ctx)
	if s.repoLimiter != nil {
		blocked, err := s.repoLimiter.Blocked(ctx, caller, in.OperationID)
		if err != nil {
			slog.WarnContext(ctx, "failed to repo check verify attempts", "user_id", caller, "operation_id", in.OperationID, "error", err)
		}
		if blocked {
			return 0, goerror.NewBusinessCause(entity.ErrTooManyAttempts, "Too many failed verification attempts", goerror.CodeTooManyRequest)
		}
	}

	outcome, rec, err := s.verify(ctx, in)
	if err != nil {
		return 0, goerror.NewServer(err)
	}

	s.add(ctx, s.metrics.verified, 1, metric.WithAttributes(attribute.String("outcome", outcome.String())))

	switch outcome {
	case entity.VerifyNotFound:
		if s.repoLimiter != nil {
			if err := s.repoLimiter.RecordFailure(ctx, caller, in.OperationID); err != nil {
				slog.WarnContext(ctx, "failed to repo record verify failure", "user_id", caller, "operation_id", in.OperationID, "error", err)
			}
		}
	case entity.VerifySuccess:
		if s.repoLimiter != nil {
			if err := s.repoLimiter.Reset(ctx, caller, in.OperationID); err != nil {
				slog.WarnContext(ctx, "failed to repo reset verify failures", "user_id", caller, "operation_id", in.OperationID, "error", err)
			}
		}
		s.publish(ctx, eventVerified, newLifecycleEvent(*rec, s.clock.Now()))
	case entity.VerifyExpired:
		if rec != nil {
			s.publish(ctx, eventExpired, newLifecycleEvent(*rec, s.clock.Now()))
		}
	}

	return outcome, nil
}

func (s *Usecase) verify(ctx context.Context, in VerifyInput) (entity.VerifyOutcome, *entity.Record, error) {
	rec, err := s.repoDB.FindCandidate(ctx, in.Code, in.OperationID)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.VerifyNotFound, nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find candidate", "operation_id", in.OperationID, "error", err)
		return 0, nil, err
	}

	// A record already moved to a terminal state reports AlreadyTerminal even
	// past its deadline; Expired is reserved for the deadline observed now.
	if rec.Status != entity.StatusActive {
		return entity.VerifyAlreadyTerminal, rec, nil
	}

	// The record is only returned when this call performed the transition, so
	// the expired event is not published twice.
	if rec.ExpiredAt(s.clock.Now()) {
		ok, err := s.repoDB.TransitionIfStatus(ctx, rec.ID, entity.StatusActive, entity.StatusExpired)
		if err != nil {
			slog.WarnContext(ctx, "failed to repo mark record expired", "otp_id", rec.ID, "error", err)
		}
		if !ok {
			return entity.VerifyExpired, nil, nil
		}
		return entity.VerifyExpired, rec, nil
	}

	ok, err := s.repoDB.TransitionIfStatus(ctx, rec.ID, entity.StatusActive, entity.StatusUsed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark record used", "otp_id", rec.ID, "error", err)
		return 0, nil, err
	}
	if !ok {
		return entity.VerifyAlreadyTerminal, rec, nil
	}

	return entity.VerifySuccess, rec, nil
}
