package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/idempotency"
)

type (
	IssueInput struct {
		OperationID    string `validate:"required,max=100"`
		Channel        string `validate:"required,oneof=email sms telegram file"`
		Email          string `validate:"omitempty,email,max=255"`
		Phone          string `validate:"omitempty,max=32"`
		TelegramChatID string `validate:"omitempty,max=64"`
		IdempotencyKey string `validate:"omitempty,max=128"`
	}

	IssueOutput struct {
		// Record.Code is set only for channels that echo the code.
		Record    entity.Record
		Delivered bool
	}
)

func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.OperationID = strings.TrimSpace(in.OperationID)
	in.Channel = strings.ToLower(strings.TrimSpace(in.Channel))
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.TelegramChatID = strings.TrimSpace(in.TelegramChatID)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ch := entity.ChannelFromString(in.Channel)
	if !ch.Valid() {
		return nil, goerror.NewInvalidInput(nil, "channel", "channel must be one of email, sms, telegram, file")
	}

	clm, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	to := entity.Recipient{
		OwnerID:        clm.UserID,
		OperationID:    in.OperationID,
		Email:          in.Email,
		Phone:          in.Phone,
		TelegramChatID: in.TelegramChatID,
	}

	if in.IdempotencyKey == "" || s.idem == nil {
		return s.issue(ctx, ch, to)
	}

	var out *IssueOutput
	key := "otp:issue:" + strconv.FormatInt(clm.UserID, 10) + ":" + in.IdempotencyKey
	err = s.idem.Exec(ctx, key, func(ctx context.Context) error {
		var ierr error
		out, ierr = s.issue(ctx, ch, to)
		return ierr
	})
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress), errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.WarnContext(ctx, "duplicate issue request", "user_id", clm.UserID, "idempotency_key", in.IdempotencyKey)
		return nil, goerror.NewBusinessCause(err, "Duplicate issue request", goerror.CodeConflict)
	case err != nil && out == nil:
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to run idempotent issue", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	case err != nil:
		// The code was issued; only the completion marker failed to persist.
		slog.WarnContext(ctx, "failed to mark idempotency key completed", "idempotency_key", in.IdempotencyKey, "error", err)
	}

	return out, nil
}

// issue reads the policy, mints a code, persists an ACTIVE record and then
// attempts delivery. Delivery never fails the issuance.
func (s *Usecase) issue(ctx context.Context, ch entity.Channel, to entity.Recipient) (*IssueOutput, error) {
	policy, err := s.repoDB.GetPolicy(ctx)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "otp policy not found")
		return nil, goerror.NewBusinessCause(entity.ErrPolicyMissing, "OTP policy is not configured", goerror.CodeUnavailable)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get policy", "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.gen.Generate(policy.CodeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "length", policy.CodeLength, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec, err := s.repoDB.InsertRecord(ctx, entity.Record{
		OwnerID:     to.OwnerID,
		OperationID: to.OperationID,
		Code:        code,
		Channel:     ch,
		Status:      entity.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(policy.Lifetime()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo insert record", "user_id", to.OwnerID, "operation_id", to.OperationID, "error", err)
		return nil, goerror.NewServer(errors.Join(entity.ErrPersistFailure, err))
	}

	delivered := s.deliver(ctx, ch, to, code)

	s.add(ctx, s.metrics.issued, 1, metric.WithAttributes(attribute.String("channel", ch.String())))
	s.publish(ctx, eventIssued, newLifecycleEvent(rec, now))

	rec.Code = ""
	if ch.EchoesCode() {
		rec.Code = code
	}

	return &IssueOutput{Record: rec, Delivered: delivered}, nil
}

func (s *Usecase) deliver(ctx context.Context, ch entity.Channel, to entity.Recipient, code string) bool {
	if s.repoChannel == nil {
		return false
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout())
	defer cancel()

	if err := s.repoChannel.Dispatch(dctx, ch, to, code); err != nil {
		s.add(ctx, s.metrics.dispatchFail, 1, metric.WithAttributes(attribute.String("channel", ch.String())))
		slog.WarnContext(ctx, "failed to deliver code", "channel", ch.String(), "user_id", to.OwnerID,
			"operation_id", to.OperationID, "error", err)
		return false
	}

	return true
}
