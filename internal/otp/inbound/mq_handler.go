package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/messaging"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
	"github.com/shandysiswandi/gobite-otp/internal/shared/event"
)

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(instrument.CorrelationHeader); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	if h.uuid == nil {
		return ctx
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// UserDeleted purges the records of a removed user. Undecodable bodies are
// acknowledged and dropped.
func (h *MQHandler) UserDeleted(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("otp.inbound.mq").Start(ctx, "UserDeleted")
	defer span.End()

	slog.InfoContext(ctx, "consume: user deleted", "msg_body", string(msg.Body))

	var payload event.UserDeletedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user deleted", "msg_body", string(msg.Body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserDeleted(ctx, usecase.OwnerInput{OwnerID: payload.UserID}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user deleted", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
