package mq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/messaging"
	"github.com/shandysiswandi/gobite-otp/internal/shared/event"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishIssued(ctx context.Context, ev usecase.LifecycleEvent) error {
	return m.publish(ctx, "PublishIssued", event.OTPIssuedDestination, ev)
}

func (m *Messaging) PublishVerified(ctx context.Context, ev usecase.LifecycleEvent) error {
	return m.publish(ctx, "PublishVerified", event.OTPVerifiedDestination, ev)
}

func (m *Messaging) PublishExpired(ctx context.Context, ev usecase.LifecycleEvent) error {
	return m.publish(ctx, "PublishExpired", event.OTPExpiredDestination, ev)
}

func (m *Messaging) publish(ctx context.Context, span, dest string, ev usecase.LifecycleEvent) error {
	ctx, sp := m.ins.Tracer("otp.outbound.mq").Start(ctx, span)
	defer sp.End()

	msg := event.OTPLifecycleMessage{
		OTPID:       ev.OTPID,
		OwnerID:     ev.OwnerID,
		OperationID: ev.OperationID,
		At:          ev.At.UTC().Format(time.RFC3339Nano),
	}
	if ev.Channel.Valid() {
		msg.Channel = ev.Channel.String()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return err
	}

	out := messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(strconv.FormatInt(ev.OwnerID, 10)),
	}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		out.Headers = map[string]string{instrument.CorrelationHeader: cID}
	}

	if err := m.client.Publish(ctx, dest, out); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
