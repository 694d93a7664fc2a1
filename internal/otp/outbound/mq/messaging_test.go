package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/messaging"
	"github.com/shandysiswandi/gobite-otp/internal/shared/event"
)

type recordPublisher struct {
	dest string
	msg  messaging.OutgoingMessage
	err  error
}

func (r *recordPublisher) Publish(_ context.Context, dest string, msg messaging.OutgoingMessage) error {
	r.dest, r.msg = dest, msg
	return r.err
}

func TestMessaging_Publish(t *testing.T) {
	ev := usecase.LifecycleEvent{
		OTPID:       1900000000000000001,
		OwnerID:     7,
		OperationID: "login",
		Channel:     entity.ChannelSMS,
		At:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		fn   func(m *Messaging, ctx context.Context) error
		dest string
	}{
		{name: "issued", fn: func(m *Messaging, ctx context.Context) error { return m.PublishIssued(ctx, ev) }, dest: event.OTPIssuedDestination},
		{name: "verified", fn: func(m *Messaging, ctx context.Context) error { return m.PublishVerified(ctx, ev) }, dest: event.OTPVerifiedDestination},
		{name: "expired", fn: func(m *Messaging, ctx context.Context) error { return m.PublishExpired(ctx, ev) }, dest: event.OTPExpiredDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordPublisher{}
			m := NewMessaging(pub, instrument.NewNoop())
			ctx := instrument.SetCorrelationID(context.Background(), "cid-1")

			if err := tt.fn(m, ctx); err != nil {
				t.Fatalf("publish error = %v", err)
			}
			if pub.dest != tt.dest {
				t.Fatalf("destination = %q, want %q", pub.dest, tt.dest)
			}
			if pub.msg.Headers[instrument.CorrelationHeader] != "cid-1" || string(pub.msg.Key) != "7" {
				t.Fatalf("headers = %v key = %q", pub.msg.Headers, pub.msg.Key)
			}

			var got event.OTPLifecycleMessage
			if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.OTPID != ev.OTPID || got.Channel != "sms" || got.At != "2026-03-01T10:00:00Z" {
				t.Fatalf("message = %+v", got)
			}
		})
	}

	t.Run("broker error", func(t *testing.T) {
		boom := errors.New("down")
		m := NewMessaging(&recordPublisher{err: boom}, instrument.NewNoop())
		if err := m.PublishIssued(context.Background(), ev); !errors.Is(err, boom) {
			t.Fatalf("error = %v", err)
		}
	})
}
