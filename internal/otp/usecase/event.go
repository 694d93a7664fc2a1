package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
)

// LifecycleEvent describes a state change of one record. It never carries the code.
type LifecycleEvent struct {
	OTPID       int64
	OwnerID     int64
	OperationID string
	Channel     entity.Channel
	At          time.Time
}

func newLifecycleEvent(rec entity.Record, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		OTPID:       rec.ID,
		OwnerID:     rec.OwnerID,
		OperationID: rec.OperationID,
		Channel:     rec.Channel,
		At:          at,
	}
}

type eventKind string

const (
	eventIssued   eventKind = "otp.issued"
	eventVerified eventKind = "otp.verified"
	eventExpired  eventKind = "otp.expired"
)

// publish sends ev best-effort. The state change already committed, so a
// broker failure is only logged.
func (s *Usecase) publish(ctx context.Context, kind eventKind, ev LifecycleEvent) {
	if s.repoMessaging == nil {
		return
	}

	var err error
	switch kind {
	case eventIssued:
		err = s.repoMessaging.PublishIssued(ctx, ev)
	case eventVerified:
		err = s.repoMessaging.PublishVerified(ctx, ev)
	case eventExpired:
		err = s.repoMessaging.PublishExpired(ctx, ev)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to publish lifecycle event", "event", kind, "otp_id", ev.OTPID, "error", err)
	}
}
