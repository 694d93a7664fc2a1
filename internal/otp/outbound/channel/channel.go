// Package channel delivers codes over the configured delivery channels.
package channel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
)

const (
	emailSubject = "Your verification code"
	defaultSMSID = "OTPService"
)

// ErrChannelDisabled is returned for a known channel with no configured sender.
var ErrChannelDisabled = errors.New("delivery channel disabled")

// Sender delivers a code to one channel's address. Callers check the
// address precondition before calling Send.
type Sender interface {
	Send(ctx context.Context, to entity.Recipient, code string) error
}

// Dispatcher routes a code to the sender registered for a channel.
type Dispatcher struct {
	senders map[entity.Channel]Sender
	ins     instrument.Instrumentation
}

func NewDispatcher(ins instrument.Instrumentation) *Dispatcher {
	return &Dispatcher{senders: make(map[entity.Channel]Sender), ins: ins}
}

// Register binds s to ch, replacing any previous sender.
func (d *Dispatcher) Register(ch entity.Channel, s Sender) *Dispatcher {
	if ch.Valid() && s != nil {
		d.senders[ch] = s
	}
	return d
}

// Dispatch delivers code over ch. A missing address fails with
// entity.ErrMissingAddress before any I/O.
func (d *Dispatcher) Dispatch(ctx context.Context, ch entity.Channel, to entity.Recipient, code string) (err error) {
	ctx, span := d.ins.Tracer("otp.outbound.channel").Start(ctx, "Dispatch",
		trace.WithAttributes(attribute.String("channel", ch.String())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !ch.Valid() {
		return entity.ErrUnknownChannel
	}
	if _, ok := to.Address(ch); !ok {
		return fmt.Errorf("%w: %s", entity.ErrMissingAddress, ch)
	}

	s, ok := d.senders[ch]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChannelDisabled, ch)
	}

	return s.Send(ctx, to, code)
}
