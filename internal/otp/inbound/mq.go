package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/config"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/messaging"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
	"github.com/shandysiswandi/gobite-otp/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.otp.consumer_names")
	concurrency := cfg.GetInt("modules.otp.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = 4
	}

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.UserDeletedConsumerOTP,
			topic:   event.UserDeletedDestination,
			handler: handler.UserDeleted,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enabled, consumer.name) {
			continue
		}

		ok := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithConsumerName(consumer.name),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
		if !ok {
			slog.ErrorContext(ctx, "failed to start consumer, goroutine limit reached", "consumer", consumer.name)
		}
	}
}
