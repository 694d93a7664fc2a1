package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
)

// SweepExpired moves every ACTIVE record past its deadline to EXPIRED,
// scanning in pages of the configured batch size until the backlog drains.
// A lost race (the record moved concurrently) counts as skipped and a
// transition error counts as failed; neither stops the batch. Only a scan
// failure on the first page is returned.
func (s *Usecase) SweepExpired(ctx context.Context) (entity.SweepResult, error) {
	ctx, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	now := s.clock.Now()
	batch := s.sweepBatch()

	var res entity.SweepResult
	for {
		recs, err := s.repoDB.ScanExpiredActive(ctx, now, batch)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo scan expired records", "error", err)
			if res.Scanned == 0 {
				return entity.SweepResult{}, err
			}
			break
		}

		page := s.expirePage(ctx, recs, now)
		res.Scanned += page.Scanned
		res.Expired += page.Expired
		res.Skipped += page.Skipped
		res.Failed += page.Failed

		// Failed records stay ACTIVE and would be rescanned forever, so a
		// page that expired nothing ends the tick.
		if len(recs) < batch || page.Expired == 0 || ctx.Err() != nil {
			break
		}
	}

	s.add(ctx, s.metrics.sweptExpired, int64(res.Expired))
	s.add(ctx, s.metrics.sweptFailures, int64(res.Failed))

	if res.Scanned > 0 {
		slog.InfoContext(ctx, "otp expiry sweep finished",
			"scanned", res.Scanned, "expired", res.Expired, "skipped", res.Skipped, "failed", res.Failed)
	}

	return res, nil
}

func (s *Usecase) expirePage(ctx context.Context, recs []entity.Record, now time.Time) entity.SweepResult {
	res := entity.SweepResult{Scanned: len(recs)}
	for _, rec := range recs {
		if ctx.Err() != nil {
			res.Failed += len(recs) - res.Expired - res.Skipped - res.Failed
			break
		}

		ok, err := s.repoDB.TransitionIfStatus(ctx, rec.ID, entity.StatusActive, entity.StatusExpired)
		switch {
		case err != nil:
			res.Failed++
			slog.WarnContext(ctx, "failed to repo expire record", "otp_id", rec.ID, "error", err)
		case !ok:
			res.Skipped++
		default:
			res.Expired++
			s.publish(ctx, eventExpired, newLifecycleEvent(rec, now))
		}
	}
	return res
}
