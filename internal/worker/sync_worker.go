package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/sheet"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const syncPollTimeout = 1 * time.Second

// SyncWorker drains the result sync queue and posts each payload to the
// spreadsheet webhook. One delivery attempt per payload: a failed POST is
// logged and the payload dropped, per the best-effort sync contract.
type SyncWorker struct {
	rdb    *redis.Client
	client *sheet.Client
	log    zerolog.Logger
}

// NewSyncWorker creates a new SyncWorker.
func NewSyncWorker(rdb *redis.Client, client *sheet.Client, log zerolog.Logger) *SyncWorker {
	return &SyncWorker{
		rdb:    rdb,
		client: client,
		log:    log.With().Str("component", "sync_worker").Logger(),
	}
}

// Start runs the consume loop until the context is cancelled.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info().Bool("webhook_enabled", w.client.Enabled()).Msg("SyncWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SyncWorker shutting down")
			return
		default:
			item, err := w.rdb.BLPop(ctx, syncPollTimeout, config.WorkerKey.SyncResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var payload model.SyncPayload
			if err := json.Unmarshal([]byte(item[1]), &payload); err != nil {
				w.log.Error().Err(err).Msg("Invalid sync payload")
				continue
			}

			if err := w.client.Submit(ctx, payload); err != nil {
				// No retry: the sheet is not a system of record.
				w.log.Warn().Err(err).Str("email", payload.Email).
					Str("exam", payload.ExamTitle).Msg("Sheet submission failed")
			}
		}
	}
}
