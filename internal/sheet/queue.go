package sheet

import (
	"context"
	"encoding/json"

	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Queue hands result payloads to the sync worker through a Redis list. It
// implements session.Notifier: Notify returns immediately, the worker does
// the webhook POST off the request path.
type Queue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueue creates a queue-backed notifier.
func NewQueue(rdb *redis.Client, log zerolog.Logger) *Queue {
	return &Queue{
		rdb: rdb,
		log: log.With().Str("component", "sheet_queue").Logger(),
	}
}

// Notify enqueues one payload. Enqueue failures are logged and swallowed:
// remote sync must never alter the student-visible outcome.
func (q *Queue) Notify(ctx context.Context, payload model.SyncPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		q.log.Error().Err(err).Msg("Sync payload marshal failed")
		return
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.SyncResultsQueue, raw).Err(); err != nil {
		q.log.Error().Err(err).Msg("Sync enqueue failed")
	}
}
