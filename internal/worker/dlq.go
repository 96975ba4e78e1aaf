package worker

// Failed jobs are parked on a per-queue Redis list ("dead:{queue}") so an
// operator can inspect, replay, or discard them later. Parking is terminal:
// the pool never re-reads these lists on its own.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadLetterPrefix = "dead:"

// DeadJob is the parked form of a job the pool gave up on.
type DeadJob struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	DiedAt   time.Time       `json:"died_at"`
	Attempts int             `json:"attempts"`
}

// parkDeadJob moves a failed job onto its queue's dead-letter list.
// Logging is the only failure mode: a job we cannot park is a job lost.
func parkDeadJob(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	dead := DeadJob{
		Queue:    queue,
		Type:     jobType,
		Payload:  payload,
		Reason:   reason,
		DiedAt:   time.Now().UTC(),
		Attempts: attempts,
	}

	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter: marshal failed, job lost")
		return
	}
	if err := rdb.LPush(ctx, deadLetterPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter: push failed, job lost")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("job parked on dead-letter list")
}

// DeadJobCount reports how many jobs are parked for a queue. Surfaced on
// the health endpoint so stuck exports are visible without redis-cli.
func DeadJobCount(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterPrefix+queue).Result()
}
