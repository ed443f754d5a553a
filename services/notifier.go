// services/notifier.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/models"
	"github.com/redis/go-redis/v9"
)

// RunNotifier is told about every finished run. Delivery to people
// (mail, chat) is done by whoever consumes the stream.
type RunNotifier interface {
	NotifyRun(ctx context.Context, summary *models.RunSummary) error
}

// RedisNotifier appends run summaries to a Redis stream.
type RedisNotifier struct {
	client *redis.Client
	stream string
	log    logger.Logger
}

// NewRedisNotifier returns nil when client is nil.
func NewRedisNotifier(client *redis.Client, stream string, log logger.Logger) *RedisNotifier {
	if client == nil {
		return nil
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisNotifier{client: client, stream: stream, log: log}
}

// NewRunNotifier builds the notifier described by cfg, or nil when the
// Redis stream is disabled.
func NewRunNotifier(cfg config.RedisConfig, log logger.Logger) *RedisNotifier {
	if !cfg.Enabled || cfg.Address == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisNotifier(client, cfg.Stream, log)
}

// NotifyRun publishes one stream entry per run. Runs that found nothing new
// are published too so consumers can track liveness.
func (n *RedisNotifier) NotifyRun(ctx context.Context, summary *models.RunSummary) error {
	if n == nil || n.client == nil || summary == nil {
		return nil
	}

	records, err := json.Marshal(summary.NewRecords)
	if err != nil {
		return fmt.Errorf("marshal new records: %w", err)
	}

	id, err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]any{
			"run_id":         summary.RunID,
			"finished_at":    summary.FinishedAt.UTC().Format(time.RFC3339),
			"candidates":     summary.Candidates,
			"inserted":       summary.Inserted,
			"failed_sources": summary.FailedSources(),
			"new_records":    string(records),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}

	n.log.Info("Published run summary",
		logger.String("run_id", summary.RunID),
		logger.String("stream_id", id),
		logger.Int("inserted", summary.Inserted),
	)
	return nil
}

func (n *RedisNotifier) Close() error {
	if n == nil || n.client == nil {
		return nil
	}
	return n.client.Close()
}
