package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
	"github.com/talentotech/storefront/internal/storage"
)

const keyPrefix = "analytics_"

// Recorder keeps per-date visit and sale counters in the session KV.
// It is best-effort throughout: a corrupt blob reads as zeros and callers
// are expected to tolerate write failures.
type Recorder struct {
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(kv storage.KV, logger *zap.Logger) *Recorder {
	return &Recorder{kv: kv, logger: logger, now: time.Now}
}

// RecordVisit increments today's visit counter.
func (r *Recorder) RecordVisit(ctx context.Context) error {
	return r.increment(ctx, func(s *domain.DailyStats) { s.Visits++ })
}

// RecordSale increments today's sale counter.
func (r *Recorder) RecordSale(ctx context.Context) error {
	return r.increment(ctx, func(s *domain.DailyStats) { s.Sales++ })
}

// ForDate returns the counters stored for a calendar date. Missing or
// unreadable blobs come back as zeros.
func (r *Recorder) ForDate(ctx context.Context, t time.Time) domain.DailyStats {
	return r.read(ctx, dateKey(t))
}

// Today returns the counters for the current date.
func (r *Recorder) Today(ctx context.Context) domain.DailyStats {
	return r.ForDate(ctx, r.now())
}

func (r *Recorder) increment(ctx context.Context, apply func(*domain.DailyStats)) error {
	key := dateKey(r.now())
	stats := r.read(ctx, key)
	apply(&stats)

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, data)
}

func (r *Recorder) read(ctx context.Context, key string) domain.DailyStats {
	var stats domain.DailyStats

	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return stats
	}
	if err != nil {
		r.logger.Warn("Failed to read daily stats", zap.String("key", key), zap.Error(err))
		return stats
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		r.logger.Warn("Ignoring corrupt daily stats blob", zap.String("key", key), zap.Error(err))
		return domain.DailyStats{}
	}
	return stats
}

func dateKey(t time.Time) string {
	return keyPrefix + t.Format("2006-01-02")
}
