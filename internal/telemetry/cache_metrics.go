package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	cacheLookupCounter       metric.Int64Counter
	cacheInvalidationCounter metric.Int64Counter
	cacheErrorCounter        metric.Int64Counter
	cacheFillDuration        metric.Float64Histogram
)

// InitCacheMetrics registers the visible-notes cache instruments. Call it after SetupMetrics.
func InitCacheMetrics() error {
	meter := otel.Meter("notespace.cache")

	var err error
	cacheLookupCounter, err = meter.Int64Counter(
		"cache.visible_notes.lookups",
		metric.WithDescription("Visible-notes cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	cacheInvalidationCounter, err = meter.Int64Counter(
		"cache.visible_notes.invalidations",
		metric.WithDescription("Visible-notes cache entries invalidated"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return err
	}

	cacheErrorCounter, err = meter.Int64Counter(
		"cache.visible_notes.errors",
		metric.WithDescription("Cache store errors by operation"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	cacheFillDuration, err = meter.Float64Histogram(
		"cache.visible_notes.fill.duration",
		metric.WithDescription("Time spent computing the visible-notes list on a miss"),
		metric.WithUnit("ms"),
	)
	return err
}

func RecordCacheHit(ctx context.Context) {
	if cacheLookupCounter != nil {
		cacheLookupCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
	}
}

func RecordCacheMiss(ctx context.Context, fillMs float64) {
	if cacheLookupCounter != nil {
		cacheLookupCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss")))
	}
	if cacheFillDuration != nil {
		cacheFillDuration.Record(ctx, fillMs)
	}
}

func RecordCacheInvalidation(ctx context.Context, keys int) {
	if cacheInvalidationCounter != nil {
		cacheInvalidationCounter.Add(ctx, int64(keys))
	}
}

func RecordCacheError(ctx context.Context, op string) {
	if cacheErrorCounter != nil {
		cacheErrorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}
