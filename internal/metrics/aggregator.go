package metrics

import (
	"context"
	"log/slog"
	"time"
)

// retentionWindow is how long aggregated rows are kept before cleanup.
const retentionWindow = 90 * 24 * time.Hour

// Aggregator drains the collector on a fixed interval and persists the
// aggregated rows. Metric loss on shutdown is acceptable: the window that
// was being collected is simply dropped.
type Aggregator struct {
	collector *Collector
	repo      *Repository
	logger    *slog.Logger
	interval  time.Duration
	done      chan struct{}
}

// NewAggregator creates a new metrics aggregation worker
func NewAggregator(collector *Collector, repo *Repository, logger *slog.Logger, interval time.Duration) *Aggregator {
	if interval == 0 {
		interval = 1 * time.Minute
	}

	return &Aggregator{
		collector: collector,
		repo:      repo,
		logger:    logger,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start begins the aggregation worker
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("metrics aggregator started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("metrics aggregator stopped")
			return
		case <-a.done:
			a.logger.Info("metrics aggregator stopped")
			return
		case <-ticker.C:
			a.aggregate(ctx)
		}
	}
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
}

// aggregate flushes one collection window and cleans up expired rows.
func (a *Aggregator) aggregate(ctx context.Context) {
	a.logger.Debug("running metrics aggregation")

	now := time.Now().UTC()
	start := now.Add(-a.interval)
	snap := a.collector.Drain()

	for status, count := range snap.Validations {
		a.save(ctx, &AggregatedMetric{
			MetricName:      "validations_" + string(status),
			MetricValue:     float64(count),
			AggregationType: AggregationCount,
			PeriodStart:     start,
			PeriodEnd:       now,
		})
	}

	if snap.ScoreCount > 0 {
		a.save(ctx, &AggregatedMetric{
			MetricName:      "validation_score",
			MetricValue:     float64(snap.ScoreSum) / float64(snap.ScoreCount),
			AggregationType: AggregationAvg,
			PeriodStart:     start,
			PeriodEnd:       now,
		})
	}

	for code, count := range snap.SecuritySignals {
		a.save(ctx, &AggregatedMetric{
			MetricName:      "security_signal_" + string(code),
			MetricValue:     float64(count),
			AggregationType: AggregationCount,
			PeriodStart:     start,
			PeriodEnd:       now,
		})
	}

	for stage, total := range snap.StageDurations {
		count := snap.StageCounts[stage]
		if count == 0 {
			continue
		}
		a.save(ctx, &AggregatedMetric{
			MetricName:      "stage_duration_ms_" + stage,
			MetricValue:     float64(total.Milliseconds()) / float64(count),
			AggregationType: AggregationAvg,
			PeriodStart:     start,
			PeriodEnd:       now,
		})
	}

	deleted, err := a.repo.DeleteOldMetrics(ctx, retentionWindow)
	if err != nil {
		a.logger.Error("failed to delete old metrics", "error", err)
	} else if deleted > 0 {
		a.logger.Info("deleted old metrics", "count", deleted)
	}
}

func (a *Aggregator) save(ctx context.Context, metric *AggregatedMetric) {
	if err := a.repo.SaveMetric(ctx, metric); err != nil {
		a.logger.Error("failed to save metric", "name", metric.MetricName, "error", err)
	}
}
