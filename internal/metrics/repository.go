package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AggregationType defines how a stored metric was computed.
type AggregationType string

const (
	AggregationSum   AggregationType = "sum"
	AggregationAvg   AggregationType = "avg"
	AggregationCount AggregationType = "count"
)

// AggregatedMetric represents one pre-computed metric row.
type AggregatedMetric struct {
	MetricName      string
	MetricValue     float64
	AggregationType AggregationType
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

// Repository handles database operations for metrics
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new metrics repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveMetric stores an aggregated metric
func (r *Repository) SaveMetric(ctx context.Context, metric *AggregatedMetric) error {
	query := `
		INSERT INTO metrics_aggregated (
			metric_name, metric_value, aggregation_type, period_start, period_end
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (metric_name, aggregation_type, period_start)
		DO UPDATE SET
			metric_value = metrics_aggregated.metric_value + EXCLUDED.metric_value,
			period_end = EXCLUDED.period_end
	`

	_, err := r.db.Exec(ctx, query,
		metric.MetricName,
		metric.MetricValue,
		metric.AggregationType,
		metric.PeriodStart,
		metric.PeriodEnd,
	)

	return err
}

// GetMetrics retrieves metrics within a time range
func (r *Repository) GetMetrics(
	ctx context.Context,
	metricName string,
	aggregationType AggregationType,
	start, end time.Time,
) ([]*AggregatedMetric, error) {
	query := `
		SELECT metric_name, metric_value, aggregation_type, period_start, period_end
		FROM metrics_aggregated
		WHERE metric_name = $1
		  AND aggregation_type = $2
		  AND period_start >= $3
		  AND period_end <= $4
		ORDER BY period_start ASC
	`

	rows, err := r.db.Query(ctx, query, metricName, aggregationType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*AggregatedMetric
	for rows.Next() {
		metric := &AggregatedMetric{}
		err := rows.Scan(
			&metric.MetricName,
			&metric.MetricValue,
			&metric.AggregationType,
			&metric.PeriodStart,
			&metric.PeriodEnd,
		)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}

	return metrics, rows.Err()
}

// GetMetricValue collapses the rows of one metric over a window into a single
// value: sums for sum/count aggregations, the mean for avg.
func (r *Repository) GetMetricValue(
	ctx context.Context,
	metricName, aggregation string,
	windowStart, windowEnd time.Time,
) (float64, error) {
	query := `
		SELECT COALESCE(SUM(metric_value), 0), COUNT(*)
		FROM metrics_aggregated
		WHERE metric_name = $1
		  AND aggregation_type = $2
		  AND period_start >= $3
		  AND period_start < $4
	`

	var total float64
	var count int64
	err := r.db.QueryRow(ctx, query, metricName, aggregation, windowStart, windowEnd).
		Scan(&total, &count)
	if err != nil {
		return 0, err
	}

	if AggregationType(aggregation) == AggregationAvg && count > 0 {
		return total / float64(count), nil
	}
	return total, nil
}

// DeleteOldMetrics removes metrics older than the specified duration
func (r *Repository) DeleteOldMetrics(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM metrics_aggregated
		WHERE period_end < $1
	`

	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
