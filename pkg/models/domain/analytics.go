package domain

// Metric names emitted by the aggregation engine. The set per view is
// part of the API contract consumed by the dashboard.
const (
	MetricCount       = "count"
	MetricValueTotal  = "value_total"
	MetricFailed      = "failed"
	MetricFailureRate = "failure_rate"
	MetricCohortTotal = "cohort_total"
)

// Row is one bucket of an aggregate. Bucket is a time bucket label
// (day/week/month start) for time-series views or a region code for
// cross-sectional ones. Category is populated only by the overview view,
// which emits one row per category per bucket.
type Row struct {
	Bucket           string
	Category         Category
	Metrics          map[string]float64
	InsufficientData bool
}

// AggregateResult is the ordered output of the aggregation engine.
// Rows are sorted ascending by bucket, then category; callers and tests
// depend on that ordering.
type AggregateResult struct {
	View        View
	Granularity Granularity
	Rows        []Row
}

// ForecastPoint is one projected period with a symmetric confidence
// interval around the point estimate.
type ForecastPoint struct {
	Period   string
	Estimate float64
	Lower    float64
	Upper    float64
}

// ForecastResult is the ordered projection produced by the forecast
// engine. Periods are strictly increasing and interval widths never
// shrink with distance.
type ForecastResult struct {
	Metric string
	Points []ForecastPoint
}
