package forecast

import (
	"math"
	"time"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
)

// Smoothing weights for Holt's linear method. Fixed so that identical
// history always produces an identical projection.
const (
	alpha = 0.5
	beta  = 0.3
	zCI   = 1.96
)

// Engine fits Holt double exponential smoothing over a historical
// aggregate and projects future periods with a symmetric confidence
// interval derived from one-step-ahead residual variance. The interval
// widens linearly with forecast distance.
type Engine struct {
	minHistory int
}

func NewEngine(minHistory int) *Engine {
	return &Engine{minHistory: minHistory}
}

// Forecast projects horizon periods beyond history. The history must
// carry the named metric in every row and its bucket keys must be
// strictly increasing and evenly spaced under the history's granularity.
func (e *Engine) Forecast(history domain.AggregateResult, metric string, horizon int) (domain.ForecastResult, error) {
	if horizon < 1 {
		return domain.ForecastResult{}, &domain.InvalidFilterError{
			Field:  "horizon",
			Value:  "",
			Reason: "horizon must be a positive integer",
		}
	}
	if len(history.Rows) < e.minHistory {
		return domain.ForecastResult{}, &domain.InsufficientHistoryError{
			Points:  len(history.Rows),
			Minimum: e.minHistory,
		}
	}

	granularity := history.Granularity
	if granularity == "" {
		granularity = domain.GranularityMonth
	}

	starts, values, err := seriesOf(history, metric, granularity)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	level, trend, sd := fit(values)

	last := starts[len(starts)-1]
	points := make([]domain.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		last = aggregate.NextBucket(last, granularity)
		estimate := level + float64(i)*trend
		margin := zCI * sd * float64(i)
		points = append(points, domain.ForecastPoint{
			Period:   aggregate.BucketKey(last, granularity),
			Estimate: estimate,
			Lower:    estimate - margin,
			Upper:    estimate + margin,
		})
	}

	return domain.ForecastResult{Metric: metric, Points: points}, nil
}

// seriesOf extracts the metric values and validates bucket spacing.
func seriesOf(
	history domain.AggregateResult,
	metric string,
	granularity domain.Granularity,
) ([]time.Time, []float64, error) {
	layout := "2006-01-02"
	if granularity == domain.GranularityMonth {
		layout = "2006-01"
	}

	starts := make([]time.Time, 0, len(history.Rows))
	values := make([]float64, 0, len(history.Rows))
	for i, row := range history.Rows {
		t, err := time.Parse(layout, row.Bucket)
		if err != nil {
			return nil, nil, &domain.IrregularSeriesError{
				Bucket: row.Bucket,
				Reason: "bucket key is not a " + string(granularity) + " bucket",
			}
		}
		if i > 0 {
			expected := aggregate.NextBucket(starts[i-1], granularity)
			if !t.Equal(expected) {
				return nil, nil, &domain.IrregularSeriesError{
					Bucket: row.Bucket,
					Reason: "expected bucket " + aggregate.BucketKey(expected, granularity),
				}
			}
		}
		v, ok := row.Metrics[metric]
		if !ok {
			return nil, nil, &domain.IrregularSeriesError{
				Bucket: row.Bucket,
				Reason: "metric " + metric + " missing from bucket",
			}
		}
		starts = append(starts, t)
		values = append(values, v)
	}
	return starts, values, nil
}

// fit runs Holt smoothing over the series and returns the final level,
// final trend and the standard deviation of one-step-ahead residuals.
// A zero-variance series yields sd 0 and a flat projection.
func fit(values []float64) (level, trend, sd float64) {
	level = values[0]
	trend = values[1] - values[0]

	var sumSq float64
	n := 0
	for t := 1; t < len(values); t++ {
		predicted := level + trend
		residual := values[t] - predicted
		sumSq += residual * residual
		n++

		prevLevel := level
		level = alpha*values[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	if n > 1 {
		sd = math.Sqrt(sumSq / float64(n-1))
	}
	return level, trend, sd
}
