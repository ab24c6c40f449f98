package aggregate

import (
	"sort"
	"time"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
)

// Engine computes the per-view aggregate tables. It is pure and
// stateless: identical records and parameters always produce an
// identical result, and empty input yields an empty table rather than
// an error.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Aggregate dispatches to the view's strategy. Records outside the
// view's category are ignored, so callers may pass an unfiltered batch.
func (e *Engine) Aggregate(
	view domain.View,
	granularity domain.Granularity,
	filter domain.Filter,
	records []domain.AlertRecord,
) (domain.AggregateResult, error) {
	switch view {
	case domain.ViewOverview:
		return e.overview(granularity, records), nil
	case domain.ViewMigration:
		return e.timeSeries(domain.ViewMigration, domain.CategoryMigration, granularity, records), nil
	case domain.ViewInfrastructure:
		return e.crossSection(domain.ViewInfrastructure, domain.CategoryInfrastructure, records), nil
	case domain.ViewBiometric:
		return e.biometric(granularity, filter, records), nil
	case domain.ViewLostGeneration:
		return e.crossSection(domain.ViewLostGeneration, domain.CategoryLostGeneration, records), nil
	default:
		return domain.AggregateResult{}, &domain.UnknownViewError{View: string(view)}
	}
}

// timeSeries buckets one category's records by time and reports counts
// and the summed value per bucket.
func (e *Engine) timeSeries(
	view domain.View,
	category domain.Category,
	granularity domain.Granularity,
	records []domain.AlertRecord,
) domain.AggregateResult {
	type acc struct {
		count float64
		total float64
	}
	buckets := make(map[string]*acc)
	for _, r := range records {
		if r.Category != category {
			continue
		}
		key := BucketKey(r.Timestamp, granularity)
		a, ok := buckets[key]
		if !ok {
			a = &acc{}
			buckets[key] = a
		}
		a.count++
		a.total += r.Value
	}

	rows := make([]domain.Row, 0, len(buckets))
	for _, key := range sortedKeys(buckets) {
		a := buckets[key]
		rows = append(rows, domain.Row{
			Bucket: key,
			Metrics: map[string]float64{
				domain.MetricCount:      a.count,
				domain.MetricValueTotal: a.total,
			},
		})
	}
	return domain.AggregateResult{View: view, Granularity: granularity, Rows: rows}
}

// crossSection groups one category's records by region code. Rows come
// out in lexicographic region order.
func (e *Engine) crossSection(
	view domain.View,
	category domain.Category,
	records []domain.AlertRecord,
) domain.AggregateResult {
	type acc struct {
		count float64
		total float64
	}
	regions := make(map[string]*acc)
	for _, r := range records {
		if r.Category != category {
			continue
		}
		a, ok := regions[r.Region]
		if !ok {
			a = &acc{}
			regions[r.Region] = a
		}
		a.count++
		a.total += r.Value
	}

	totalMetric := domain.MetricValueTotal
	if view == domain.ViewLostGeneration {
		totalMetric = domain.MetricCohortTotal
	}

	rows := make([]domain.Row, 0, len(regions))
	for _, region := range sortedKeys(regions) {
		a := regions[region]
		rows = append(rows, domain.Row{
			Bucket: region,
			Metrics: map[string]float64{
				domain.MetricCount: a.count,
				totalMetric:        a.total,
			},
		})
	}
	return domain.AggregateResult{View: view, Rows: rows}
}

// biometric emits every bucket across the covered range, including
// empty ones. A bucket with no records reports failure_rate 0 and is
// flagged insufficient rather than failing on the zero denominator.
// A record counts as failed when its metadata carries result=failed.
func (e *Engine) biometric(
	granularity domain.Granularity,
	filter domain.Filter,
	records []domain.AlertRecord,
) domain.AggregateResult {
	type acc struct {
		count  float64
		failed float64
	}
	buckets := make(map[string]*acc)
	var minTime, maxTime time.Time
	for _, r := range records {
		if r.Category != domain.CategoryBiometric {
			continue
		}
		key := BucketKey(r.Timestamp, granularity)
		a, ok := buckets[key]
		if !ok {
			a = &acc{}
			buckets[key] = a
		}
		a.count++
		if r.Metadata["result"] == "failed" {
			a.failed++
		}
		if minTime.IsZero() || r.Timestamp.Before(minTime) {
			minTime = r.Timestamp
		}
		if maxTime.IsZero() || r.Timestamp.After(maxTime) {
			maxTime = r.Timestamp
		}
	}

	// The filter's date range, when present, defines the covered span;
	// otherwise the data's own extent does.
	if filter.DateRange != nil {
		minTime = filter.DateRange.Start
		maxTime = filter.DateRange.End
	}

	rows := make([]domain.Row, 0, len(buckets))
	if minTime.IsZero() {
		return domain.AggregateResult{View: domain.ViewBiometric, Granularity: granularity, Rows: rows}
	}

	for t := BucketStart(minTime, granularity); !t.After(maxTime); t = NextBucket(t, granularity) {
		key := BucketKey(t, granularity)
		a := buckets[key]
		if a == nil {
			rows = append(rows, domain.Row{
				Bucket: key,
				Metrics: map[string]float64{
					domain.MetricCount:       0,
					domain.MetricFailed:      0,
					domain.MetricFailureRate: 0,
				},
				InsufficientData: true,
			})
			continue
		}
		rows = append(rows, domain.Row{
			Bucket: key,
			Metrics: map[string]float64{
				domain.MetricCount:       a.count,
				domain.MetricFailed:      a.failed,
				domain.MetricFailureRate: a.failed / a.count,
			},
		})
	}
	return domain.AggregateResult{View: domain.ViewBiometric, Granularity: granularity, Rows: rows}
}

// overview emits one row per category per time bucket across all four
// categories, ordered by bucket then category.
func (e *Engine) overview(granularity domain.Granularity, records []domain.AlertRecord) domain.AggregateResult {
	type key struct {
		bucket   string
		category domain.Category
	}
	counts := make(map[key]float64)
	for _, r := range records {
		counts[key{BucketKey(r.Timestamp, granularity), r.Category}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bucket != keys[j].bucket {
			return keys[i].bucket < keys[j].bucket
		}
		return keys[i].category < keys[j].category
	})

	rows := make([]domain.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, domain.Row{
			Bucket:   k.bucket,
			Category: k.category,
			Metrics:  map[string]float64{domain.MetricCount: counts[k]},
		})
	}
	return domain.AggregateResult{View: domain.ViewOverview, Granularity: granularity, Rows: rows}
}

// BucketKey renders the bucket label a timestamp falls into. Labels are
// zero-padded so lexicographic order matches chronological order.
func BucketKey(t time.Time, granularity domain.Granularity) string {
	switch granularity {
	case domain.GranularityMonth:
		return BucketStart(t, granularity).Format("2006-01")
	default:
		return BucketStart(t, granularity).Format("2006-01-02")
	}
}

// BucketStart truncates a timestamp to the start of its bucket. Weeks
// start on Monday.
func BucketStart(t time.Time, granularity domain.Granularity) time.Time {
	t = t.UTC()
	switch granularity {
	case domain.GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// NextBucket advances to the following bucket start.
func NextBucket(t time.Time, granularity domain.Granularity) time.Time {
	switch granularity {
	case domain.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case domain.GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
