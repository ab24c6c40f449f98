package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/alert-atlas/pkg/adapters"
	"github.com/de-tools/alert-atlas/pkg/cache"
	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/aggregate"
	"github.com/de-tools/alert-atlas/pkg/services/filter"
	"github.com/de-tools/alert-atlas/pkg/services/forecast"
	"github.com/de-tools/alert-atlas/pkg/services/scoring"
	alertstore "github.com/de-tools/alert-atlas/pkg/store/duckdb/alert"
)

// Pseudo-views used purely for cache partitioning; they are not
// addressable through the view routes.
const (
	forecastView        domain.View = "forecast"
	migrationAlertsView domain.View = "migration_alerts"
)

// MetricOverview selects the combined all-category count series for
// forecasting.
const MetricOverview = "overview"

// ForecastParams carries the raw forecast request.
type ForecastParams struct {
	Metric  string
	Horizon int
	Filter  filter.RawParams
}

// Settings tunes the controller. All values come from configuration.
type Settings struct {
	DefaultGranularity  domain.Granularity
	DefaultHorizon      int
	FetchTimeout        time.Duration
	MigrationThresholds scoring.Thresholds
	MigrationAlertLimit int
}

// StoreFailureRecorder counts failed dataset fetches. Implemented by
// pkg/metrics; may be nil.
type StoreFailureRecorder interface {
	StoreFailure()
}

// Controller is the engine facade the API gateway talks to. It wires
// resolve -> cache -> fetch -> aggregate/forecast and owns no state
// beyond the result cache.
type Controller interface {
	GetView(ctx context.Context, view string, params filter.RawParams) (domain.AggregateResult, error)
	GetForecast(ctx context.Context, params ForecastParams) (domain.ForecastResult, error)
	GetMigrationAlerts(ctx context.Context, month string) ([]scoring.Alert, error)
	RefreshDataset(ctx context.Context)
}

type controller struct {
	resolver   *filter.Resolver
	store      alertstore.Store
	aggregator *aggregate.Engine
	forecaster *forecast.Engine
	results    *cache.Cache
	failures   StoreFailureRecorder
	settings   Settings
}

func NewController(
	resolver *filter.Resolver,
	store alertstore.Store,
	aggregator *aggregate.Engine,
	forecaster *forecast.Engine,
	results *cache.Cache,
	failures StoreFailureRecorder,
	settings Settings,
) Controller {
	if settings.MigrationAlertLimit == 0 {
		settings.MigrationAlertLimit = 10
	}
	return &controller{
		resolver:   resolver,
		store:      store,
		aggregator: aggregator,
		forecaster: forecaster,
		results:    results,
		failures:   failures,
		settings:   settings,
	}
}

func (c *controller) GetView(
	ctx context.Context,
	view string,
	params filter.RawParams,
) (domain.AggregateResult, error) {
	v, err := parseView(view)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	f, err := c.resolver.Resolve(ctx, params)
	if err != nil {
		return domain.AggregateResult{}, err
	}
	granularity, err := c.resolver.ResolveGranularity(params.Granularity, c.settings.DefaultGranularity)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	key := cache.Key{View: v, Filter: f.Canonical(), Granularity: granularity}
	result, err := c.results.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		records, err := c.fetch(ctx, f)
		if err != nil {
			return nil, err
		}
		return c.aggregator.Aggregate(v, granularity, f, records)
	})
	if err != nil {
		return domain.AggregateResult{}, err
	}
	return result.(domain.AggregateResult), nil
}

func (c *controller) GetForecast(
	ctx context.Context,
	params ForecastParams,
) (domain.ForecastResult, error) {
	metric, err := parseForecastMetric(params.Metric)
	if err != nil {
		return domain.ForecastResult{}, err
	}
	horizon := params.Horizon
	if horizon == 0 {
		horizon = c.settings.DefaultHorizon
	}

	f, err := c.resolver.Resolve(ctx, params.Filter)
	if err != nil {
		return domain.ForecastResult{}, err
	}
	granularity, err := c.resolver.ResolveGranularity(params.Filter.Granularity, c.settings.DefaultGranularity)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	key := cache.Key{
		View:        forecastView,
		Filter:      f.Canonical(),
		Granularity: granularity,
		Metric:      metric,
		Horizon:     horizon,
	}
	result, err := c.results.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		records, err := c.fetch(ctx, f)
		if err != nil {
			return nil, err
		}
		history := c.countSeries(metric, granularity, records)
		fc, err := c.forecaster.Forecast(history, domain.MetricCount, horizon)
		if err != nil {
			return nil, err
		}
		fc.Metric = metric
		return fc, nil
	})
	if err != nil {
		return domain.ForecastResult{}, err
	}
	return result.(domain.ForecastResult), nil
}

func (c *controller) GetMigrationAlerts(ctx context.Context, month string) ([]scoring.Alert, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, &domain.InvalidFilterError{Field: "month", Value: month, Reason: "expected YYYY-MM"}
	}
	end := start.AddDate(0, 1, -1)
	f := domain.Filter{
		DateRange:  &domain.DateRange{Start: start, End: end},
		Categories: []domain.Category{domain.CategoryMigration},
	}

	key := cache.Key{View: migrationAlertsView, Filter: f.Canonical()}
	result, err := c.results.GetOrCompute(ctx, key, func(ctx context.Context) (interface{}, error) {
		records, err := c.fetch(ctx, f)
		if err != nil {
			return nil, err
		}
		totals := make(map[string]float64)
		for _, r := range records {
			totals[r.Region] += r.Value
		}
		return scoring.Rank(totals, month, c.settings.MigrationThresholds, c.settings.MigrationAlertLimit), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]scoring.Alert), nil
}

// RefreshDataset drops all memoized results. Called after the backing
// dataset changed; readers concurrent with the refresh may still serve
// the old snapshot until their entries expire here.
func (c *controller) RefreshDataset(ctx context.Context) {
	for _, v := range domain.Views() {
		c.results.InvalidateView(v)
	}
	c.results.InvalidateView(forecastView)
	c.results.InvalidateView(migrationAlertsView)
	zerolog.Ctx(ctx).Info().Msg("result cache invalidated after dataset refresh")
}

// fetch pulls matching records under the configured timeout and maps
// them into the domain shape. A timed-out fetch surfaces as
// StoreUnavailableError through the store.
func (c *controller) fetch(ctx context.Context, f domain.Filter) ([]domain.AlertRecord, error) {
	if c.settings.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.FetchTimeout)
		defer cancel()
	}
	records, err := c.store.Fetch(ctx, f)
	if err != nil {
		if c.failures != nil {
			c.failures.StoreFailure()
		}
		return nil, err
	}
	return adapters.MapStoreAlertsToDomain(records), nil
}

// countSeries builds a zero-filled per-bucket count history for the
// chosen metric. Gaps are filled so the forecast engine sees the evenly
// spaced series it requires.
func (c *controller) countSeries(
	metric string,
	granularity domain.Granularity,
	records []domain.AlertRecord,
) domain.AggregateResult {
	// Overview is a known view; its aggregation cannot fail.
	overview, _ := c.aggregator.Aggregate(domain.ViewOverview, granularity, domain.Filter{}, records)

	counts := make(map[string]float64)
	var first, last string
	for _, row := range overview.Rows {
		if metric != MetricOverview && string(row.Category) != metric {
			continue
		}
		counts[row.Bucket] += row.Metrics[domain.MetricCount]
		if first == "" || row.Bucket < first {
			first = row.Bucket
		}
		if row.Bucket > last {
			last = row.Bucket
		}
	}

	var rows []domain.Row
	if first != "" {
		layout := "2006-01-02"
		if granularity == domain.GranularityMonth {
			layout = "2006-01"
		}
		start, _ := time.Parse(layout, first)
		end, _ := time.Parse(layout, last)
		for t := start; !t.After(end); t = aggregate.NextBucket(t, granularity) {
			bucket := aggregate.BucketKey(t, granularity)
			rows = append(rows, domain.Row{
				Bucket:  bucket,
				Metrics: map[string]float64{domain.MetricCount: counts[bucket]},
			})
		}
	}

	return domain.AggregateResult{
		View:        domain.ViewOverview,
		Granularity: granularity,
		Rows:        rows,
	}
}

func parseView(view string) (domain.View, error) {
	v := domain.View(view)
	for _, known := range domain.Views() {
		if v == known {
			return v, nil
		}
	}
	return "", &domain.UnknownViewError{View: view}
}

func parseForecastMetric(metric string) (string, error) {
	if metric == "" || metric == MetricOverview {
		return MetricOverview, nil
	}
	for _, c := range domain.Categories() {
		if metric == string(c) {
			return metric, nil
		}
	}
	return "", &domain.InvalidFilterError{
		Field:  "metric",
		Value:  metric,
		Reason: "must be a category or overview",
	}
}
