package filter

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/registry"
)

const dateLayout = "2006-01-02"

// RawParams carries the unparsed filter inputs exactly as the dashboard
// sent them. Regions and Categories are comma-separated lists.
type RawParams struct {
	Start       string
	End         string
	Regions     string
	Categories  string
	Granularity string
}

// Resolver normalizes raw dashboard parameters into a canonical
// domain.Filter. It is a pure function of its inputs and the region
// registry; resolving an already-canonical filter is a no-op.
type Resolver struct {
	regions registry.Registry
}

func NewResolver(regions registry.Registry) *Resolver {
	return &Resolver{regions: regions}
}

func (r *Resolver) Resolve(ctx context.Context, params RawParams) (domain.Filter, error) {
	var f domain.Filter

	dateRange, err := r.resolveDateRange(params.Start, params.End)
	if err != nil {
		return domain.Filter{}, err
	}
	f.DateRange = dateRange

	f.Regions, err = r.resolveRegions(ctx, params.Regions)
	if err != nil {
		return domain.Filter{}, err
	}

	f.Categories, err = r.resolveCategories(params.Categories)
	if err != nil {
		return domain.Filter{}, err
	}

	return f, nil
}

// ResolveGranularity validates the bucket width, falling back to the
// given default when the parameter is absent.
func (r *Resolver) ResolveGranularity(raw string, fallback domain.Granularity) (domain.Granularity, error) {
	if raw == "" {
		return fallback, nil
	}
	switch g := domain.Granularity(strings.ToLower(strings.TrimSpace(raw))); g {
	case domain.GranularityDay, domain.GranularityWeek, domain.GranularityMonth:
		return g, nil
	default:
		return "", &domain.InvalidFilterError{
			Field:  "granularity",
			Value:  raw,
			Reason: "must be one of day, week, month",
		}
	}
}

func (r *Resolver) resolveDateRange(start, end string) (*domain.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		field, value := "start", start
		if start != "" {
			field, value = "end", end
		}
		return nil, &domain.InvalidFilterError{
			Field:  field,
			Value:  value,
			Reason: "start and end must be provided together",
		}
	}

	startTime, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, &domain.InvalidFilterError{Field: "start", Value: start, Reason: "expected YYYY-MM-DD"}
	}
	endTime, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, &domain.InvalidFilterError{Field: "end", Value: end, Reason: "expected YYYY-MM-DD"}
	}
	if startTime.After(endTime) {
		return nil, &domain.InvalidFilterError{
			Field:  "start",
			Value:  start,
			Reason: "start date is after end date",
		}
	}

	return &domain.DateRange{Start: startTime, End: endTime}, nil
}

func (r *Resolver) resolveRegions(ctx context.Context, raw string) ([]string, error) {
	values := splitList(raw)
	if len(values) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(values))
	regions := make([]string, 0, len(values))
	for _, v := range values {
		code := strings.ToUpper(v)
		if !r.regions.IsKnown(ctx, code) {
			return nil, &domain.InvalidFilterError{
				Field:  "regions",
				Value:  v,
				Reason: "unrecognized region code",
			}
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		regions = append(regions, code)
	}
	sort.Strings(regions)
	return regions, nil
}

func (r *Resolver) resolveCategories(raw string) ([]domain.Category, error) {
	values := splitList(raw)
	if len(values) == 0 {
		return nil, nil
	}

	seen := make(map[domain.Category]struct{}, len(values))
	categories := make([]domain.Category, 0, len(values))
	for _, v := range values {
		c, ok := canonicalCategory(v)
		if !ok {
			return nil, &domain.InvalidFilterError{
				Field:  "categories",
				Value:  v,
				Reason: "unrecognized category",
			}
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories, nil
}

func canonicalCategory(raw string) (domain.Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	c := domain.Category(normalized)
	switch c {
	case domain.CategoryMigration, domain.CategoryInfrastructure,
		domain.CategoryBiometric, domain.CategoryLostGeneration:
		return c, true
	}
	return "", false
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}
