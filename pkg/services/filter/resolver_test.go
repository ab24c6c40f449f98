package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/services/registry"
)

func newTestResolver() *Resolver {
	return NewResolver(registry.NewStaticRegistry("DL", "MH", "UP", "WB"))
}

func TestResolve_Canonicalization(t *testing.T) {
	resolver := newTestResolver()
	ctx := context.Background()

	tests := []struct {
		name     string
		params   RawParams
		expected domain.Filter
	}{
		{
			name:     "empty params resolve to match-all filter",
			params:   RawParams{},
			expected: domain.Filter{},
		},
		{
			name:   "regions upper-cased, sorted and de-duplicated",
			params: RawParams{Regions: "mh, dl ,MH"},
			expected: domain.Filter{
				Regions: []string{"DL", "MH"},
			},
		},
		{
			name:   "categories normalized and sorted",
			params: RawParams{Categories: "Migration,lost-generation"},
			expected: domain.Filter{
				Categories: []domain.Category{domain.CategoryLostGeneration, domain.CategoryMigration},
			},
		},
		{
			name:   "date range parsed inclusively",
			params: RawParams{Start: "2023-01-01", End: "2023-01-31"},
			expected: domain.Filter{
				DateRange: &domain.DateRange{
					Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := resolver.Resolve(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	resolver := newTestResolver()
	ctx := context.Background()

	tests := []struct {
		name  string
		param RawParams
		field string
	}{
		{"inverted date range", RawParams{Start: "2023-02-01", End: "2023-01-01"}, "start"},
		{"malformed start", RawParams{Start: "01-01-2023", End: "2023-02-01"}, "start"},
		{"start without end", RawParams{Start: "2023-01-01"}, "end"},
		{"unrecognized region", RawParams{Regions: "XX"}, "regions"},
		{"unrecognized category", RawParams{Categories: "weather"}, "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tt.param)

			var invalid *domain.InvalidFilterError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	resolver := newTestResolver()
	ctx := context.Background()

	raw := RawParams{
		Start:      "2023-01-01",
		End:        "2023-06-30",
		Regions:    "wb,dl",
		Categories: "biometric,migration",
	}

	once, err := resolver.Resolve(ctx, raw)
	require.NoError(t, err)

	// Re-resolving the canonical form changes nothing.
	canonical := RawParams{
		Start:      "2023-01-01",
		End:        "2023-06-30",
		Regions:    "DL,WB",
		Categories: "biometric,migration",
	}
	twice, err := resolver.Resolve(ctx, canonical)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, once.Canonical(), twice.Canonical())
}

func TestResolveGranularity(t *testing.T) {
	resolver := newTestResolver()

	g, err := resolver.ResolveGranularity("", domain.GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityMonth, g)

	g, err = resolver.ResolveGranularity("Week", domain.GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityWeek, g)

	_, err = resolver.ResolveGranularity("quarter", domain.GranularityMonth)
	var invalid *domain.InvalidFilterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "granularity", invalid.Field)
}
