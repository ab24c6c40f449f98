package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Canonical(t *testing.T) {
	f := Filter{
		DateRange: &DateRange{
			Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		Regions:    []string{"DL", "MH"},
		Categories: []Category{CategoryBiometric, CategoryMigration},
	}

	assert.Equal(t, "2023-01-01..2023-06-30|r:DL,MH|c:biometric,migration", f.Canonical())
	assert.Equal(t, "|r:|c:", Filter{}.Canonical())
}

func TestFilter_Matches(t *testing.T) {
	f := Filter{
		DateRange: &DateRange{
			Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		Regions:    []string{"DL"},
		Categories: []Category{CategoryMigration},
	}

	record := AlertRecord{
		Timestamp: time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC),
		Category:  CategoryMigration,
		Region:    "DL",
	}

	tests := []struct {
		name     string
		mutate   func(r AlertRecord) AlertRecord
		expected bool
	}{
		{"matching record", func(r AlertRecord) AlertRecord { return r }, true},
		{"end date is inclusive", func(r AlertRecord) AlertRecord {
			r.Timestamp = time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC)
			return r
		}, true},
		{"before range", func(r AlertRecord) AlertRecord {
			r.Timestamp = time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
			return r
		}, false},
		{"after range", func(r AlertRecord) AlertRecord {
			r.Timestamp = time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
			return r
		}, false},
		{"wrong region", func(r AlertRecord) AlertRecord { r.Region = "MH"; return r }, false},
		{"wrong category", func(r AlertRecord) AlertRecord { r.Category = CategoryBiometric; return r }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Matches(tt.mutate(record)))
		})
	}

	assert.True(t, Filter{}.Matches(record), "empty filter matches everything")
}
