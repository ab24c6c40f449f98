package domain

import (
	"strings"
	"time"
)

// DateRange is an inclusive [Start, End] interval. Start must not be
// after End; the filter resolver enforces this before a DateRange ever
// reaches the engines.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filter is the canonical, resolved form of the dashboard's filter
// parameters. Empty Regions or Categories mean "all". Instances produced
// by the resolver have Regions and Categories sorted and de-duplicated,
// so two semantically identical filters serialize to the same cache key.
type Filter struct {
	DateRange  *DateRange
	Regions    []string
	Categories []Category
}

// Canonical renders the filter as a stable string used for cache keying.
// It relies on the resolver's sorting guarantee and performs no
// normalization of its own.
func (f Filter) Canonical() string {
	var b strings.Builder
	if f.DateRange != nil {
		b.WriteString(f.DateRange.Start.Format("2006-01-02"))
		b.WriteString("..")
		b.WriteString(f.DateRange.End.Format("2006-01-02"))
	}
	b.WriteString("|r:")
	b.WriteString(strings.Join(f.Regions, ","))
	b.WriteString("|c:")
	for i, c := range f.Categories {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(c))
	}
	return b.String()
}

// Matches reports whether a record passes the filter's conjunctive
// predicate. The duckdb store applies the same predicate in SQL; this
// form exists for in-memory stores and tests.
func (f Filter) Matches(r AlertRecord) bool {
	if f.DateRange != nil {
		if r.Timestamp.Before(f.DateRange.Start) {
			return false
		}
		// End is inclusive up to the last instant of the day.
		if r.Timestamp.After(f.DateRange.End.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
			return false
		}
	}
	if len(f.Regions) > 0 && !containsString(f.Regions, r.Region) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, r.Category) {
		return false
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsCategory(values []Category, v Category) bool {
	for _, c := range values {
		if c == v {
			return true
		}
	}
	return false
}
