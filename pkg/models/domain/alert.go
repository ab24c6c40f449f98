package domain

import "time"

// Category classifies an alert record into one of the four thematic streams
// the dashboard reports on.
type Category string

const (
	CategoryMigration      Category = "migration"
	CategoryInfrastructure Category = "infrastructure"
	CategoryBiometric      Category = "biometric"
	CategoryLostGeneration Category = "lost_generation"
)

// Categories lists all known categories in their canonical order.
func Categories() []Category {
	return []Category{
		CategoryBiometric,
		CategoryInfrastructure,
		CategoryLostGeneration,
		CategoryMigration,
	}
}

// View identifies one of the dashboard-facing analytical perspectives.
type View string

const (
	ViewOverview       View = "overview"
	ViewMigration      View = "migration"
	ViewInfrastructure View = "infrastructure"
	ViewBiometric      View = "biometric"
	ViewLostGeneration View = "lost_generation"
)

// Views lists the descriptive (non-forecast) views.
func Views() []View {
	return []View{
		ViewOverview,
		ViewMigration,
		ViewInfrastructure,
		ViewBiometric,
		ViewLostGeneration,
	}
}

// Granularity selects the time bucket width for time-series views.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// AlertRecord is a single immutable fact from the alert dataset.
// Value carries a category-specific meaning: a count contributor for
// migration/infrastructure, a cohort size for lost generation and a
// rate contributor for biometric records.
type AlertRecord struct {
	Timestamp time.Time
	Category  Category
	Region    string
	Value     float64
	Metadata  map[string]string
}
