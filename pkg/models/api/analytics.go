package api

// AggregateRow is one serialized bucket of an aggregate table.
// Category is present only for the overview view.
type AggregateRow struct {
	Bucket           string             `json:"bucket"`
	Category         string             `json:"category,omitempty"`
	Metrics          map[string]float64 `json:"metrics"`
	InsufficientData bool               `json:"insufficient_data,omitempty"`
}

// AggregateResponse is the ordered table returned for a descriptive view.
type AggregateResponse struct {
	View        string         `json:"view"`
	Granularity string         `json:"granularity,omitempty"`
	Rows        []AggregateRow `json:"rows"`
}

// ForecastPoint is one projected period.
type ForecastPoint struct {
	Period   string  `json:"period"`
	Estimate float64 `json:"estimate"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// ForecastResponse is the ordered projection for the forecast view.
type ForecastResponse struct {
	Metric  string          `json:"metric"`
	Horizon int             `json:"horizon"`
	Points  []ForecastPoint `json:"points"`
}

// MigrationAlert is one ranked district-level migration inflow alert.
type MigrationAlert struct {
	Region          string   `json:"region"`
	Month           string   `json:"month"`
	InflowScore     float64  `json:"inflow_score"`
	Tier            string   `json:"tier"`
	Recommendations []string `json:"recommendations"`
}

// MigrationAlertsResponse wraps the ranked alerts for one month.
type MigrationAlertsResponse struct {
	Month  string           `json:"month"`
	Alerts []MigrationAlert `json:"alerts"`
}

// Error is the structured error body returned for all non-2xx responses.
type Error struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}
