package store

import "time"

// AlertRecord is the flat row shape persisted in the alert_records table.
type AlertRecord struct {
	Timestamp time.Time
	Category  string
	Region    string
	Value     float64
	Metadata  map[string]string
}

// DatasetStats describes the stored dataset as a whole.
type DatasetStats struct {
	RecordsCount    int64
	FirstRecordTime *time.Time
	LastRecordTime  *time.Time
}
