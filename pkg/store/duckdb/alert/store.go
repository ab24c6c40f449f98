package alert

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
	"github.com/de-tools/alert-atlas/pkg/models/store"
)

// Store provides read access to the canonical alert dataset plus the
// bulk-load operations used by the CLI. Fetch is the only method the
// analytics engines depend on; it is read-only and deterministic for a
// given dataset snapshot and filter.
type Store interface {
	Fetch(ctx context.Context, filter domain.Filter) ([]store.AlertRecord, error)
	Add(ctx context.Context, records []store.AlertRecord) error
	ImportCSV(ctx context.Context, path string) (int64, error)
	Stats(ctx context.Context) (*store.DatasetStats, error)
}

type alertStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &alertStore{db: db}, nil
}

// Fetch applies the filter as a conjunctive predicate and returns the
// matching rows ordered by timestamp. An empty result is valid; every
// failure surfaces as StoreUnavailableError because filter semantics
// were already validated by the resolver.
func (s *alertStore) Fetch(ctx context.Context, filter domain.Filter) ([]store.AlertRecord, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.DateRange != nil {
		conds = append(conds, "ts >= ? AND ts < ?")
		args = append(args, filter.DateRange.Start, filter.DateRange.End.AddDate(0, 0, 1))
	}
	if len(filter.Regions) > 0 {
		conds = append(conds, fmt.Sprintf("region IN (%s)", placeholders(len(filter.Regions))))
		for _, r := range filter.Regions {
			args = append(args, r)
		}
	}
	if len(filter.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("category IN (%s)", placeholders(len(filter.Categories))))
		for _, c := range filter.Categories {
			args = append(args, string(c))
		}
	}

	query := "SELECT ts, category, region, value, metadata FROM alert_records"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts, region"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreUnavailableError{Err: err}
	}
	defer rows.Close()

	records, err := scanAlertRows(rows)
	if err != nil {
		return nil, &domain.StoreUnavailableError{Err: err}
	}
	return records, nil
}

func (s *alertStore) Add(ctx context.Context, records []store.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alert_records (ts, category, region, value, metadata) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		metadata, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			record.Timestamp,
			record.Category,
			record.Region,
			record.Value,
			metadata,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return tx.Commit()
}

// ImportCSV bulk-loads a dataset file. The CSV must carry the columns
// ts, category, region, value, metadata (JSON string).
func (s *alertStore) ImportCSV(ctx context.Context, path string) (int64, error) {
	query := `
		INSERT INTO alert_records (ts, category, region, value, metadata)
		SELECT ts, category, region, value, metadata
		FROM read_csv_auto(?, header = true)
	`
	res, err := s.db.ExecContext(ctx, query, path)
	if err != nil {
		return 0, fmt.Errorf("import csv: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *alertStore) Stats(ctx context.Context) (*store.DatasetStats, error) {
	query := `SELECT COUNT(*), MIN(ts), MAX(ts) FROM alert_records`
	var total int64
	var first, last sql.NullTime
	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &first, &last); err != nil {
		return nil, &domain.StoreUnavailableError{Err: err}
	}
	stats := &store.DatasetStats{RecordsCount: total}
	if first.Valid {
		t := first.Time
		stats.FirstRecordTime = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastRecordTime = &t
	}
	return stats, nil
}

func scanAlertRows(rows *sql.Rows) ([]store.AlertRecord, error) {
	records := make([]store.AlertRecord, 0)
	for rows.Next() {
		var (
			ts               time.Time
			category, region string
			value            float64
			metadataRaw      []byte
		)
		if err := rows.Scan(&ts, &category, &region, &value, &metadataRaw); err != nil {
			return nil, err
		}
		md := map[string]string{}
		if len(metadataRaw) > 0 {
			_ = json.Unmarshal(metadataRaw, &md)
		}
		records = append(records, store.AlertRecord{
			Timestamp: ts,
			Category:  category,
			Region:    region,
			Value:     value,
			Metadata:  md,
		})
	}
	return records, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
