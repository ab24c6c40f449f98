package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const AlertTableSchema = `
	CREATE TABLE IF NOT EXISTS alert_records (
		ts TIMESTAMP NOT NULL,
		category VARCHAR NOT NULL,
		region VARCHAR NOT NULL,
		value DOUBLE NOT NULL DEFAULT 0,
		metadata JSON
	);
`

var bootQueries = []string{
	AlertTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
