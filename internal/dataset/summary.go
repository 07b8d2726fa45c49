package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Summary describes what a dataset file holds.
type Summary struct {
	SchemaVersion string         `db:"-"`
	Stations      int            `db:"stations"`
	Measurements  int            `db:"measurements"`
	FirstDate     sql.NullString `db:"first_date"`
	LastDate      sql.NullString `db:"last_date"`
}

const summarySQL = `
SELECT
  (SELECT COUNT(*) FROM station)     AS stations,
  (SELECT COUNT(*) FROM measurement) AS measurements,
  (SELECT MIN(date) FROM measurement) AS first_date,
  (SELECT MAX(date) FROM measurement) AS last_date`

func Summarize(ctx context.Context, db *sqlx.DB) (Summary, error) {
	var s Summary
	if err := db.GetContext(ctx, &s, summarySQL); err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	v, err := SchemaVersion(ctx, db.DB)
	if err != nil {
		return Summary{}, fmt.Errorf("schema version: %w", err)
	}
	s.SchemaVersion = v
	return s, nil
}
