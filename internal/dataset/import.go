package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"hawaii-climate/internal/climate/types"
)

const dateLayout = "2006-01-02"

const insertStationSQL = `
INSERT INTO station (station, name, latitude, longitude, elevation)
VALUES (:station, :name, :latitude, :longitude, :elevation)
ON CONFLICT(station) DO UPDATE SET
  name = excluded.name,
  latitude = excluded.latitude,
  longitude = excluded.longitude,
  elevation = excluded.elevation`

const insertMeasurementSQL = `
INSERT INTO measurement (station, date, prcp, tobs)
VALUES (:station, :date, :prcp, :tobs)`

// ImportStations loads a stations CSV (header: station,name[,latitude,longitude,elevation])
// into the station table. Existing stations are updated in place.
func ImportStations(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	return importCSV(ctx, db, r, insertStationSQL, []string{"station", "name"}, func(rec record) (any, error) {
		s := types.Station{
			Station: rec.get("station"),
			Name:    rec.get("name"),
		}
		if s.Station == "" {
			return nil, errors.New("empty station id")
		}
		var err error
		if s.Latitude, err = rec.nullFloat("latitude"); err != nil {
			return nil, err
		}
		if s.Longitude, err = rec.nullFloat("longitude"); err != nil {
			return nil, err
		}
		if s.Elevation, err = rec.nullFloat("elevation"); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// ImportMeasurements loads a measurements CSV (header: station,date,prcp,tobs).
// An empty prcp is stored as NULL. Dates must be zero-padded YYYY-MM-DD.
func ImportMeasurements(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	return importCSV(ctx, db, r, insertMeasurementSQL, []string{"station", "date", "tobs"}, func(rec record) (any, error) {
		m := types.Measurement{
			Station: rec.get("station"),
			Date:    rec.get("date"),
		}
		if m.Station == "" {
			return nil, errors.New("empty station id")
		}
		date, err := normalizeDate(m.Date)
		if err != nil {
			return nil, err
		}
		m.Date = date
		if m.Prcp, err = rec.nullFloat("prcp"); err != nil {
			return nil, err
		}
		tobs, err := rec.nullFloat("tobs")
		if err != nil {
			return nil, err
		}
		if !tobs.Valid {
			return nil, errors.New("empty tobs")
		}
		m.Tobs = tobs.Float64
		return m, nil
	})
}

// normalizeDate rejects anything that would not sort correctly as a string.
func normalizeDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t.Format(dateLayout), nil
}

type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) nullFloat(col string) (sql.NullFloat64, error) {
	s := r.get(col)
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("%s %q: not a number", col, s)
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

func importCSV(ctx context.Context, db *sqlx.DB, r io.Reader, query string, required []string, parse func(record) (any, error)) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("csv: missing header row")
		}
		return 0, fmt.Errorf("csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("csv header: missing column %q", col)
		}
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}

	n := 0
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		row, err := parse(record{index: index, fields: fields})
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("csv line %d: insert: %w", line, err)
		}
		n++
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("close statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
