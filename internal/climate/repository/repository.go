package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"hawaii-climate/internal/climate/types"
)

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-observations.sql
var getObservationsSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

//go:embed sql/get-temperature-stats-range.sql
var getTemperatureStatsRangeSQL string

const dateLayout = "2006-01-02"

// The dataset ends on 2017-08-23. Trailing-year windows are anchored to fixed
// dates in the dataset, never to the current time.
var (
	PrecipitationSince = time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -365).Format(dateLayout)
	ObservationsSince  = time.Date(2017, 8, 18, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -365).Format(dateLayout)
)

// ErrNoMeasurements is returned by GetMostActiveStation when the measurement table is empty.
var ErrNoMeasurements = errors.New("no measurements")

type ClimateRepository interface {
	GetPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetMostActiveStation(ctx context.Context) (types.StationActivity, error)
	GetObservations(ctx context.Context, station string) ([]types.Observation, error)
	GetTemperatureStats(ctx context.Context, start string) (types.TemperatureStats, error)
	GetTemperatureStatsRange(ctx context.Context, start, end string) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// GetPrecipitation returns every measurement after PrecipitationSince, ordered by date then station.
func (r *repositoryImpl) GetPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	out := []types.Precipitation{}
	if err := r.db.SelectContext(ctx, &out, getPrecipitationSQL, PrecipitationSince); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStations returns station and name for every station. Coordinates are left unset.
func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	out := []types.Station{}
	if err := r.db.SelectContext(ctx, &out, getStationsSQL); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMostActiveStation returns the station with the most measurement rows.
// Ties go to the lowest station id.
func (r *repositoryImpl) GetMostActiveStation(ctx context.Context) (types.StationActivity, error) {
	var a types.StationActivity
	err := r.db.GetContext(ctx, &a, getMostActiveStationSQL)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, ErrNoMeasurements
	}
	if err != nil {
		return types.StationActivity{}, err
	}
	return a, nil
}

// GetObservations returns the station's temperature observations after ObservationsSince.
func (r *repositoryImpl) GetObservations(ctx context.Context, station string) ([]types.Observation, error) {
	out := []types.Observation{}
	if err := r.db.SelectContext(ctx, &out, getObservationsSQL, station, ObservationsSince); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) GetTemperatureStats(ctx context.Context, start string) (types.TemperatureStats, error) {
	var s types.TemperatureStats
	err := r.db.GetContext(ctx, &s, getTemperatureStatsSQL, start)
	return s, err
}

// GetTemperatureStatsRange aggregates over start <= date <= end.
func (r *repositoryImpl) GetTemperatureStatsRange(ctx context.Context, start, end string) (types.TemperatureStats, error) {
	var s types.TemperatureStats
	err := r.db.GetContext(ctx, &s, getTemperatureStatsRangeSQL, start, end)
	return s, err
}
