package types

import "database/sql"

// Station mirrors a row of the station table.
type Station struct {
	Station   string          `db:"station"`
	Name      string          `db:"name"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
	Elevation sql.NullFloat64 `db:"elevation"`
}

// Measurement mirrors a row of the measurement table. Date is a zero-padded
// YYYY-MM-DD string; range filters compare it lexicographically.
type Measurement struct {
	Station string          `db:"station"`
	Date    string          `db:"date"`
	Prcp    sql.NullFloat64 `db:"prcp"`
	Tobs    float64         `db:"tobs"`
}

type Precipitation struct {
	Date string   `json:"date" db:"date"`
	Prcp *float64 `json:"prcp" db:"prcp"`
}

type Observation struct {
	Date string  `db:"date"`
	Tobs float64 `db:"tobs"`
}

// TemperatureStats holds the aggregates over a date range. All three are nil
// when no row matched.
type TemperatureStats struct {
	TMin *float64 `json:"TMIN" db:"tmin"`
	TAvg *float64 `json:"TAVG" db:"tavg"`
	TMax *float64 `json:"TMAX" db:"tmax"`
}

type StationActivity struct {
	Station string `db:"station"`
	Count   int    `db:"count"`
}
