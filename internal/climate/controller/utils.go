package controller

import (
	"strconv"
	"strings"

	"hawaii-climate/internal/climate/types"
)

// flattenStations returns [station_1, name_1, station_2, name_2, ...].
func flattenStations(stations []types.Station) []string {
	out := make([]string, 0, 2*len(stations))
	for _, s := range stations {
		out = append(out, s.Station, s.Name)
	}
	return out
}

// flattenObservations returns [date_1, tobs_1, date_2, tobs_2, ...]. The
// public shape is a homogeneous string array, so temperatures are rendered
// as decimal strings ("77.0").
func flattenObservations(observations []types.Observation) []string {
	out := make([]string, 0, 2*len(observations))
	for _, o := range observations {
		out = append(out, o.Date, formatTemperature(o.Tobs))
	}
	return out
}

// formatTemperature keeps a fractional part on whole numbers: 77 -> "77.0".
func formatTemperature(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
