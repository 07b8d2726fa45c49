package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"hawaii-climate/internal/climate/repository"
	"hawaii-climate/internal/climate/types"
	"hawaii-climate/internal/climate/views"
	"hawaii-climate/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, views.DefaultIndex()); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	rows, err := c.repository.GetPrecipitation(r.Context())
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.GetStations(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, flattenStations(stations))
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	active, err := c.repository.GetMostActiveStation(r.Context())
	if errors.Is(err, repository.ErrNoMeasurements) {
		utils.WriteJSON(w, http.StatusOK, []string{})
		return
	}
	if err != nil {
		slog.Error("tobs: most active station query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load observations")
		return
	}

	observations, err := c.repository.GetObservations(r.Context(), active.Station)
	if err != nil {
		slog.Error("tobs: observations query failed", "station", active.Station, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load observations")
		return
	}
	slog.Debug("tobs", "station", active.Station, "rows", active.Count, "observations", len(observations))
	utils.WriteJSON(w, http.StatusOK, flattenObservations(observations))
}

// start and end are passed through unvalidated; a malformed date matches no rows.
func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	stats, err := c.repository.GetTemperatureStats(r.Context(), start)
	if err != nil {
		slog.Error("stats: query failed", "start", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TemperatureStats{stats})
}

func (c *climateControllerImpl) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	start, end := r.PathValue("start"), r.PathValue("end")
	stats, err := c.repository.GetTemperatureStatsRange(r.Context(), start, end)
	if err != nil {
		slog.Error("stats: range query failed", "start", start, "end", end, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TemperatureStats{stats})
}
