package controller

import (
	"net/http"

	"hawaii-climate/internal/climate/repository"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
}

func NewClimateController(repository repository.ClimateRepository) ClimateController {
	return &climateControllerImpl{repository: repository}
}

// RegisterRoutes mounts the climate API. The literal routes are more specific
// than the {start} wildcard, so ServeMux picks them first.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleStatsFrom)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleStatsRange)
}
