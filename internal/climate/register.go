package climate

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"hawaii-climate/internal/climate/controller"
	"hawaii-climate/internal/climate/repository"
)

func RegisterFeature(mux *http.ServeMux, db *sqlx.DB) {
	climateRepository := repository.NewRepository(db)
	climateController := controller.NewClimateController(climateRepository)
	climateController.RegisterRoutes(mux)
}
