package httpapi

import (
	"database/sql"
	"net/http"
)

func NewMux(conn *sql.DB, metrics *Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", datasetHealth{conn: conn}.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
