package httpapi

import (
	"net/http"

	"hawaii-climate/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(metrics.Middleware(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
