package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"hawaii-climate/internal/db"
	"hawaii-climate/internal/utils"
)

// datasetHealth reports healthy only while the dataset tables stay readable,
// so a replaced or truncated dataset file fails the health check instead of every API call.
type datasetHealth struct {
	conn *sql.DB
}

func (h datasetHealth) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.conn.PingContext(r.Context()); err != nil {
		slog.Error("healthz: database unreachable", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "database unreachable")
		return
	}
	if err := db.VerifySchema(r.Context(), h.conn); err != nil {
		slog.Error("healthz: dataset unreadable", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "dataset unreadable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
