package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"wxhist-server/internal/utils"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type healthchecker struct {
	journal pinger
}

func (h *healthchecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.journal != nil {
		if err := h.journal.Ping(r.Context()); err != nil {
			slog.Error("failed to check journal connectivity", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to check journal connectivity")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(r *mux.Router, journal pinger) {
	h := &healthchecker{journal: journal}
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
}
