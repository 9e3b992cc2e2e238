package stations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"wxhist-server/internal/utils"
)

// CatalogAPI is what the HTTP layer needs from the catalog.
type CatalogAPI interface {
	Stations(ctx context.Context) ([]Station, error)
	Search(ctx context.Context, term string) ([]Station, error)
	Load(ctx context.Context) error
}

type Controller struct {
	catalog CatalogAPI
}

func NewController(catalog CatalogAPI) *Controller {
	return &Controller{catalog: catalog}
}

func (c *Controller) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/stations", c.handleStations).Methods(http.MethodGet)
	r.HandleFunc("/api/stations/refresh", c.handleRefresh).Methods(http.MethodPost)
}

func (c *Controller) handleStations(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	list, err := c.catalog.Search(r.Context(), term)
	if err != nil {
		slog.Error("stations: catalog load failed", "error", err)
		utils.WriteError(w, http.StatusBadGateway, "station list unavailable: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (c *Controller) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := c.catalog.Load(r.Context()); err != nil {
		slog.Error("stations: refresh failed", "error", err)
		utils.WriteError(w, http.StatusBadGateway, "station list unavailable: "+err.Error())
		return
	}

	list, err := c.catalog.Stations(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, "station list unavailable: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"stations": len(list)})
}
