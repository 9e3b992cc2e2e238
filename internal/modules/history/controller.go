package history

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"wxhist-server/internal/modules/stations"
	"wxhist-server/internal/utils"
)

// SeriesFetcher is what the HTTP layer needs from the fetch pipeline.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, st stations.Station, from, to time.Time) (Result, error)
}

// StationGetter resolves the station named in the request.
type StationGetter interface {
	Get(ctx context.Context, key string) (stations.Station, bool, error)
}

type Controller struct {
	catalog StationGetter
	fetcher SeriesFetcher
}

func NewController(catalog StationGetter, fetcher SeriesFetcher) *Controller {
	return &Controller{catalog: catalog, fetcher: fetcher}
}

func (c *Controller) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/history", c.handleHistory).Methods(http.MethodGet)
}

type historyResponse struct {
	Station stations.Station `json:"station"`
	Result
	RowsDropped int `json:"rowsDropped"`
}

func (c *Controller) handleHistory(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("station")
	if key == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing 'station' parameter")
		return
	}

	from, to, err := parseRangeQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, found, err := c.catalog.Get(r.Context(), key)
	if err != nil {
		slog.Error("history: catalog load failed", "error", err)
		utils.WriteError(w, http.StatusBadGateway, "station list unavailable: "+err.Error())
		return
	}
	if !found {
		utils.WriteError(w, http.StatusNotFound, "unknown station "+key)
		return
	}

	res, err := c.fetcher.FetchSeries(r.Context(), st, from, to)
	if err != nil {
		// Only context termination reaches here; the client is usually gone.
		slog.Debug("history: fetch aborted", "station", key, "error", err)
		utils.WriteError(w, http.StatusBadGateway, "fetch aborted: "+err.Error())
		return
	}

	slog.Info("history resolved",
		"station", key,
		"used_code", res.UsedCode,
		"rows_received", res.RowsReceived,
		"rows_coerced", res.RowsCoerced,
		"rows_in_range", res.RowsInRange,
	)
	utils.WriteJSON(w, http.StatusOK, historyResponse{
		Station:     st,
		Result:      res,
		RowsDropped: res.RowsReceived - res.RowsCoerced,
	})
}

var errBadRange = errors.New("'from' must be <= 'to'")

// parseRangeQuery accepts RFC3339 or plain dates, matching what the
// presentation layer's date inputs produce.
func parseRangeQuery(r *http.Request) (from time.Time, to time.Time, err error) {
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		from, err = parseDateParam(s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from' (expected RFC3339 or YYYY-MM-DD)")
		}
	}
	if s := q.Get("to"); s != "" {
		to, err = parseDateParam(s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to' (expected RFC3339 or YYYY-MM-DD)")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errBadRange
	}
	return from, to, nil
}

func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
