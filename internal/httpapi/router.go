package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"wxhist-server/internal/config"
)

// RouteRegistrar is implemented by module controllers.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

func NewRouter(cfg config.Config, journal pinger, controllers ...RouteRegistrar) *mux.Router {
	r := mux.NewRouter()
	registerHealthcheck(r, journal)

	for _, c := range controllers {
		c.RegisterRoutes(r)
	}

	if cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
	}

	return r
}
