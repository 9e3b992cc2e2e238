package httpapi

import (
	"net/http"

	"wxhist-server/internal/config"
)

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: requestID(requestLogger(handler)),
	}
}
