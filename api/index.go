// Package handler exposes the API as a single serverless function.
package handler

import (
	"net/http"
	"sync"

	"tablebook/config"
	"tablebook/di"
	"tablebook/shared/logger"
	transport "tablebook/transport/http"
)

var (
	server *transport.HTTP
	once   sync.Once
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()
		logger.Configure(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
