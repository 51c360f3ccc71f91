// Package httpapp wires the echo server exposing the connector hub API.
package httpapp

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/connector-hub/connector-hub/internal/config"
	"github.com/connector-hub/connector-hub/internal/http/handlers"
	"github.com/connector-hub/connector-hub/internal/registry"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo

	mu  sync.Mutex
	srv *http.Server
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(cfg config.Config, reg *registry.Registry, store handlers.ConnectionStore, secretsStore handlers.SecretReader, engine handlers.AuthEngine) (*EchoServer, error) {
	h := &handlers.Handlers{
		Cfg:      cfg,
		Registry: reg,
		Store:    store,
		Secrets:  secretsStore,
		Engine:   engine,
	}
	es := &EchoServer{h: h, e: echo.New()}
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.Use(middleware.Recover())

	es.e.GET("/healthz", es.h.HandleHealthz)

	api := es.e.Group("/api")
	api.GET("/connectors", es.h.HandleListConnectors)
	api.GET("/connectors/:key", es.h.HandleGetConnector)
	api.GET("/connectors/:key/schemes/:scheme/fields", es.h.HandleOnboardingFields)
	api.PUT("/connectors/:key/schemes/:scheme/fields/:field", es.h.HandleSetField)
	api.POST("/connectors/:key/schemes/:scheme/enable", es.h.HandleEnable)
	api.POST("/connectors/:key/schemes/:scheme/disable", es.h.HandleDisable)
	api.POST("/connectors/:key/schemes/:scheme/authorize", es.h.HandleAuthorize)
	api.GET("/callback", es.h.HandleCallback)

	es.e.Any("/proxy/:key/*", es.h.HandleProxy)
}

// Start starts the HTTP server.
func (es *EchoServer) Start(addr string) error {
	return es.e.Start(addr)
}

// StartServer starts the HTTP server with a custom http.Server.
func (es *EchoServer) StartServer(server *http.Server) error {
	server.Handler = es.e
	es.mu.Lock()
	es.srv = server
	es.mu.Unlock()
	return server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	es.mu.Lock()
	srv := es.srv
	es.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
