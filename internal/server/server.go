// Package server wires the HTTP router, middleware, and listener.
package server

import (
	"fmt"
	"net/http"
	"time"

	limiter "github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/uptrace/bunrouter"

	"github.com/mlserve/cifar-api/internal/config"
	"github.com/mlserve/cifar-api/internal/handlers"
)

// Server is the HTTP front end of the classification service.
type Server struct {
	httpServer *http.Server
	limiter    *stdlib.Middleware
}

// New builds the router with its middleware chain and returns a ready-to-run
// server.
func New(cfg *config.Config, h *handlers.Handler) (*Server, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.LimiterPeriod)
	if err != nil {
		return nil, fmt.Errorf("invalid limiter rate %q: %w", cfg.LimiterPeriod, err)
	}

	s := &Server{
		limiter: stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate)),
	}

	router := bunrouter.New(
		bunrouter.Use(s.loggingMiddleware),
		bunrouter.Use(s.limitMiddleware),
		bunrouter.Use(corsMiddleware),
	).Compat()

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/model-info", h.ModelInfo)
	router.POST("/classify", h.Classify)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s, nil
}

// ListenAndServe blocks serving HTTP until the listener fails.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}
