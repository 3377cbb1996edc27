// Package server provides the HTTP server and routing for RiskWatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/config"
	"github.com/avramidis/riskwatch/internal/modules/alerts"
	alerthandlers "github.com/avramidis/riskwatch/internal/modules/alerts/handlers"
	"github.com/avramidis/riskwatch/internal/modules/backtest"
	"github.com/avramidis/riskwatch/internal/modules/marketdata"
	marketdatahandlers "github.com/avramidis/riskwatch/internal/modules/marketdata/handlers"
	"github.com/avramidis/riskwatch/internal/modules/returns"
	"github.com/avramidis/riskwatch/internal/modules/risk"
	riskhandlers "github.com/avramidis/riskwatch/internal/modules/risk/handlers"
	"github.com/avramidis/riskwatch/internal/modules/stress"
	stresshandlers "github.com/avramidis/riskwatch/internal/modules/stress/handlers"
)

// Deps holds everything the server needs to serve the API
type Deps struct {
	Config        *config.Config
	Log           zerolog.Logger
	HistoryDB     *marketdata.HistoryDB
	ReturnsEngine *returns.Engine
	Calculator    *risk.Calculator
	Backtester    *backtest.Engine
	StressEngine  *stress.Engine
	Monitor       *alerts.Monitor
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server
func New(deps Deps) *Server {
	log := deps.Log.With().Str("component", "server").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	allowedOrigins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	if deps.Config.DevMode {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	riskHandler := riskhandlers.NewHandler(riskhandlers.Config{
		HistoryDB:            deps.HistoryDB,
		ReturnsEngine:        deps.ReturnsEngine,
		Calculator:           deps.Calculator,
		Backtester:           deps.Backtester,
		DefaultPositionValue: deps.Config.DefaultPositionValue,
		DefaultLookback:      deps.Config.DefaultLookbackDays,
		Log:                  deps.Log,
	})
	stressHandler := stresshandlers.NewHandler(deps.StressEngine, deps.HistoryDB, deps.Config.DefaultPositionValue, deps.Log)
	alertHandler := alerthandlers.NewHandler(deps.Monitor, deps.Log)
	marketdataHandler := marketdatahandlers.NewHandler(deps.HistoryDB, deps.Log)
	systemHandlers := NewSystemHandlers(deps.Log)

	r.Route("/api", func(r chi.Router) {
		riskHandler.RegisterRoutes(r)
		stressHandler.RegisterRoutes(r)
		alertHandler.RegisterRoutes(r)
		marketdataHandler.RegisterRoutes(r)
		systemHandlers.RegisterRoutes(r)
	})

	return &Server{
		router: r,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", deps.Config.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Router exposes the router, mainly for tests
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with method, path, status and duration
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("Request")
		})
	}
}
