// Package main is the entry point for the RiskWatch portfolio risk service.
// It wires the price history store, the risk engines (returns, VaR/ES,
// backtesting, stress testing), the breach alert monitor, and the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/avramidis/riskwatch/internal/config"
	"github.com/avramidis/riskwatch/internal/database"
	"github.com/avramidis/riskwatch/internal/modules/alerts"
	"github.com/avramidis/riskwatch/internal/modules/backtest"
	"github.com/avramidis/riskwatch/internal/modules/marketdata"
	"github.com/avramidis/riskwatch/internal/modules/returns"
	"github.com/avramidis/riskwatch/internal/modules/risk"
	"github.com/avramidis/riskwatch/internal/modules/stress"
	"github.com/avramidis/riskwatch/internal/scheduler"
	"github.com/avramidis/riskwatch/internal/server"
	"github.com/avramidis/riskwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting RiskWatch")

	// History database holds price series and position values; everything
	// else in the process is stateless except the alert monitor.
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "history.db"),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer db.Close()

	historyDB := marketdata.NewHistoryDB(db.Conn(), log)
	if err := historyDB.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	returnsEngine := returns.NewEngine()
	calculator := risk.NewCalculator()
	backtester := backtest.NewEngine()
	stressEngine := stress.NewEngine()
	monitor := alerts.NewMonitor(cfg.AlertCapacity, log)

	// Background breach checks against the latest stored returns
	sched := scheduler.New(log)
	breachJob := scheduler.NewBreachCheckJob(historyDB, returnsEngine, calculator, monitor, cfg.DefaultLookbackDays, log)
	if err := sched.AddJob(cfg.BreachCheckSchedule, breachJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.BreachCheckSchedule).Msg("Failed to register breach check job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Deps{
		Config:        cfg,
		Log:           log,
		HistoryDB:     historyDB,
		ReturnsEngine: returnsEngine,
		Calculator:    calculator,
		Backtester:    backtester,
		StressEngine:  stressEngine,
		Monitor:       monitor,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	log.Info().Msg("RiskWatch stopped")
}
