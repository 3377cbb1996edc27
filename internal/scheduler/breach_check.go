package scheduler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/modules/alerts"
	"github.com/avramidis/riskwatch/internal/modules/marketdata"
	"github.com/avramidis/riskwatch/internal/modules/returns"
	"github.com/avramidis/riskwatch/internal/modules/risk"
)

// BreachCheckJob feeds the latest return of every stored position into the
// alert monitor, using current historical VaR estimates as thresholds.
type BreachCheckJob struct {
	historyDB     *marketdata.HistoryDB
	returnsEngine *returns.Engine
	calculator    *risk.Calculator
	monitor       *alerts.Monitor
	lookback      int
	log           zerolog.Logger
}

// NewBreachCheckJob creates a breach check job
func NewBreachCheckJob(
	historyDB *marketdata.HistoryDB,
	returnsEngine *returns.Engine,
	calculator *risk.Calculator,
	monitor *alerts.Monitor,
	lookback int,
	log zerolog.Logger,
) *BreachCheckJob {
	return &BreachCheckJob{
		historyDB:     historyDB,
		returnsEngine: returnsEngine,
		calculator:    calculator,
		monitor:       monitor,
		lookback:      lookback,
		log:           log.With().Str("job", "breach_check").Logger(),
	}
}

// Name implements Job
func (j *BreachCheckJob) Name() string {
	return "breach_check"
}

// Run implements Job. Symbols without enough history are skipped, not
// treated as failures; a symbol only fails the job on a storage error.
func (j *BreachCheckJob) Run() error {
	positions, err := j.historyDB.GetPositions()
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}

	checked := 0
	for _, pos := range positions {
		closes, err := j.historyDB.GetClosePrices(pos.Symbol, j.lookback)
		if err != nil {
			return fmt.Errorf("failed to load prices for %s: %w", pos.Symbol, err)
		}

		rets, err := j.returnsEngine.ComputeReturns(closes)
		if err != nil {
			j.log.Debug().Str("symbol", pos.Symbol).Msg("Not enough history, skipping")
			continue
		}

		var95, err95 := j.calculator.HistoricalVaR(rets, 0.95, pos.Value)
		var99, err99 := j.calculator.HistoricalVaR(rets, 0.99, pos.Value)
		if errors.Is(err95, risk.ErrInsufficientSample) || errors.Is(err99, risk.ErrInsufficientSample) {
			j.log.Debug().Str("symbol", pos.Symbol).Msg("Sample too small for VaR, skipping")
			continue
		}

		latest := rets[len(rets)-1]
		j.monitor.CheckBreach(latest, var95.ReturnPct, var99.ReturnPct, pos.Symbol)
		checked++
	}

	j.log.Debug().Int("checked", checked).Int("positions", len(positions)).Msg("Breach check complete")
	return nil
}
