// Package returns converts price series into return series and derives
// summary statistics used by the risk and backtesting modules.
package returns

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// ErrInsufficientData is returned when fewer than 2 usable prices are available.
var ErrInsufficientData = errors.New("insufficient data")

// SummaryStats holds aggregate statistics for a return series.
// Mean and StdDev are annualized; Kurtosis is excess kurtosis.
type SummaryStats struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std"`
	Skew     float64 `json:"skew"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Sharpe   float64 `json:"sharpe"`
}

// Engine computes returns and return statistics. It is stateless.
type Engine struct{}

// NewEngine creates a new returns engine
func NewEngine() *Engine {
	return &Engine{}
}

// ComputeReturns converts a price series into daily log returns
// ln(P[t] / P[t-1]). Non-finite values (from zero or negative prices)
// are dropped from the result.
func (e *Engine) ComputeReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, ErrInsufficientData
	}

	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		r := math.Log(prices[i] / prices[i-1])
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		rets = append(rets, r)
	}

	if len(rets) == 0 {
		return nil, ErrInsufficientData
	}

	return rets, nil
}

// SummaryStats computes annualized summary statistics for a return series.
// Sharpe is defined as 0 when volatility is exactly 0.
func (e *Engine) SummaryStats(rets []float64) (SummaryStats, error) {
	if len(rets) == 0 {
		return SummaryStats{}, ErrInsufficientData
	}

	mean := stat.Mean(rets, nil)
	std := stat.StdDev(rets, nil)
	if math.IsNaN(std) {
		// Single observation: sample standard deviation is undefined
		std = 0
	}

	minRet := rets[0]
	maxRet := rets[0]
	for _, r := range rets {
		if r < minRet {
			minRet = r
		}
		if r > maxRet {
			maxRet = r
		}
	}

	sqrtDays := math.Sqrt(TradingDaysPerYear)

	sharpe := 0.0
	if std > 0 {
		sharpe = (mean / std) * sqrtDays
	}

	return SummaryStats{
		Mean:     mean * TradingDaysPerYear,
		StdDev:   std * sqrtDays,
		Skew:     skewOrZero(rets),
		Kurtosis: kurtosisOrZero(rets),
		Min:      minRet,
		Max:      maxRet,
		Sharpe:   sharpe,
	}, nil
}

// RollingVolatility computes a rolling standard deviation over the given
// window, optionally annualized by sqrt(252). The returned series is aligned
// to the input; entries before the first full window are 0.
func (e *Engine) RollingVolatility(rets []float64, window int, annualize bool) []float64 {
	if window <= 0 || len(rets) < window {
		return []float64{}
	}

	vol := talib.StdDev(rets, window, 1.0)

	if annualize {
		factor := math.Sqrt(TradingDaysPerYear)
		for i := range vol {
			vol[i] *= factor
		}
	}

	return vol
}

func skewOrZero(rets []float64) float64 {
	s := stat.Skew(rets, nil)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

func kurtosisOrZero(rets []float64) float64 {
	k := stat.ExKurtosis(rets, nil)
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0
	}
	return k
}
