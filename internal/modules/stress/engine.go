// Package stress applies named hypothetical market shocks to a position map
// and runs volatility sensitivity analysis.
package stress

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// defaultCorrelation is applied to non-index instruments when a scenario
// does not specify its own correlation factor.
const defaultCorrelation = 0.8

// indexSymbol marks the instrument that takes the raw index shock.
const indexSymbol = "^NSEI"

// ErrUnknownScenario is returned when a scenario name is not in the catalog.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a named hypothetical shock. IndexShock is a negative
// fraction applied to the index instrument. Correlation scales the shock
// for all other instruments; 0 means unset (the default is applied).
// VolMultiplier is only used by sensitivity analysis, not by ApplyScenario.
type Scenario struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	IndexShock    float64 `json:"index_shock"`
	Correlation   float64 `json:"correlation,omitempty"`
	VolMultiplier float64 `json:"vol_multiplier,omitempty"`
}

// AssetResult is the stress outcome for one instrument.
type AssetResult struct {
	Position float64 `json:"position"`
	Loss     float64 `json:"loss"`
	LossPct  float64 `json:"loss_pct"`
}

// Result is the outcome of applying one scenario to a position map.
type Result struct {
	ScenarioName string                 `json:"scenario_name"`
	TotalLoss    float64                `json:"total_loss"`
	Assets       map[string]AssetResult `json:"asset_breakdown"`
}

// SensitivityPoint is one row of the volatility sensitivity table.
type SensitivityPoint struct {
	VolMultiplier  float64 `json:"vol_multiplier"`
	AnnualVolPct   float64 `json:"annual_vol"`
	EstimatedVaR99 float64 `json:"estimated_var_99"`
}

// volMultipliers is the fixed multiplier grid for sensitivity analysis.
var volMultipliers = []float64{0.5, 0.75, 1.0, 1.5, 2.0, 3.0}

// Engine applies stress scenarios from a fixed catalog. It is stateless.
type Engine struct {
	scenarios map[string]Scenario
}

// NewEngine creates a stress test engine with the built-in scenario catalog.
func NewEngine() *Engine {
	return &Engine{
		scenarios: map[string]Scenario{
			"market_crash": {
				Key:         "market_crash",
				Name:        "Market Crash (-3σ)",
				IndexShock:  -0.15,
				Correlation: 0.9,
			},
			"covid_style": {
				Key:         "covid_style",
				Name:        "COVID-style Crash",
				IndexShock:  -0.38, // March 2020 drawdown
				Correlation: 0.95,
			},
			"volatility_spike": {
				Key:           "volatility_spike",
				Name:          "Volatility Spike",
				IndexShock:    -0.10,
				VolMultiplier: 2.5,
			},
			"2008_crisis": {
				Key:         "2008_crisis",
				Name:        "2008-style Crisis",
				IndexShock:  -0.52, // 2008 peak to trough
				Correlation: 0.98,
			},
		},
	}
}

// Scenarios lists the catalog, ordered by key for stable output.
func (e *Engine) Scenarios() []Scenario {
	keys := make([]string, 0, len(e.scenarios))
	for k := range e.scenarios {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Scenario, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.scenarios[k])
	}
	return out
}

// ApplyScenario applies the named scenario to a map of position values.
// The index instrument takes the raw shock; every other instrument takes
// the shock scaled by the scenario's correlation factor (default 0.8).
func (e *Engine) ApplyScenario(name string, positions map[string]float64) (Result, error) {
	scenario, ok := e.scenarios[name]
	if !ok {
		return Result{}, ErrUnknownScenario
	}

	assets := make(map[string]AssetResult, len(positions))
	totalLoss := 0.0

	for symbol, position := range positions {
		var loss float64
		if strings.Contains(symbol, indexSymbol) {
			loss = position * math.Abs(scenario.IndexShock)
		} else {
			correlation := scenario.Correlation
			if correlation == 0 {
				correlation = defaultCorrelation
			}
			loss = position * math.Abs(scenario.IndexShock*correlation)
		}

		lossPct := 0.0
		if position != 0 {
			lossPct = loss / position * 100
		}

		assets[symbol] = AssetResult{
			Position: position,
			Loss:     loss,
			LossPct:  lossPct,
		}
		totalLoss += loss
	}

	return Result{
		ScenarioName: scenario.Name,
		TotalLoss:    totalLoss,
		Assets:       assets,
	}, nil
}

// SensitivityAnalysis scales the base annual volatility across a fixed
// multiplier grid and estimates the 99% VaR at each point using the flat
// 2.33 normal-quantile approximation. This is an exploratory estimate, not
// a replacement for the full calculators.
func (e *Engine) SensitivityAnalysis(positionValue, baseVolatility float64) []SensitivityPoint {
	points := make([]SensitivityPoint, 0, len(volMultipliers))

	for _, m := range volMultipliers {
		scaledVol := baseVolatility * m
		varImpact := positionValue * (scaledVol / math.Sqrt(252)) * 2.33

		points = append(points, SensitivityPoint{
			VolMultiplier:  m,
			AnnualVolPct:   scaledVol * 100,
			EstimatedVaR99: varImpact,
		})
	}

	return points
}
