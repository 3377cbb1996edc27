// Package backtest validates VaR model accuracy against realized returns
// using the Basel traffic-light approach and the Kupiec
// proportion-of-failures test.
package backtest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avramidis/riskwatch/internal/modules/risk"
)

// MinObservations is the smallest return series Results will backtest.
const MinObservations = 30

// kupiecCriticalValue is the chi-square(1 df) critical value at 95%
// significance. The test's own significance level is fixed and independent
// of the VaR confidence level under validation.
const kupiecCriticalValue = 3.841

// ErrInsufficientHistory is returned when the return series is shorter than MinObservations.
var ErrInsufficientHistory = errors.New("insufficient history")

// baselBand is one row of the regulatory breach-count table.
type baselBand struct {
	maxBreaches int
	light       TrafficLight
	message     string
}

// baselBands holds the Basel traffic-light thresholds per confidence level,
// calibrated for a 250-day window. The thresholds are absolute breach
// counts; they are not rescaled for other window lengths. The 99% table has
// no YELLOW band; that asymmetry comes from the regulatory source table and
// is deliberate.
var baselBands = map[float64][]baselBand{
	0.95: {
		{4, LightGreen, "Model is accurate"},
		{9, LightYellow, "Model needs attention"},
		{math.MaxInt, LightRed, "Model is inadequate"},
	},
	0.99: {
		{2, LightGreen, "Model is accurate"},
		{math.MaxInt, LightRed, "Model is inadequate"},
	},
}

// Engine backtests VaR estimates against a realized return series. It is stateless.
type Engine struct{}

// NewEngine creates a new backtest engine
func NewEngine() *Engine {
	return &Engine{}
}

// CountBreaches counts returns strictly more negative than the VaR
// threshold. The threshold is given as a positive percentage.
func (e *Engine) CountBreaches(rets []float64, varThresholdPct float64) int {
	varDecimal := varThresholdPct / 100

	breaches := 0
	for _, r := range rets {
		if r < -varDecimal {
			breaches++
		}
	}
	return breaches
}

// BaselTrafficLight classifies a breach count using the regulatory table
// for the given confidence level. Confidence levels without their own table
// fall back to the 99% bands.
func (e *Engine) BaselTrafficLight(breaches, totalDays int, confidence float64) (TrafficLight, string) {
	bands, ok := baselBands[confidence]
	if !ok {
		bands = baselBands[0.99]
	}

	for _, band := range bands {
		if breaches <= band.maxBreaches {
			return band.light, band.message
		}
	}

	last := bands[len(bands)-1]
	return last.light, last.message
}

// KupiecTest runs the proportion-of-failures likelihood-ratio test. The
// null hypothesis is that the true breach probability equals 1-confidence.
// The statistic is defined as 0 when the breach count is 0 or equals the
// sample size (degenerate likelihood ratio).
func (e *Engine) KupiecTest(breaches, totalDays int, confidence float64) KupiecResult {
	expectedRate := 1 - confidence
	b := float64(breaches)
	n := float64(totalDays)

	var lrStat float64
	if breaches == 0 || breaches == totalDays {
		lrStat = 0
	} else {
		observedRate := b / n
		logNull := b*math.Log(expectedRate) + (n-b)*math.Log(1-expectedRate)
		logAlt := b*math.Log(observedRate) + (n-b)*math.Log(1-observedRate)
		lrStat = -2 * (logNull - logAlt)
	}

	chi2 := distuv.ChiSquared{K: 1}
	pValue := chi2.Survival(lrStat)

	reject := lrStat > kupiecCriticalValue
	interpretation := "Accept model"
	if reject {
		interpretation = "Reject model"
	}

	return KupiecResult{
		LRStatistic:    lrStat,
		CriticalValue:  kupiecCriticalValue,
		PValue:         pValue,
		RejectModel:    reject,
		Interpretation: interpretation,
	}
}

// Results backtests the historical VaR estimate at each confidence level
// against the realized return series. Confidence levels without a
// historical VaR entry in the metrics map are silently omitted.
func (e *Engine) Results(rets []float64, metrics map[risk.MetricKey]risk.Estimate, positionValue float64) (map[string]Report, error) {
	if len(rets) < MinObservations {
		return nil, ErrInsufficientHistory
	}

	results := make(map[string]Report)
	totalDays := len(rets)

	for _, confidence := range risk.ConfidenceLevels {
		est, ok := metrics[risk.MetricKey{Method: risk.MethodHistorical, Confidence: confidence}]
		if !ok {
			continue
		}

		breaches := e.CountBreaches(rets, est.ReturnPct)
		light, message := e.BaselTrafficLight(breaches, totalDays, confidence)
		kupiec := e.KupiecTest(breaches, totalDays, confidence)

		label := confidenceLabel(confidence)
		results[label] = Report{
			Confidence:     confidence,
			Breaches:       breaches,
			TotalDays:      totalDays,
			BreachRate:     float64(breaches) / float64(totalDays),
			ExpectedRate:   1 - confidence,
			TrafficLight:   light,
			TrafficMessage: message,
			Kupiec:         kupiec,
		}
	}

	return results, nil
}

// confidenceLabel formats a confidence level as a percentage key, e.g. "95%".
func confidenceLabel(confidence float64) string {
	return fmt.Sprintf("%d%%", int(confidence*100))
}
