// Package risk estimates Value at Risk and Expected Shortfall from a
// return series using historical simulation and a parametric normal model.
package risk

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinSample is the smallest return series either VaR method will accept.
// Quantile estimates on shorter windows are statistically meaningless.
const MinSample = 10

// ConfidenceLevels are the levels CalculateAllMetrics evaluates.
var ConfidenceLevels = []float64{0.95, 0.99}

// ErrInsufficientSample is returned when a return series is shorter than MinSample.
var ErrInsufficientSample = errors.New("insufficient sample")

// Calculator computes VaR and ES estimates. It is stateless.
type Calculator struct{}

// NewCalculator creates a new VaR calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// HistoricalVaR estimates VaR by historical simulation: the empirical
// quantile of the sorted return series at the (1-confidence) cutoff.
// The index may legitimately be 0 for small samples.
func (c *Calculator) HistoricalVaR(rets []float64, confidence, positionValue float64) (Estimate, error) {
	if len(rets) < MinSample {
		return Estimate{}, ErrInsufficientSample
	}

	sorted := sortedCopy(rets)
	k := tailIndex(len(sorted), confidence)
	varReturn := math.Abs(sorted[k])

	return Estimate{
		Confidence: confidence,
		Method:     MethodHistorical,
		ReturnPct:  varReturn * 100,
		Dollar:     varReturn * positionValue,
	}, nil
}

// ParametricVaR estimates VaR assuming normally distributed returns:
// |mean + z(1-confidence) * std|. The normality assumption is a documented
// limitation of the method, not a correctness bug.
func (c *Calculator) ParametricVaR(rets []float64, confidence, positionValue float64) (Estimate, error) {
	if len(rets) < MinSample {
		return Estimate{}, ErrInsufficientSample
	}

	mean := stat.Mean(rets, nil)
	std := stat.StdDev(rets, nil)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - confidence)
	varReturn := math.Abs(mean + z*std)

	return Estimate{
		Confidence: confidence,
		Method:     MethodParametric,
		ReturnPct:  varReturn * 100,
		Dollar:     varReturn * positionValue,
	}, nil
}

// ExpectedShortfall averages all returns at or beyond the historical VaR
// cutoff (boundary inclusive), so ES >= historical VaR at the same
// confidence by construction.
func (c *Calculator) ExpectedShortfall(rets []float64, confidence, positionValue float64) (Estimate, error) {
	if len(rets) < MinSample {
		return Estimate{}, ErrInsufficientSample
	}

	sorted := sortedCopy(rets)
	k := tailIndex(len(sorted), confidence)

	sum := 0.0
	for _, r := range sorted[:k+1] {
		sum += r
	}
	esReturn := math.Abs(sum / float64(k+1))

	return Estimate{
		Confidence: confidence,
		Method:     MethodExpectedShortfall,
		ReturnPct:  esReturn * 100,
		Dollar:     esReturn * positionValue,
	}, nil
}

// CalculateAllMetrics computes historical VaR, parametric VaR, and ES at
// each confidence level. Individual failures are skipped, not propagated;
// callers must treat the result as a sparse mapping where a missing key
// means the estimate is unavailable.
func (c *Calculator) CalculateAllMetrics(rets []float64, positionValue float64) map[MetricKey]Estimate {
	metrics := make(map[MetricKey]Estimate)

	for _, conf := range ConfidenceLevels {
		if est, err := c.HistoricalVaR(rets, conf, positionValue); err == nil {
			metrics[MetricKey{MethodHistorical, conf}] = est
		}
		if est, err := c.ParametricVaR(rets, conf, positionValue); err == nil {
			metrics[MetricKey{MethodParametric, conf}] = est
		}
		if est, err := c.ExpectedShortfall(rets, conf, positionValue); err == nil {
			metrics[MetricKey{MethodExpectedShortfall, conf}] = est
		}
	}

	return metrics
}

// tailIndex is the order-statistic index of the VaR cutoff:
// floor((1-confidence) * n).
func tailIndex(n int, confidence float64) int {
	return int((1 - confidence) * float64(n))
}

func sortedCopy(rets []float64) []float64 {
	sorted := make([]float64, len(rets))
	copy(sorted, rets)
	sort.Float64s(sorted)
	return sorted
}
