package backtest

import (
	"errors"
	"math"
	"testing"

	"github.com/avramidis/riskwatch/internal/modules/risk"
)

func TestCountBreaches(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		rets      []float64
		threshold float64
		want      int
	}{
		{"empty series", []float64{}, 2.0, 0},
		{"no breaches", []float64{0.01, -0.01, 0.005}, 2.0, 0},
		{"two breaches", []float64{-0.03, -0.01, 0.02, -0.025}, 2.0, 2},
		{"boundary is not a breach", []float64{-0.02}, 2.0, 0},
		{"just past the boundary", []float64{-0.0200001}, 2.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.CountBreaches(tt.rets, tt.threshold); got != tt.want {
				t.Errorf("CountBreaches() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBaselTrafficLight(t *testing.T) {
	e := NewEngine()

	t.Run("95% bands", func(t *testing.T) {
		for _, b := range []int{0, 1, 2, 3, 4} {
			if light, _ := e.BaselTrafficLight(b, 250, 0.95); light != LightGreen {
				t.Errorf("breaches=%d: light = %v, want GREEN", b, light)
			}
		}
		for _, b := range []int{5, 6, 7, 8, 9} {
			if light, _ := e.BaselTrafficLight(b, 250, 0.95); light != LightYellow {
				t.Errorf("breaches=%d: light = %v, want YELLOW", b, light)
			}
		}
		for _, b := range []int{10, 11, 25, 100} {
			if light, _ := e.BaselTrafficLight(b, 250, 0.95); light != LightRed {
				t.Errorf("breaches=%d: light = %v, want RED", b, light)
			}
		}
	})

	t.Run("99% has no yellow band", func(t *testing.T) {
		for _, b := range []int{0, 1, 2} {
			if light, _ := e.BaselTrafficLight(b, 250, 0.99); light != LightGreen {
				t.Errorf("breaches=%d: light = %v, want GREEN", b, light)
			}
		}
		for _, b := range []int{3, 4, 5, 9, 10, 50} {
			light, _ := e.BaselTrafficLight(b, 250, 0.99)
			if light != LightRed {
				t.Errorf("breaches=%d: light = %v, want RED", b, light)
			}
			if light == LightYellow {
				t.Errorf("breaches=%d: YELLOW must never appear at 99%%", b)
			}
		}
	})

	t.Run("bands are absolute counts, independent of totalDays", func(t *testing.T) {
		for _, days := range []int{100, 250, 500} {
			if light, _ := e.BaselTrafficLight(4, days, 0.95); light != LightGreen {
				t.Errorf("days=%d: light = %v, want GREEN", days, light)
			}
		}
	})
}

func TestKupiecTest(t *testing.T) {
	e := NewEngine()

	t.Run("degenerate cases have zero statistic", func(t *testing.T) {
		for _, conf := range []float64{0.95, 0.99} {
			for _, breaches := range []int{0, 250} {
				res := e.KupiecTest(breaches, 250, conf)
				if res.LRStatistic != 0 {
					t.Errorf("breaches=%d conf=%v: LR = %v, want 0", breaches, conf, res.LRStatistic)
				}
				if res.RejectModel {
					t.Errorf("breaches=%d conf=%v: model rejected at LR=0", breaches, conf)
				}
				if math.Abs(res.PValue-1.0) > 1e-12 {
					t.Errorf("breaches=%d conf=%v: p = %v, want 1", breaches, conf, res.PValue)
				}
			}
		}
	})

	t.Run("too few breaches rejects the model", func(t *testing.T) {
		// 5 breaches in 250 days at 95%: expected 12.5, LR ~ 6.07
		res := e.KupiecTest(5, 250, 0.95)
		if math.Abs(res.LRStatistic-6.0715) > 1e-3 {
			t.Errorf("LR = %v, want ~6.0715", res.LRStatistic)
		}
		if !res.RejectModel {
			t.Error("RejectModel = false, want true for LR > 3.841")
		}
		if res.Interpretation != "Reject model" {
			t.Errorf("Interpretation = %q, want %q", res.Interpretation, "Reject model")
		}
		if res.PValue > 0.05 {
			t.Errorf("PValue = %v, want < 0.05", res.PValue)
		}
	})

	t.Run("breach rate near expected accepts the model", func(t *testing.T) {
		res := e.KupiecTest(12, 250, 0.95)
		if res.RejectModel {
			t.Errorf("RejectModel = true for LR = %v, want accept", res.LRStatistic)
		}
		if res.Interpretation != "Accept model" {
			t.Errorf("Interpretation = %q, want %q", res.Interpretation, "Accept model")
		}
	})

	t.Run("critical value is fixed regardless of confidence", func(t *testing.T) {
		for _, conf := range []float64{0.95, 0.99} {
			if res := e.KupiecTest(3, 250, conf); res.CriticalValue != 3.841 {
				t.Errorf("conf=%v: CriticalValue = %v, want 3.841", conf, res.CriticalValue)
			}
		}
	})
}

// syntheticReturns builds a 250-day series with the given number of 3%
// losses and small positive returns elsewhere.
func syntheticReturns(breaches int) []float64 {
	rets := make([]float64, 250)
	for i := range rets {
		if i < breaches {
			rets[i] = -0.03
		} else {
			rets[i] = 0.001
		}
	}
	return rets
}

func TestResults(t *testing.T) {
	e := NewEngine()

	metrics := map[risk.MetricKey]risk.Estimate{
		{Method: risk.MethodHistorical, Confidence: 0.95}: {Confidence: 0.95, Method: risk.MethodHistorical, ReturnPct: 2.0},
		{Method: risk.MethodHistorical, Confidence: 0.99}: {Confidence: 0.99, Method: risk.MethodHistorical, ReturnPct: 4.0},
	}

	t.Run("insufficient history", func(t *testing.T) {
		_, err := e.Results(make([]float64, 29), metrics, 1_000_000)
		if !errors.Is(err, ErrInsufficientHistory) {
			t.Fatalf("Results() error = %v, want ErrInsufficientHistory", err)
		}
	})

	t.Run("five breaches is yellow, four is green at 95%", func(t *testing.T) {
		results, err := e.Results(syntheticReturns(5), metrics, 1_000_000)
		if err != nil {
			t.Fatalf("Results() unexpected error: %v", err)
		}

		r95, ok := results["95%"]
		if !ok {
			t.Fatal("missing 95% report")
		}
		if r95.Breaches != 5 {
			t.Errorf("Breaches = %d, want 5", r95.Breaches)
		}
		if r95.TrafficLight != LightYellow {
			t.Errorf("TrafficLight = %v, want YELLOW", r95.TrafficLight)
		}
		if math.Abs(r95.BreachRate-5.0/250) > 1e-12 {
			t.Errorf("BreachRate = %v, want %v", r95.BreachRate, 5.0/250)
		}
		if math.Abs(r95.ExpectedRate-0.05) > 1e-12 {
			t.Errorf("ExpectedRate = %v, want 0.05", r95.ExpectedRate)
		}

		// The 3% losses do not cross the 4% threshold at 99%
		r99, ok := results["99%"]
		if !ok {
			t.Fatal("missing 99% report")
		}
		if r99.Breaches != 0 {
			t.Errorf("99%% Breaches = %d, want 0", r99.Breaches)
		}
		if r99.TrafficLight != LightGreen {
			t.Errorf("99%% TrafficLight = %v, want GREEN", r99.TrafficLight)
		}
		if r99.Kupiec.LRStatistic != 0 {
			t.Errorf("99%% Kupiec LR = %v, want 0 for zero breaches", r99.Kupiec.LRStatistic)
		}

		greener, err := e.Results(syntheticReturns(4), metrics, 1_000_000)
		if err != nil {
			t.Fatalf("Results() unexpected error: %v", err)
		}
		if greener["95%"].TrafficLight != LightGreen {
			t.Errorf("TrafficLight = %v, want GREEN for 4 breaches", greener["95%"].TrafficLight)
		}
	})

	t.Run("confidence levels without a historical entry are omitted", func(t *testing.T) {
		partial := map[risk.MetricKey]risk.Estimate{
			{Method: risk.MethodHistorical, Confidence: 0.95}: {Confidence: 0.95, Method: risk.MethodHistorical, ReturnPct: 2.0},
			{Method: risk.MethodParametric, Confidence: 0.99}: {Confidence: 0.99, Method: risk.MethodParametric, ReturnPct: 4.0},
		}

		results, err := e.Results(syntheticReturns(2), partial, 1_000_000)
		if err != nil {
			t.Fatalf("Results() unexpected error: %v", err)
		}
		if _, ok := results["95%"]; !ok {
			t.Error("expected a 95% report")
		}
		if _, ok := results["99%"]; ok {
			t.Error("99% report should be omitted without a historical VaR entry")
		}
	})
}
