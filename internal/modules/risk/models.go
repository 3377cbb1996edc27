package risk

import "fmt"

// Method identifies the estimation method behind a risk estimate.
type Method string

const (
	// MethodHistorical is historical simulation (empirical quantile, no
	// distributional assumption).
	MethodHistorical Method = "historical"
	// MethodParametric assumes i.i.d. normally distributed returns.
	MethodParametric Method = "parametric"
	// MethodExpectedShortfall is the average loss in the tail beyond VaR.
	MethodExpectedShortfall Method = "expected_shortfall"
)

// MetricKey identifies one (method, confidence) entry in the sparse metrics
// map produced by CalculateAllMetrics. A missing key means the estimate was
// unavailable for that combination.
type MetricKey struct {
	Method     Method
	Confidence float64
}

// Label returns a stable string form of the key for JSON responses,
// e.g. "var_95%_hist", "var_99%_param", "es_95%".
func (k MetricKey) Label() string {
	pct := int(k.Confidence * 100)
	switch k.Method {
	case MethodHistorical:
		return fmt.Sprintf("var_%d%%_hist", pct)
	case MethodParametric:
		return fmt.Sprintf("var_%d%%_param", pct)
	case MethodExpectedShortfall:
		return fmt.Sprintf("es_%d%%", pct)
	}
	return fmt.Sprintf("%s_%d%%", k.Method, pct)
}

// Estimate is a single VaR or Expected Shortfall result. ReturnPct is the
// loss as a positive percentage of the position regardless of the sign
// convention of the underlying return; Dollar is ReturnPct applied to the
// position value.
type Estimate struct {
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
	ReturnPct  float64 `json:"return_pct"`
	Dollar     float64 `json:"dollar"`
}
