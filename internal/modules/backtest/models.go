package backtest

// TrafficLight is the Basel traffic-light classification of model adequacy.
type TrafficLight string

const (
	LightGreen  TrafficLight = "GREEN"
	LightYellow TrafficLight = "YELLOW"
	LightRed    TrafficLight = "RED"
)

// KupiecResult holds the outcome of the Kupiec proportion-of-failures test.
type KupiecResult struct {
	LRStatistic    float64 `json:"lr_statistic"`
	CriticalValue  float64 `json:"critical_value"`
	PValue         float64 `json:"p_value"`
	RejectModel    bool    `json:"reject_model"`
	Interpretation string  `json:"interpretation"`
}

// Report is the validation result for one confidence level.
type Report struct {
	Confidence     float64      `json:"confidence"`
	Breaches       int          `json:"breaches"`
	TotalDays      int          `json:"total_days"`
	BreachRate     float64      `json:"breach_rate"`
	ExpectedRate   float64      `json:"expected_rate"`
	TrafficLight   TrafficLight `json:"traffic_light"`
	TrafficMessage string       `json:"traffic_message"`
	Kupiec         KupiecResult `json:"kupiec_test"`
}
