// Package alerts maintains a bounded, append-only log of VaR breach alerts
// with lifetime per-level breach counters.
package alerts

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCapacity is the default ring buffer size for the alert log.
const DefaultCapacity = 100

// Severity indicates how serious a breach is.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Level identifies which VaR confidence level was breached.
type Level string

const (
	Level95 Level = "95%"
	Level99 Level = "99%"
)

// Alert is a single recorded VaR breach.
type Alert struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Severity  Severity  `json:"severity"`
	Symbol    string    `json:"symbol"`
	ReturnPct float64   `json:"return"`    // Signed return as a percentage
	Threshold float64   `json:"threshold"` // Breached VaR threshold (percentage)
	Excess    float64   `json:"excess"`    // Amount by which the threshold was exceeded
	Timestamp time.Time `json:"timestamp"`
}

// Summary aggregates the current state of the monitor.
type Summary struct {
	TotalAlerts int     `json:"total_alerts"`
	Breaches95  int     `json:"95_breaches"`
	Breaches99  int     `json:"99_breaches"`
	Recent      []Alert `json:"recent"`
}

// Monitor is a fixed-capacity breach log. The ring buffer and the lifetime
// counters are the only mutable state in the risk core; both are guarded by
// a single mutex since eviction-then-append is not atomic on its own.
type Monitor struct {
	mu          sync.Mutex
	capacity    int
	alerts      []Alert
	breachCount map[Level]int
	log         zerolog.Logger
}

// NewMonitor creates an alert monitor with the given ring capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewMonitor(capacity int, log zerolog.Logger) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Monitor{
		capacity:    capacity,
		alerts:      make([]Alert, 0, capacity),
		breachCount: map[Level]int{Level95: 0, Level99: 0},
		log:         log.With().Str("component", "alert_monitor").Logger(),
	}
}

// CheckBreach compares |currentReturn| (as a percentage) against the 99%
// threshold first, then the 95% threshold. Classification is mutually
// exclusive: a 99% breach does not also record a 95% breach. The returned
// slice holds the emitted alert, or is empty when no threshold was crossed.
func (m *Monitor) CheckBreach(currentReturn, var95, var99 float64, symbol string) []Alert {
	absReturn := math.Abs(currentReturn * 100)

	var breaches []Alert
	switch {
	case absReturn > var99:
		breaches = append(breaches, Alert{
			ID:        uuid.NewString(),
			Level:     Level99,
			Severity:  SeverityCritical,
			Symbol:    symbol,
			ReturnPct: currentReturn * 100,
			Threshold: var99,
			Excess:    absReturn - var99,
			Timestamp: time.Now(),
		})
	case absReturn > var95:
		breaches = append(breaches, Alert{
			ID:        uuid.NewString(),
			Level:     Level95,
			Severity:  SeverityWarning,
			Symbol:    symbol,
			ReturnPct: currentReturn * 100,
			Threshold: var95,
			Excess:    absReturn - var95,
			Timestamp: time.Now(),
		})
	}

	if len(breaches) == 0 {
		return breaches
	}

	m.mu.Lock()
	for _, alert := range breaches {
		m.breachCount[alert.Level]++
		if len(m.alerts) >= m.capacity {
			// Evict oldest before appending
			m.alerts = m.alerts[1:]
		}
		m.alerts = append(m.alerts, alert)
	}
	m.mu.Unlock()

	for _, alert := range breaches {
		m.log.Warn().
			Str("level", string(alert.Level)).
			Str("severity", string(alert.Severity)).
			Str("symbol", alert.Symbol).
			Float64("return_pct", alert.ReturnPct).
			Float64("threshold", alert.Threshold).
			Float64("excess", alert.Excess).
			Msg("VaR breach detected")
	}

	return breaches
}

// Recent returns the last n alerts in insertion order, oldest first.
func (m *Monitor) Recent(n int) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recentLocked(n)
}

// Summary returns the current ring size, the lifetime per-level breach
// counters (which survive ring eviction), and the 5 most recent alerts.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Summary{
		TotalAlerts: len(m.alerts),
		Breaches95:  m.breachCount[Level95],
		Breaches99:  m.breachCount[Level99],
		Recent:      m.recentLocked(5),
	}
}

// Reset clears the ring and zeroes both lifetime counters. This is the
// only operation that can shrink the counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = m.alerts[:0]
	m.breachCount = map[Level]int{Level95: 0, Level99: 0}
	m.log.Info().Msg("Alert monitor reset")
}

func (m *Monitor) recentLocked(n int) []Alert {
	if n <= 0 {
		return []Alert{}
	}
	start := len(m.alerts) - n
	if start < 0 {
		start = 0
	}
	out := make([]Alert, len(m.alerts)-start)
	copy(out, m.alerts[start:])
	return out
}
