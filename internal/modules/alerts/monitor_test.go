package alerts

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(capacity int) *Monitor {
	return NewMonitor(capacity, zerolog.Nop())
}

func TestCheckBreachWarning(t *testing.T) {
	m := newTestMonitor(100)

	breaches := m.CheckBreach(0.12, 10.0, 15.0, "RELIANCE.NS")

	require.Len(t, breaches, 1)
	alert := breaches[0]
	assert.Equal(t, Level95, alert.Level)
	assert.Equal(t, SeverityWarning, alert.Severity)
	assert.Equal(t, "RELIANCE.NS", alert.Symbol)
	assert.InDelta(t, 12.0, alert.ReturnPct, 1e-9)
	assert.InDelta(t, 10.0, alert.Threshold, 1e-9)
	assert.InDelta(t, 2.0, alert.Excess, 1e-9)
	assert.NotEmpty(t, alert.ID)
	assert.False(t, alert.Timestamp.IsZero())

	summary := m.Summary()
	assert.Equal(t, 1, summary.TotalAlerts)
	assert.Equal(t, 1, summary.Breaches95)
	assert.Equal(t, 0, summary.Breaches99)
}

func TestCheckBreachCriticalIsExclusive(t *testing.T) {
	m := newTestMonitor(100)

	breaches := m.CheckBreach(-0.20, 10.0, 15.0, "PORTFOLIO")

	require.Len(t, breaches, 1, "a 99%% breach must not also record a 95%% alert")
	alert := breaches[0]
	assert.Equal(t, Level99, alert.Level)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.InDelta(t, -20.0, alert.ReturnPct, 1e-9)
	assert.InDelta(t, 15.0, alert.Threshold, 1e-9)
	assert.InDelta(t, 5.0, alert.Excess, 1e-9)

	summary := m.Summary()
	assert.Equal(t, 0, summary.Breaches95)
	assert.Equal(t, 1, summary.Breaches99)
}

func TestCheckBreachNoBreach(t *testing.T) {
	m := newTestMonitor(100)

	breaches := m.CheckBreach(0.05, 10.0, 15.0, "TCS.NS")

	assert.Empty(t, breaches)
	assert.Equal(t, 0, m.Summary().TotalAlerts)
}

func TestRingEvictionKeepsLifetimeCounters(t *testing.T) {
	m := newTestMonitor(100)

	for i := 0; i < 150; i++ {
		m.CheckBreach(-0.20, 10.0, 15.0, fmt.Sprintf("SYM%d", i))
	}

	summary := m.Summary()
	assert.Equal(t, 100, summary.TotalAlerts, "ring is bounded at capacity")
	assert.Equal(t, 150, summary.Breaches99, "lifetime counter survives eviction")

	// Oldest 50 were evicted; the ring starts at SYM50
	recent := m.Recent(100)
	require.Len(t, recent, 100)
	assert.Equal(t, "SYM50", recent[0].Symbol)
	assert.Equal(t, "SYM149", recent[99].Symbol)
}

func TestRecentReturnsInsertionOrder(t *testing.T) {
	m := newTestMonitor(10)

	for i := 0; i < 5; i++ {
		m.CheckBreach(-0.20, 10.0, 15.0, fmt.Sprintf("SYM%d", i))
	}

	recent := m.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "SYM2", recent[0].Symbol)
	assert.Equal(t, "SYM4", recent[2].Symbol)

	assert.Empty(t, m.Recent(0))
	assert.Len(t, m.Recent(50), 5)
}

func TestSummaryRecentIsCappedAtFive(t *testing.T) {
	m := newTestMonitor(100)

	for i := 0; i < 8; i++ {
		m.CheckBreach(0.12, 10.0, 15.0, fmt.Sprintf("SYM%d", i))
	}

	summary := m.Summary()
	require.Len(t, summary.Recent, 5)
	assert.Equal(t, "SYM3", summary.Recent[0].Symbol)
	assert.Equal(t, "SYM7", summary.Recent[4].Symbol)
}

func TestReset(t *testing.T) {
	m := newTestMonitor(100)

	m.CheckBreach(-0.20, 10.0, 15.0, "A")
	m.CheckBreach(0.12, 10.0, 15.0, "B")

	m.Reset()

	summary := m.Summary()
	assert.Equal(t, 0, summary.TotalAlerts)
	assert.Equal(t, 0, summary.Breaches95)
	assert.Equal(t, 0, summary.Breaches99)
	assert.Empty(t, summary.Recent)

	// Monitor keeps working after a reset
	breaches := m.CheckBreach(-0.20, 10.0, 15.0, "C")
	assert.Len(t, breaches, 1)
	assert.Equal(t, 1, m.Summary().Breaches99)
}

func TestDefaultCapacityFallback(t *testing.T) {
	m := NewMonitor(0, zerolog.Nop())

	for i := 0; i < DefaultCapacity+10; i++ {
		m.CheckBreach(-0.20, 10.0, 15.0, "X")
	}
	assert.Equal(t, DefaultCapacity, m.Summary().TotalAlerts)
}
