package aggregator_test

import (
	"math"
	"testing"
	"time"

	"call-insights/aggregator"
	"call-insights/features"
	"call-insights/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentSummaries(t *testing.T) {
	out := aggregator.AgentSummaries(dataset(), "")
	require.Len(t, out, 3)

	ana := out[0]
	assert.Equal(t, "Ana", ana.AgentName)
	assert.Equal(t, 3, ana.TotalCalls)
	assert.Equal(t, 1, ana.NewBookings)
	// Gaps: 30 minutes, then 2 days and 30 minutes.
	require.NotNil(t, ana.AvgIdleMinutes)
	assert.InDelta(t, (30.0+(2*24*60+30))/2, *ana.AvgIdleMinutes, 1e-9)

	zoe := out[2]
	assert.Equal(t, "Zoe", zoe.AgentName)
	assert.Nil(t, zoe.AvgIdleMinutes, "one call means no idle gap to average")
	_, ok := zoe.RoundedIdleMinutes()
	assert.False(t, ok)
	assert.Equal(t, "n/a", zoe.IdleDisplay())
}

func TestAgentSummaries_Exclude(t *testing.T) {
	out := aggregator.AgentSummaries(dataset(), "Ben")
	require.Len(t, out, 2)
	assert.Equal(t, "Ana", out[0].AgentName)
	assert.Equal(t, "Zoe", out[1].AgentName)
}

func TestAgentSummaries_Empty(t *testing.T) {
	out := aggregator.AgentSummaries(nil, "")
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAgentSummary_IdleRounding(t *testing.T) {
	tests := map[string]struct {
		avg      float64
		expected int
		display  string
	}{
		"RoundsDown":     {avg: 12.4, expected: 12, display: "12 mins"},
		"RoundsUp":       {avg: 12.6, expected: 13, display: "13 mins"},
		"HalfToEvenDown": {avg: 12.5, expected: 12, display: "12 mins"},
		"HalfToEvenUp":   {avg: 13.5, expected: 14, display: "14 mins"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			avg := tt.avg
			s := models.AgentSummary{AgentName: "Ana", AvgIdleMinutes: &avg}
			got, ok := s.RoundedIdleMinutes()
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.display, s.IdleDisplay())
			assert.Equal(t, tt.avg, *s.AvgIdleMinutes, "raw value is kept")
		})
	}
}

func TestDailyStdDev(t *testing.T) {
	records := features.Derive([]models.CallRecord{
		rec("Ana", 4, 9, 0, "Billing", models.PatientNew),
		rec("Ana", 4, 10, 0, "Billing", models.PatientNew),
		rec("Ana", 6, 9, 0, "Billing", models.PatientNew),
		rec("Ben", 5, 9, 0, "Billing", models.PatientNew),
		rec("Ben", 6, 9, 0, "Billing", models.PatientNew),
		rec("Lead", 7, 9, 0, "Billing", models.PatientNew),
	})

	out := aggregator.DailyStdDev(records, "Lead")
	require.Len(t, out, 2)

	// Dates 4..7 from every agent, the team lead included: Ana [2 0 1 0],
	// mean 0.75, sample variance 2.75/3.
	assert.Equal(t, "Ana", out[0].AgentName)
	require.NotNil(t, out[0].StdDev)
	assert.InDelta(t, math.Sqrt(2.75/3.0), *out[0].StdDev, 1e-9)

	// Ben [0 1 1 0]: mean 0.5, sample variance 1/3.
	assert.Equal(t, "Ben", out[1].AgentName)
	require.NotNil(t, out[1].StdDev)
	assert.InDelta(t, math.Sqrt(1.0/3.0), *out[1].StdDev, 1e-9)
}

func TestDailyStdDev_SingleDateIsUndefined(t *testing.T) {
	records := features.Derive([]models.CallRecord{
		rec("Ana", 4, 9, 0, "Billing", models.PatientNew),
		rec("Ana", 4, 10, 0, "Billing", models.PatientNew),
	})
	out := aggregator.DailyStdDev(records, "")
	require.Len(t, out, 1)
	assert.Nil(t, out[0].StdDev)
}

func TestDailyStdDev_Empty(t *testing.T) {
	out := aggregator.DailyStdDev(nil, "Lead")
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDailyStdDev_UsesOnlyDatesPresent(t *testing.T) {
	// The gap between March 4 and March 20 is not zero-filled: only dates
	// with at least one call form the axis.
	records := features.Derive([]models.CallRecord{
		rec("Ana", 4, 9, 0, "Billing", models.PatientNew),
		{AgentName: "Ana", Timestamp: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)},
	})
	out := aggregator.DailyStdDev(records, "")
	require.Len(t, out, 1)
	require.NotNil(t, out[0].StdDev)
	assert.InDelta(t, 0.0, *out[0].StdDev, 1e-9)
}
