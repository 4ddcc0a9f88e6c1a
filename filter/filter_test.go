package filter_test

import (
	"testing"
	"time"

	"call-insights/features"
	"call-insights/filter"
	"call-insights/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) models.Date {
	return models.Date{Year: 2024, Month: time.March, Day: d}
}

func sample() []models.EnrichedRecord {
	mk := func(agent, reason string, d, hour int) models.CallRecord {
		return models.CallRecord{
			AgentName:        agent,
			Timestamp:        time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC),
			ReasonForCalling: reason,
		}
	}
	return features.Derive([]models.CallRecord{
		mk("Ana", "Billing", 4, 9),
		mk("Ana", "Follow-up", 5, 9),
		mk("Ben", "Billing", 6, 10),
		mk("Ben", "Scheduling", 7, 11),
		mk("Cara", "Follow-up", 8, 12),
	})
}

func TestApply(t *testing.T) {
	tests := map[string]struct {
		spec     filter.Spec
		expected int
	}{
		"EmptySpec_NoRestriction": {
			spec:     filter.Spec{},
			expected: 5,
		},
		"Agents": {
			spec:     filter.Spec{Agents: []string{"Ana", "Cara"}},
			expected: 3,
		},
		"Reasons": {
			spec:     filter.Spec{Reasons: []string{"Billing"}},
			expected: 2,
		},
		"AgentsAndReasons": {
			spec:     filter.Spec{Agents: []string{"Ana"}, Reasons: []string{"Billing"}},
			expected: 1,
		},
		"DateRange_InclusiveBounds": {
			spec:     filter.Spec{DateRange: &filter.DateRange{Start: day(5), End: day(7)}},
			expected: 3,
		},
		"DateRange_SingleDay": {
			spec:     filter.Spec{DateRange: &filter.DateRange{Start: day(8), End: day(8)}},
			expected: 1,
		},
		"DateRange_NoMatches": {
			spec:     filter.Spec{DateRange: &filter.DateRange{Start: day(20), End: day(25)}},
			expected: 0,
		},
		"DateRange_Reversed": {
			spec:     filter.Spec{DateRange: &filter.DateRange{Start: day(7), End: day(5)}},
			expected: 0,
		},
		"UnknownAgent": {
			spec:     filter.Spec{Agents: []string{"Zed"}},
			expected: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out := filter.Apply(sample(), tt.spec)
			assert.Len(t, out, tt.expected)
			assert.NotNil(t, out)
		})
	}
}

func TestApply_KeepsDerivedFields(t *testing.T) {
	all := sample()
	out := filter.Apply(all, filter.Spec{Agents: []string{"Ana"}, Reasons: []string{"Follow-up"}})
	require.Len(t, out, 1)

	// Ana's second call keeps the idle gap measured against her first call,
	// even though the first call was filtered out.
	require.NotNil(t, out[0].IdleMinutes)
	assert.InDelta(t, 24*60.0, *out[0].IdleMinutes, 1e-9)
	assert.Equal(t, time.Tuesday, out[0].DayOfWeek)
	assert.Equal(t, all[1], out[0])
}

func TestSpec_IsEmpty(t *testing.T) {
	assert.True(t, filter.Spec{}.IsEmpty())
	assert.True(t, filter.Spec{Agents: []string{}}.IsEmpty())
	assert.False(t, filter.Spec{Reasons: []string{"Billing"}}.IsEmpty())
	assert.False(t, filter.Spec{DateRange: &filter.DateRange{}}.IsEmpty())
}

func TestOptions(t *testing.T) {
	opts := filter.Options(sample())
	assert.Equal(t, []string{"Ana", "Ben", "Cara"}, opts.Agents)
	assert.Equal(t, []string{"Billing", "Follow-up", "Scheduling"}, opts.Reasons)
	require.NotNil(t, opts.FirstDate)
	require.NotNil(t, opts.LastDate)
	assert.Equal(t, day(4), *opts.FirstDate)
	assert.Equal(t, day(8), *opts.LastDate)

	empty := filter.Options(nil)
	assert.Empty(t, empty.Agents)
	assert.Nil(t, empty.FirstDate)
}

func TestOptions_DateBoundsFollowCalendar(t *testing.T) {
	// Records are ordered by agent, so Ana's late call comes before Ben's early one.
	records := features.Derive([]models.CallRecord{
		{AgentName: "Ben", Timestamp: time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC), ReasonForCalling: "Billing"},
		{AgentName: "Ana", Timestamp: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC), ReasonForCalling: "Billing"},
		{AgentName: "Ana", Timestamp: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), ReasonForCalling: "Refill"},
	})

	opts := filter.Options(records)
	assert.Equal(t, []string{"Ana", "Ben"}, opts.Agents)
	assert.Equal(t, []string{"Refill", "Billing"}, opts.Reasons)
	require.NotNil(t, opts.FirstDate)
	require.NotNil(t, opts.LastDate)
	assert.Equal(t, day(3), *opts.FirstDate)
	assert.Equal(t, day(20), *opts.LastDate)
}
