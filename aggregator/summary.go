package aggregator

import (
	"call-insights/models"
	"sort"

	"github.com/go-gota/gota/series"
	"github.com/samber/lo"
)

// AgentSummaries builds one row per agent, ordered by agent name. The agent
// named exclude is left out; pass "" to keep everyone. Undefined idle gaps
// are skipped when averaging.
func AgentSummaries(records []models.EnrichedRecord, exclude string) []models.AgentSummary {
	kept := lo.Filter(records, func(rec models.EnrichedRecord, _ int) bool {
		return exclude == "" || rec.AgentName != exclude
	})
	byAgent := lo.GroupBy(kept, func(rec models.EnrichedRecord) string { return rec.AgentName })

	names := sortedKeys(byAgent)
	out := make([]models.AgentSummary, 0, len(names))
	for _, name := range names {
		calls := byAgent[name]
		bookings := lo.CountBy(calls, func(rec models.EnrichedRecord) bool {
			return rec.NewPatient == models.PatientNew
		})
		s := models.AgentSummary{
			AgentName:   name,
			TotalCalls:  len(calls),
			NewBookings: bookings,
		}
		idle := lo.FilterMap(calls, func(rec models.EnrichedRecord, _ int) (float64, bool) {
			if rec.IdleMinutes == nil {
				return 0, false
			}
			return *rec.IdleMinutes, true
		})
		if len(idle) > 0 {
			mean := lo.Sum(idle) / float64(len(idle))
			s.AvgIdleMinutes = &mean
		}
		out = append(out, s)
	}
	return out
}

// DailyStdDev returns the sample standard deviation of each agent's daily
// call count. Counts come from a dense agent x date matrix over every call
// date in records, so a date where the agent took no calls counts as zero.
// The agent named exclude is dropped after the matrix is built, which means
// its dates still widen the axis for everyone else.
func DailyStdDev(records []models.EnrichedRecord, exclude string) []models.AgentStdDev {
	dates := lo.Uniq(lo.Map(records, func(rec models.EnrichedRecord, _ int) models.Date { return rec.CallDate }))
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	dateIndex := make(map[models.Date]int, len(dates))
	for i, d := range dates {
		dateIndex[d] = i
	}

	matrix := make(map[string][]float64)
	for i := range records {
		rec := &records[i]
		row, ok := matrix[rec.AgentName]
		if !ok {
			row = make([]float64, len(dates))
			matrix[rec.AgentName] = row
		}
		row[dateIndex[rec.CallDate]]++
	}

	names := sortedKeys(matrix)
	out := make([]models.AgentStdDev, 0, len(names))
	for _, name := range names {
		if exclude != "" && name == exclude {
			continue
		}
		entry := models.AgentStdDev{AgentName: name}
		if len(dates) >= 2 {
			sd := series.New(matrix[name], series.Float, name).StdDev()
			entry.StdDev = &sd
		}
		out = append(out, entry)
	}
	return out
}
