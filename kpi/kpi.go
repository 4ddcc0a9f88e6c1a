package kpi

import (
	"call-insights/models"
	"sort"
)

// DefaultRatio is the share of the baseline an agent must reach.
const DefaultRatio = 0.75

// Exclusions names the agents treated specially by the evaluator.
type Exclusions struct {
	// OutlierAgent is left out of the threshold baseline only.
	OutlierAgent string
	// TeamLead is left out of the leaderboard entirely.
	TeamLead string
}

// ComputeThreshold returns ratio times the highest call count among agents
// other than outlier. With no eligible agent the threshold is undefined.
func ComputeThreshold(callsByAgent map[string]int, outlier string, ratio float64) models.Threshold {
	if ratio <= 0 {
		ratio = DefaultRatio
	}

	var t models.Threshold
	for name, calls := range callsByAgent {
		if outlier != "" && name == outlier {
			continue
		}
		if !t.Defined || calls > t.Baseline {
			t.Baseline = calls
			t.Defined = true
		}
	}
	if t.Defined {
		t.Value = ratio * float64(t.Baseline)
	}
	return t
}

// Leaderboard ranks every agent except the team lead by calls, highest
// first. Agents with equal calls stay in name order. Ranks run 1..N.
func Leaderboard(summaries []models.AgentSummary, threshold models.Threshold, teamLead string) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(summaries))
	for _, s := range summaries {
		if teamLead != "" && s.AgentName == teamLead {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			AgentName:      s.AgentName,
			Calls:          s.TotalCalls,
			NewBookings:    s.NewBookings,
			MeetsThreshold: threshold.Met(s.TotalCalls),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Calls != entries[j].Calls {
			return entries[i].Calls > entries[j].Calls
		}
		return entries[i].AgentName < entries[j].AgentName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Underperformers selects the leaderboard entries below the threshold and
// labels the outcome, so an empty leaderboard never reads as "all pass".
func Underperformers(leaderboard []models.LeaderboardEntry) models.UnderperformerReport {
	report := models.UnderperformerReport{Entries: []models.LeaderboardEntry{}}
	if len(leaderboard) == 0 {
		report.State = models.StateNoData
		return report
	}
	for _, e := range leaderboard {
		if !e.MeetsThreshold {
			report.Entries = append(report.Entries, e)
		}
	}
	if len(report.Entries) == 0 {
		report.State = models.StateAllPass
	} else {
		report.State = models.StateUnderperformers
	}
	return report
}
