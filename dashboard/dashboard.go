package dashboard

import (
	"call-insights/aggregator"
	"call-insights/filter"
	"call-insights/kpi"
	"call-insights/models"
	"time"

	"github.com/google/uuid"
)

// Threshold scopes.
const (
	// ScopeDataset takes the KPI baseline from every loaded record.
	ScopeDataset = "dataset"
	// ScopeFiltered takes it from the records left after filtering.
	ScopeFiltered = "filtered"
)

// Options parameterizes a dashboard build.
type Options struct {
	Exclusions     kpi.Exclusions
	ThresholdRatio float64
	TopReasons     int
	ThresholdScope string
}

// Build filters the enriched records and computes every output table.
// all is never modified; an empty filter result yields empty tables.
func Build(all []models.EnrichedRecord, spec filter.Spec, opts Options) *models.Dashboard {
	view := filter.Apply(all, spec)

	baseline := all
	if opts.ThresholdScope == ScopeFiltered {
		baseline = view
	}
	threshold := kpi.ComputeThreshold(aggregator.CallsByAgent(baseline), opts.Exclusions.OutlierAgent, opts.ThresholdRatio)

	everyone := aggregator.AgentSummaries(view, "")
	leaderboard := kpi.Leaderboard(everyone, threshold, opts.Exclusions.TeamLead)

	return &models.Dashboard{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		TotalRecords:    len(all),
		FilteredRecords: len(view),

		DailyVolume:        aggregator.DailyVolume(view),
		WeeklyVolume:       aggregator.WeeklyVolume(view),
		WeekdayVolume:      aggregator.WeekdayVolume(view),
		TopReasons:         aggregator.ReasonDistribution(view, opts.TopReasons),
		Bookings:           aggregator.Bookings(view),
		AgentWeekdayMatrix: aggregator.AgentWeekdayMatrix(view),
		DailyStdDev:        aggregator.DailyStdDev(view, opts.Exclusions.TeamLead),
		AgentSummaries:     aggregator.AgentSummaries(view, opts.Exclusions.TeamLead),

		Threshold:       threshold,
		Leaderboard:     leaderboard,
		Underperformers: kpi.Underperformers(leaderboard),

		OutlierAgent: opts.Exclusions.OutlierAgent,
		TeamLead:     opts.Exclusions.TeamLead,
	}
}
