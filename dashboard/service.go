package dashboard

import (
	"call-insights/features"
	"call-insights/filter"
	"call-insights/metrics"
	"call-insights/models"
	"time"

	"github.com/rs/zerolog"
)

// Service holds one enriched record set and builds dashboards from it.
// The record set is read-only after construction, so Dashboard may be
// called from several goroutines.
type Service struct {
	records []models.EnrichedRecord
	opts    Options
	logger  zerolog.Logger
}

// NewService derives features once for records.
func NewService(records []models.CallRecord, opts Options, logger zerolog.Logger) *Service {
	enriched := features.Derive(records)
	logger.Info().
		Int("records", len(enriched)).
		Str("outlier_agent", opts.Exclusions.OutlierAgent).
		Str("team_lead", opts.Exclusions.TeamLead).
		Msg("call records loaded")
	return &Service{records: enriched, opts: opts, logger: logger}
}

// Dashboard runs the filter and aggregation stages for spec.
func (s *Service) Dashboard(spec filter.Spec) *models.Dashboard {
	start := time.Now()
	metrics.ResetRunGauges()

	d := Build(s.records, spec, s.opts)

	metrics.PipelineRunsTotal.Inc()
	metrics.PipelineDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.PipelineFilteredRecords.Set(float64(d.FilteredRecords))
	metrics.KPIThresholdCalls.Set(d.Threshold.Value)
	metrics.KPIRankedAgents.Set(float64(len(d.Leaderboard)))
	metrics.KPIUnderperformers.Set(float64(len(d.Underperformers.Entries)))

	s.logger.Debug().
		Str("run_id", d.RunID).
		Int("filtered_records", d.FilteredRecords).
		Str("underperformer_state", string(d.Underperformers.State)).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard built")
	return d
}

// FilterOptions lists the agents, reasons and date bounds of the full set.
func (s *Service) FilterOptions() models.FilterOptions {
	return filter.Options(s.records)
}

// Len returns the number of loaded records.
func (s *Service) Len() int {
	return len(s.records)
}
