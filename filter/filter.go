package filter

import (
	"call-insights/models"

	"github.com/samber/lo"
)

// DateRange is an inclusive range of call dates.
type DateRange struct {
	Start models.Date
	End   models.Date
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d models.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Spec is a set of predicates. A nil or empty predicate does not restrict.
type Spec struct {
	Agents    []string
	Reasons   []string
	DateRange *DateRange
}

// IsEmpty reports whether s restricts nothing.
func (s Spec) IsEmpty() bool {
	return len(s.Agents) == 0 && len(s.Reasons) == 0 && s.DateRange == nil
}

// Apply returns the records matching every predicate of spec, in input order.
// A reversed date range matches nothing.
func Apply(records []models.EnrichedRecord, spec Spec) []models.EnrichedRecord {
	agents := toSet(spec.Agents)
	reasons := toSet(spec.Reasons)

	return lo.Filter(records, func(rec models.EnrichedRecord, _ int) bool {
		if agents != nil {
			if _, ok := agents[rec.AgentName]; !ok {
				return false
			}
		}
		if reasons != nil {
			if _, ok := reasons[rec.ReasonForCalling]; !ok {
				return false
			}
		}
		return spec.DateRange == nil || spec.DateRange.Contains(rec.CallDate)
	})
}

// Options collects the distinct agents and reasons in encounter order along
// with the first and last call date.
func Options(records []models.EnrichedRecord) models.FilterOptions {
	opts := models.FilterOptions{
		Agents: lo.Uniq(lo.Map(records, func(rec models.EnrichedRecord, _ int) string {
			return rec.AgentName
		})),
		Reasons: lo.Uniq(lo.Map(records, func(rec models.EnrichedRecord, _ int) string {
			return rec.ReasonForCalling
		})),
	}
	if len(records) == 0 {
		return opts
	}

	dates := lo.Map(records, func(rec models.EnrichedRecord, _ int) models.Date { return rec.CallDate })
	first := lo.MinBy(dates, models.Date.Before)
	last := lo.MaxBy(dates, models.Date.After)
	opts.FirstDate = &first
	opts.LastDate = &last
	return opts
}

// toSet returns nil for an empty predicate so callers can tell "no
// restriction" from "matches nothing".
func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	return lo.Keyify(values)
}
