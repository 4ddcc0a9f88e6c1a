package aggregator

import (
	"call-insights/models"
	"sort"

	"github.com/samber/lo"
)

// DefaultTopReasons is the size of the reason distribution table.
const DefaultTopReasons = 10

// DailyVolume counts calls per call date, oldest first.
func DailyVolume(records []models.EnrichedRecord) []models.DateCount {
	return countByDate(records, func(r *models.EnrichedRecord) models.Date { return r.CallDate })
}

// WeeklyVolume counts calls per week start (Monday), oldest first.
func WeeklyVolume(records []models.EnrichedRecord) []models.DateCount {
	return countByDate(records, func(r *models.EnrichedRecord) models.Date { return r.WeekStart })
}

func countByDate(records []models.EnrichedRecord, key func(*models.EnrichedRecord) models.Date) []models.DateCount {
	counts := lo.CountValuesBy(records, func(r models.EnrichedRecord) models.Date { return key(&r) })

	out := lo.MapToSlice(counts, func(d models.Date, n int) models.DateCount {
		return models.DateCount{Date: d, Calls: n}
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// WeekdayVolume counts calls per business day. The result always has five
// entries, Monday through Friday; weekend calls are ignored.
func WeekdayVolume(records []models.EnrichedRecord) []models.WeekdayCount {
	var counts [5]int
	for i := range records {
		if idx, ok := models.BusinessDayIndex(records[i].DayOfWeek); ok {
			counts[idx]++
		}
	}

	out := make([]models.WeekdayCount, len(models.BusinessDays))
	for i, day := range models.BusinessDays {
		out[i] = models.WeekdayCount{Day: day, Name: day.String(), Calls: counts[i]}
	}
	return out
}

// ReasonDistribution returns the top n reasons by count. Percent is relative
// to len(records). Equal counts keep the order in which reasons first appear.
func ReasonDistribution(records []models.EnrichedRecord, n int) []models.ReasonShare {
	if n <= 0 {
		n = DefaultTopReasons
	}

	reasons := lo.Map(records, func(r models.EnrichedRecord, _ int) string { return r.ReasonForCalling })
	counts := lo.CountValues(reasons)
	order := lo.Uniq(reasons)

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	total := float64(len(records))
	out := make([]models.ReasonShare, 0, len(order))
	for _, reason := range order {
		out = append(out, models.ReasonShare{
			Reason:  reason,
			Count:   counts[reason],
			Percent: float64(counts[reason]) / total * 100,
		})
	}
	return out
}

// AgentWeekdayMatrix counts calls per agent and business day, zero-filled.
// Rows are ordered by agent name; agents without weekday calls are omitted.
func AgentWeekdayMatrix(records []models.EnrichedRecord) []models.AgentWeekdayRow {
	rows := make(map[string]*[5]int)
	for i := range records {
		idx, ok := models.BusinessDayIndex(records[i].DayOfWeek)
		if !ok {
			continue
		}
		counts, exists := rows[records[i].AgentName]
		if !exists {
			counts = new([5]int)
			rows[records[i].AgentName] = counts
		}
		counts[idx]++
	}

	names := sortedKeys(rows)
	out := make([]models.AgentWeekdayRow, 0, len(names))
	for _, name := range names {
		out = append(out, models.AgentWeekdayRow{AgentName: name, Counts: *rows[name]})
	}
	return out
}

// Bookings splits calls into new and established patients. A missing flag
// counts as established; unrecognized answers are in neither count.
func Bookings(records []models.EnrichedRecord) models.BookingMix {
	var mix models.BookingMix
	for i := range records {
		switch records[i].NewPatient {
		case models.PatientNew:
			mix.New++
		case models.PatientEstablished, models.PatientUnknown:
			mix.Established++
		}
	}
	return mix
}

// CallsByAgent counts calls per agent.
func CallsByAgent(records []models.EnrichedRecord) map[string]int {
	return lo.CountValuesBy(records, func(r models.EnrichedRecord) string { return r.AgentName })
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
