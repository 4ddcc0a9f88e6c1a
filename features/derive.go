package features

import (
	"call-insights/models"
	"sort"
)

// Derive attaches call date, weekday, week start and idle time to every record.
// The result is ordered by agent name, then timestamp. Records with equal
// keys keep their input order. The input slice is not modified.
func Derive(records []models.CallRecord) []models.EnrichedRecord {
	sorted := make([]models.CallRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AgentName != sorted[j].AgentName {
			return sorted[i].AgentName < sorted[j].AgentName
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]models.EnrichedRecord, len(sorted))
	for i, rec := range sorted {
		date := models.DateOf(rec.Timestamp)
		out[i] = models.EnrichedRecord{
			CallRecord: rec,
			CallDate:   date,
			DayOfWeek:  rec.Timestamp.Weekday(),
			WeekStart:  date.WeekStart(),
		}
		// Idle gaps never cross agents: the previous record must share the name.
		if i > 0 && sorted[i-1].AgentName == rec.AgentName {
			idle := rec.Timestamp.Sub(sorted[i-1].Timestamp).Minutes()
			out[i].IdleMinutes = &idle
		}
	}
	return out
}

// Raw strips derived fields, returning the underlying call records.
func Raw(records []models.EnrichedRecord) []models.CallRecord {
	out := make([]models.CallRecord, len(records))
	for i, rec := range records {
		out[i] = rec.CallRecord
	}
	return out
}
