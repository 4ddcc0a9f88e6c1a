package models

import (
	"fmt"
	"math"
	"time"
)

// PatientStatus is the "New patient?" flag of a call. PatientUnknown marks
// a missing answer; PatientUnrecognized an answer other than Yes or No.
type PatientStatus int

const (
	PatientUnknown PatientStatus = iota
	PatientNew
	PatientEstablished
	PatientUnrecognized
)

// String returns the source spelling, "Yes" or "No", and "" otherwise.
func (p PatientStatus) String() string {
	switch p {
	case PatientNew:
		return "Yes"
	case PatientEstablished:
		return "No"
	default:
		return ""
	}
}

// MarshalText renders the flag the way it appears in the source data.
func (p PatientStatus) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// CallRecord represents one normalized row of the call log.
// It is shared across packages and never mutated after normalization.
type CallRecord struct {
	AgentName        string
	Timestamp        time.Time
	ReasonForCalling string
	NewPatient       PatientStatus
	// Line is the 1-based source row, header included.
	Line int
	// Extra holds columns the normalizer does not know about.
	Extra map[string]string
}

// EnrichedRecord is a CallRecord with its time-derived fields attached.
type EnrichedRecord struct {
	CallRecord
	CallDate  Date
	DayOfWeek time.Weekday
	WeekStart Date
	// IdleMinutes is nil for the agent's first call.
	IdleMinutes *float64
}

// BusinessDays is the fixed Monday..Friday axis used by weekday tables.
var BusinessDays = [5]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
}

// BusinessDayIndex returns the position of d on the BusinessDays axis.
func BusinessDayIndex(d time.Weekday) (int, bool) {
	for i, wd := range BusinessDays {
		if wd == d {
			return i, true
		}
	}
	return 0, false
}

// AgentSummary is the per-agent detail row.
type AgentSummary struct {
	AgentName  string `json:"agent_name"`
	TotalCalls int    `json:"total_calls"`
	// AvgIdleMinutes is nil when the agent has no defined idle gap.
	AvgIdleMinutes *float64 `json:"avg_idle_minutes"`
	NewBookings    int      `json:"new_bookings"`
}

// RoundedIdleMinutes rounds half to even, matching the report display.
func (s AgentSummary) RoundedIdleMinutes() (int, bool) {
	if s.AvgIdleMinutes == nil {
		return 0, false
	}
	return int(math.RoundToEven(*s.AvgIdleMinutes)), true
}

// IdleDisplay returns the idle column as shown to users, e.g. "12 mins".
func (s AgentSummary) IdleDisplay() string {
	m, ok := s.RoundedIdleMinutes()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%d mins", m)
}

// LeaderboardEntry is one ranked agent.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	AgentName      string `json:"agent_name"`
	Calls          int    `json:"calls"`
	NewBookings    int    `json:"new_bookings"`
	MeetsThreshold bool   `json:"meets_threshold"`
}

// Threshold is the KPI bar derived from the busiest comparable agent.
type Threshold struct {
	Baseline int     `json:"baseline"`
	Value    float64 `json:"value"`
	// Defined is false when no agent was eligible for the baseline.
	Defined bool `json:"defined"`
}

// Met reports whether calls reaches the threshold.
func (t Threshold) Met(calls int) bool {
	return t.Defined && float64(calls) >= t.Value
}

// UnderperformerState distinguishes an empty leaderboard from one where everyone passes.
type UnderperformerState string

const (
	StateNoData          UnderperformerState = "no_data"
	StateAllPass         UnderperformerState = "all_pass"
	StateUnderperformers UnderperformerState = "underperformers"
)

// UnderperformerReport lists the leaderboard entries below the threshold.
type UnderperformerReport struct {
	State   UnderperformerState `json:"state"`
	Entries []LeaderboardEntry  `json:"entries"`
}

// DateCount is one point of a daily or weekly volume series.
type DateCount struct {
	Date  Date `json:"date"`
	Calls int  `json:"calls"`
}

// WeekdayCount is one point of the Monday..Friday series.
type WeekdayCount struct {
	Day   time.Weekday `json:"-"`
	Name  string       `json:"day"`
	Calls int          `json:"calls"`
}

// ReasonShare is one row of the top reasons table.
type ReasonShare struct {
	Reason  string  `json:"reason"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// AgentWeekdayRow holds an agent's Monday..Friday call counts.
type AgentWeekdayRow struct {
	AgentName string `json:"agent_name"`
	Counts    [5]int `json:"counts"`
}

// AgentStdDev is the spread of an agent's daily call counts.
type AgentStdDev struct {
	AgentName string `json:"agent_name"`
	// StdDev is nil when fewer than two dates are present.
	StdDev *float64 `json:"std_daily_calls"`
}

// BookingMix splits calls into new and established patients.
type BookingMix struct {
	New         int `json:"new"`
	Established int `json:"established"`
}

// FilterOptions lists the values a UI can offer as filters.
type FilterOptions struct {
	Agents    []string `json:"agents"`
	Reasons   []string `json:"reasons"`
	FirstDate *Date    `json:"first_date,omitempty"`
	LastDate  *Date    `json:"last_date,omitempty"`
}

// Dashboard bundles every output table of one pipeline run.
type Dashboard struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	TotalRecords    int       `json:"total_records"`
	FilteredRecords int       `json:"filtered_records"`

	DailyVolume        []DateCount       `json:"daily_volume"`
	WeeklyVolume       []DateCount       `json:"weekly_volume"`
	WeekdayVolume      []WeekdayCount    `json:"weekday_volume"`
	TopReasons         []ReasonShare     `json:"top_reasons"`
	Bookings           BookingMix        `json:"bookings"`
	AgentWeekdayMatrix []AgentWeekdayRow `json:"agent_weekday_matrix"`
	DailyStdDev        []AgentStdDev     `json:"daily_std_dev"`
	AgentSummaries     []AgentSummary    `json:"agent_summaries"`

	Threshold       Threshold            `json:"threshold"`
	Leaderboard     []LeaderboardEntry   `json:"leaderboard"`
	Underperformers UnderperformerReport `json:"underperformers"`

	OutlierAgent string `json:"outlier_agent,omitempty"`
	TeamLead     string `json:"team_lead,omitempty"`
}
