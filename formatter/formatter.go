package formatter

import (
	"call-insights/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Table is a titled grid prepared from a dashboard. Every output format
// renders the same list of tables.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Empty is shown instead of the grid when Rows is empty.
	Empty string
}

const noData = "No data"

// prepareTables flattens the dashboard into ordered tables
func prepareTables(d *models.Dashboard) []Table {
	tables := []Table{
		dateTable("Daily Call Volume", "Call Date", d.DailyVolume),
		dateTable("Weekly Call Volume", "Week Start", d.WeeklyVolume),
		weekdayTable(d.WeekdayVolume),
		reasonTable(d.TopReasons),
		bookingTable(d.Bookings),
		leaderboardTable(d.Leaderboard),
		underperformerTable(d.Underperformers, d.Threshold),
		matrixTable(d.AgentWeekdayMatrix),
		stdDevTable(d.DailyStdDev),
		summaryTable(d.AgentSummaries),
	}
	return tables
}

func dateTable(title, label string, points []models.DateCount) Table {
	t := Table{Title: title, Headers: []string{label, "Calls"}, Empty: noData}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{p.Date.String(), strconv.Itoa(p.Calls)})
	}
	return t
}

func weekdayTable(points []models.WeekdayCount) Table {
	t := Table{Title: "Call Volume by Day (Mon-Fri)", Headers: []string{"Day of Week", "Calls"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{p.Name, strconv.Itoa(p.Calls)})
	}
	return t
}

func reasonTable(reasons []models.ReasonShare) Table {
	t := Table{Title: "Top Reasons for Calling", Headers: []string{"Reason", "Percent", "Count"}, Empty: noData}
	for _, r := range reasons {
		t.Rows = append(t.Rows, []string{r.Reason, fmt.Sprintf("%.1f%%", r.Percent), strconv.Itoa(r.Count)})
	}
	return t
}

func bookingTable(mix models.BookingMix) Table {
	t := Table{Title: "New vs Established Appointments", Headers: []string{"Booking Type", "Count"}, Empty: noData}
	if mix.New+mix.Established == 0 {
		return t
	}
	t.Rows = [][]string{
		{"New", strconv.Itoa(mix.New)},
		{"Established", strconv.Itoa(mix.Established)},
	}
	return t
}

func leaderboardTable(entries []models.LeaderboardEntry) Table {
	t := Table{
		Title:   "Leaderboard",
		Headers: []string{"Rank", "Agent Name", "Calls", "New Bookings", "Meets Threshold"},
		Empty:   noData,
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(e.Rank), e.AgentName, strconv.Itoa(e.Calls),
			strconv.Itoa(e.NewBookings), strconv.FormatBool(e.MeetsThreshold),
		})
	}
	return t
}

func underperformerTable(report models.UnderperformerReport, threshold models.Threshold) Table {
	title := "Underperformers"
	if threshold.Defined {
		title = fmt.Sprintf("Underperformers (< %.2f calls)", threshold.Value)
	}
	t := Table{Title: title, Headers: []string{"Agent Name", "Calls", "New Bookings"}}
	switch report.State {
	case models.StateAllPass:
		t.Empty = "All agents meet the threshold!"
	default:
		t.Empty = noData
	}
	for _, e := range report.Entries {
		t.Rows = append(t.Rows, []string{e.AgentName, strconv.Itoa(e.Calls), strconv.Itoa(e.NewBookings)})
	}
	return t
}

func matrixTable(rows []models.AgentWeekdayRow) Table {
	headers := []string{"Agent Name"}
	for _, day := range models.BusinessDays {
		headers = append(headers, day.String())
	}
	t := Table{Title: "Call Activity by Agent and Day (Mon-Fri)", Headers: headers, Empty: noData}
	for _, r := range rows {
		row := []string{r.AgentName}
		for _, n := range r.Counts {
			row = append(row, strconv.Itoa(n))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func stdDevTable(entries []models.AgentStdDev) Table {
	t := Table{Title: "STD of Daily Call Volume", Headers: []string{"Agent Name", "STD Daily Calls"}, Empty: noData}
	for _, e := range entries {
		value := ""
		if e.StdDev != nil {
			value = strconv.FormatFloat(*e.StdDev, 'f', 2, 64)
		}
		t.Rows = append(t.Rows, []string{e.AgentName, value})
	}
	return t
}

func summaryTable(summaries []models.AgentSummary) Table {
	t := Table{
		Title:   "Detailed Summary by Agent",
		Headers: []string{"Agent Name", "Total Calls", "Avg Idle Time", "New Bookings"},
		Empty:   noData,
	}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []string{
			s.AgentName, strconv.Itoa(s.TotalCalls), s.IdleDisplay(), strconv.Itoa(s.NewBookings),
		})
	}
	return t
}

// FormatText returns the text representation of the dashboard
func FormatText(d *models.Dashboard) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records: %d of %d\n", d.FilteredRecords, d.TotalRecords))
	if d.Threshold.Defined {
		sb.WriteString(fmt.Sprintf("Threshold: %.2f calls (baseline %d)\n", d.Threshold.Value, d.Threshold.Baseline))
	} else {
		sb.WriteString("Threshold: undefined\n")
	}

	for _, t := range prepareTables(d) {
		sb.WriteString("\n")
		sb.WriteString(formatTextTable(t))
	}

	if d.OutlierAgent != "" {
		sb.WriteString(fmt.Sprintf("\nNote: %s is excluded from the threshold baseline.\n", d.OutlierAgent))
	}
	if d.TeamLead != "" {
		sb.WriteString(fmt.Sprintf("Note: %s is the team lead and is not included in performance comparison.\n", d.TeamLead))
	}
	return sb.String()
}

// formatTextTable renders one table with padded columns
func formatTextTable(t Table) string {
	var sb strings.Builder
	sb.WriteString("== " + t.Title + " ==\n")
	if len(t.Rows) == 0 {
		sb.WriteString(t.Empty + "\n")
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}
	writeRow(t.Headers)
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

// FormatJSON returns the JSON representation of the dashboard
func FormatJSON(d *models.Dashboard) string {
	jsonBytes, _ := json.MarshalIndent(d, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the dashboard. Each table is
// preceded by a title row and followed by a blank row.
func FormatCSV(d *models.Dashboard) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	for i, t := range prepareTables(d) {
		if i > 0 {
			writer.Write([]string{})
		}
		writer.Write([]string{t.Title})
		writer.Write(t.Headers)
		if len(t.Rows) == 0 {
			writer.Write([]string{t.Empty})
			continue
		}
		for _, row := range t.Rows {
			writer.Write(row)
		}
	}

	writer.Flush()
	return sb.String()
}
