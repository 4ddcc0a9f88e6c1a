package parser

import (
	"call-insights/errors"
	"call-insights/metrics"
	"call-insights/models"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Canonical column names of the call log.
const (
	ColAgentName  = "Agent Name"
	ColTimestamp  = "Timestamp"
	ColReason     = "Reason for Calling"
	ColNewPatient = "New patient?"
)

// RequiredColumns must all be present after renaming.
var RequiredColumns = []string{ColAgentName, ColTimestamp, ColReason, ColNewPatient}

// DefaultColumnRenames maps known source headers to canonical names.
var DefaultColumnRenames = map[string]string{
	"Agent Name:":         ColAgentName,
	"Reason for Calling:": ColReason,
	"New patient?:":       ColNewPatient,
}

// DefaultReasonSynonyms collapses known spellings of a reason to one label.
var DefaultReasonSynonyms = map[string]string{
	"Follow Up": "Follow-up",
}

// timestampLayouts are tried in order. Layouts without an offset are
// interpreted in Options.Location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
	"01-02-06 15:04",
}

// Table is a raw header plus rows as read from an input file.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Options controls normalization. Zero values fall back to the defaults.
type Options struct {
	// ColumnRenames extends DefaultColumnRenames; keys are trimmed headers.
	ColumnRenames map[string]string
	// ReasonSynonyms extends DefaultReasonSynonyms.
	ReasonSynonyms map[string]string
	// Location is used for timestamps without an explicit offset. Defaults to UTC.
	Location *time.Location
}

func (o Options) renames() map[string]string {
	return mergeMaps(DefaultColumnRenames, o.ColumnRenames)
}

func (o Options) synonyms() map[string]string {
	return mergeMaps(DefaultReasonSynonyms, o.ReasonSynonyms)
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func mergeMaps(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// NormalizeColumns trims every header and applies the rename map.
// Unknown headers pass through trimmed.
func NormalizeColumns(columns []string, renames map[string]string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		name := strings.TrimSpace(col)
		if canonical, ok := renames[name]; ok {
			name = canonical
		}
		out[i] = name
	}
	return out
}

// CanonicalReason trims a reason and maps it through the synonym table.
// Values without an entry are returned trimmed but otherwise verbatim.
func CanonicalReason(reason string, synonyms map[string]string) string {
	reason = strings.TrimSpace(reason)
	if canonical, ok := synonyms[reason]; ok {
		return canonical
	}
	return reason
}

// missingTokens are the cell values that spreadsheet exports use for an
// absent "New patient?" answer.
var missingTokens = map[string]bool{"": true, "NA": true, "N/A": true, "NaN": true, "null": true}

// ParsePatientStatus maps the "New patient?" cell to a PatientStatus.
// Missing cells are PatientUnknown; any other value besides "Yes" and "No"
// is PatientUnrecognized.
func ParsePatientStatus(value string) models.PatientStatus {
	value = strings.TrimSpace(value)
	switch {
	case value == "Yes":
		return models.PatientNew
	case value == "No":
		return models.PatientEstablished
	case missingTokens[value]:
		return models.PatientUnknown
	default:
		return models.PatientUnrecognized
	}
}

// Normalize converts a raw table into call records.
// It fails on the first missing column set or unparseable timestamp;
// no partial result is returned.
func Normalize(table *Table, opts Options) ([]models.CallRecord, error) {
	if table == nil || len(table.Columns) == 0 {
		metrics.ParserErrorsTotal.WithLabelValues("empty_input").Inc()
		return nil, &errors.MalformedInputError{Err: errors.ErrEmptyInput}
	}

	columns := NormalizeColumns(table.Columns, opts.renames())
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		metrics.ParserErrorsTotal.WithLabelValues("missing_columns").Inc()
		return nil, &errors.MalformedInputError{
			Missing: missing,
			Err:     errors.ErrMissingColumns,
		}
	}

	synonyms := opts.synonyms()
	loc := opts.location()
	records := make([]models.CallRecord, 0, len(table.Rows))

	for i, row := range table.Rows {
		// Header is line 1.
		line := i + 2
		cell := func(col string) string {
			idx := index[col]
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		rawTS := cell(ColTimestamp)
		ts, err := parseTimestamp(rawTS, loc)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("invalid_timestamp").Inc()
			return nil, &errors.MalformedInputError{
				Line:   line,
				Column: ColTimestamp,
				Value:  rawTS,
				Err:    fmt.Errorf("%w: %v", errors.ErrInvalidTimestamp, err),
			}
		}

		rawReason := cell(ColReason)
		reason := CanonicalReason(rawReason, synonyms)
		if reason != strings.TrimSpace(rawReason) {
			metrics.ReasonSynonymsApplied.Inc()
		}

		rec := models.CallRecord{
			AgentName:        cell(ColAgentName),
			Timestamp:        ts,
			ReasonForCalling: reason,
			NewPatient:       ParsePatientStatus(cell(ColNewPatient)),
			Line:             line,
		}

		for idx, col := range columns {
			if lo.Contains(RequiredColumns, col) || idx >= len(row) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = row[idx]
		}

		records = append(records, rec)
	}

	metrics.ParserRecordsTotal.Add(float64(len(records)))
	return records, nil
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		// loc applies to values without an offset; an explicit offset wins.
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
