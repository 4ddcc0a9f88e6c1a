package server_test

import (
	"call-insights/filter"
	"call-insights/models"
	"call-insights/server"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	specs []filter.Spec
}

func (f *fakeSource) Dashboard(spec filter.Spec) *models.Dashboard {
	f.specs = append(f.specs, spec)
	return &models.Dashboard{
		RunID:           "run-1",
		TotalRecords:    4,
		FilteredRecords: 2,
		Leaderboard:     []models.LeaderboardEntry{{Rank: 1, AgentName: "Ana", Calls: 2, MeetsThreshold: true}},
		Underperformers: models.UnderperformerReport{State: models.StateAllPass, Entries: []models.LeaderboardEntry{}},
	}
}

func (f *fakeSource) FilterOptions() models.FilterOptions {
	first := models.Date{Year: 2024, Month: time.March, Day: 4}
	return models.FilterOptions{Agents: []string{"Ana", "Ben"}, Reasons: []string{"Billing"}, FirstDate: &first}
}

func newServer() (*fakeSource, http.Handler) {
	source := &fakeSource{}
	return source, server.New(source, zerolog.New(io.Discard)).Router()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard(t *testing.T) {
	tests := map[string]struct {
		target   string
		expected filter.Spec
	}{
		"NoQuery": {
			target:   "/api/dashboard",
			expected: filter.Spec{},
		},
		"AgentsAndReasons": {
			target:   "/api/dashboard?agent=Ana&agent=Ben&reason=Billing",
			expected: filter.Spec{Agents: []string{"Ana", "Ben"}, Reasons: []string{"Billing"}},
		},
		"DateRange": {
			target:   "/api/dashboard?from=2024-03-04&to=2024-03-08",
			expected: filter.Spec{DateRange: &filter.DateRange{
				Start: models.Date{Year: 2024, Month: time.March, Day: 4},
				End:   models.Date{Year: 2024, Month: time.March, Day: 8},
			}},
		},
		"ReversedRangeIsAccepted": {
			target:   "/api/dashboard?from=2024-03-08&to=2024-03-04",
			expected: filter.Spec{DateRange: &filter.DateRange{
				Start: models.Date{Year: 2024, Month: time.March, Day: 8},
				End:   models.Date{Year: 2024, Month: time.March, Day: 4},
			}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			source, h := newServer()
			rec := get(t, h, tt.target)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			require.Len(t, source.specs, 1)
			assert.Equal(t, tt.expected, source.specs[0])

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "run-1", body["run_id"])
			assert.Equal(t, float64(2), body["filtered_records"])
		})
	}
}

func TestDashboard_BadQuery(t *testing.T) {
	tests := map[string]string{
		"BadDate":       "/api/dashboard?from=2024-13-01&to=2024-12-31",
		"FromWithoutTo": "/api/dashboard?from=2024-03-04",
		"ToWithoutFrom": "/api/dashboard?to=2024-03-04",
		"EmptyAgent":    "/api/dashboard?agent=",
	}

	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			source, h := newServer()
			rec := get(t, h, target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, source.specs)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], "invalid query")
		})
	}
}

func TestFilters(t *testing.T) {
	_, h := newServer()
	rec := get(t, h, "/api/filters")

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Ana", "Ben"}, body.Agents)
	require.NotNil(t, body.FirstDate)
	assert.Equal(t, "2024-03-04", body.FirstDate.String())
	assert.Nil(t, body.LastDate)
}

func TestHealthAndMetrics(t *testing.T) {
	_, h := newServer()

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	get(t, h, "/api/filters")
	rec = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	_, h := newServer()
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}
