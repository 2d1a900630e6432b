package api

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/testutil"
	"github.com/banshee-data/slice0/internal/version"
)

// Reference frame for the defaults: 20x12, z=0.5, 2:20 PM, door=0.5,
// fan=0.5, seed=11.
const (
	refMin = 67.1694091512437
	refMax = 70.51525784226261
	refAvg = 68.7250619310937
)

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

func TestHandleField(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/field", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	f := testutil.DecodeJSON[fieldsim.Field](t, rec)
	assert.Equal(t, 20, f.Grid.Width())
	assert.Equal(t, 12, f.Grid.Height())
	assert.Equal(t, fieldsim.DoorPoint{X: 1, Y: 5}, f.Door)
	assert.InDelta(t, 0.9848077530122072, f.DoorPulse, 1e-12)
	assert.InDelta(t, 68.90330996263268, f.Grid[0][0], 1e-9)
	assert.InDelta(t, refMin, f.Grid[5][1], 1e-9)
}

func TestHandleField_Params(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/field?width=6&height=3&seed=5", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	f := testutil.DecodeJSON[fieldsim.Field](t, rec)
	assert.Equal(t, 6, f.Grid.Width())
	assert.Equal(t, 3, f.Grid.Height())
	assert.Equal(t, fieldsim.DoorPoint{X: 1, Y: 1}, f.Door)
}

func TestHandleField_Deterministic(t *testing.T) {
	s := newTestServer(t)

	a := serve(s, testutil.NewTestRequest(http.MethodGet, "/field?t=300&seed=9", ""))
	b := serve(s, testutil.NewTestRequest(http.MethodGet, "/field?t=300&seed=9", ""))
	assert.Equal(t, a.Body.String(), b.Body.String())
}

func TestHandleField_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"zero width", http.MethodGet, "/field?width=0", http.StatusBadRequest},
		{"negative height", http.MethodGet, "/field?height=-2", http.StatusBadRequest},
		{"bad number", http.MethodGet, "/field?z=high", http.StatusBadRequest},
		{"NaN z-slice", http.MethodGet, "/field?z=NaN", http.StatusBadRequest},
		{"NaN door", http.MethodGet, "/field?door=NaN", http.StatusBadRequest},
		{"oversized grid", http.MethodGet, "/field?width=100000&height=100000", http.StatusBadRequest},
		{"post", http.MethodPost, "/field", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, testutil.NewTestRequest(tt.method, tt.path, ""))
			testutil.AssertStatusCode(t, rec.Code, tt.want)
		})
	}
}

func TestHandlers_RejectNaN(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/field?z=NaN",
		"/summary?z=NaN",
		"/alerts?low=NaN",
		"/alerts?fan=NaN",
		"/timeseries?fan=NaN&points=2",
		"/events?door=NaN",
	} {
		t.Run(path, func(t *testing.T) {
			rec := serve(s, testutil.NewTestRequest(http.MethodGet, path, ""))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
			assert.NotEmpty(t, rec.Body.String())
		})
	}
}

func TestHandleSummary(t *testing.T) {
	s := newTestServer(t)

	t.Run("simulated", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/summary", ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		sum := testutil.DecodeJSON[fieldsim.Summary](t, rec)
		assert.InDelta(t, refMin, sum.Min, 1e-9)
		assert.InDelta(t, refMax, sum.Max, 1e-9)
		assert.InDelta(t, refAvg, sum.Avg, 1e-9)
	})

	t.Run("posted grid", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodPost, "/summary", `{"grid":[[1,2],[3,6]]}`))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		sum := testutil.DecodeJSON[fieldsim.Summary](t, rec)
		assert.Equal(t, fieldsim.Summary{Min: 1, Max: 6, Avg: 3}, sum)
	})

	t.Run("empty grid", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodPost, "/summary", `{"grid":[]}`))
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodPost, "/summary", `{"grid":`))
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("method", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodDelete, "/summary", ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
	})
}

func TestHandleAlerts(t *testing.T) {
	s := newTestServer(t)

	t.Run("reference frame has no alerts", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/alerts", ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		assert.JSONEq(t, `{"low":[],"high":[]}`, rec.Body.String())
	})

	t.Run("query thresholds", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/alerts?low=68&high=70", ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		set := testutil.DecodeJSON[fieldsim.AlertSet](t, rec)
		require.Len(t, set.Low, fieldsim.MaxLowAlerts)
		require.Len(t, set.High, fieldsim.MaxHighAlerts)
		assert.Equal(t, fieldsim.AlertCell{X: 1, Y: 5, Value: set.Low[0].Value}, set.Low[0])
		assert.InDelta(t, refMin, set.Low[0].Value, 1e-9)
		assert.InDelta(t, refMax, set.High[0].Value, 1e-9)
		assert.True(t, sort.SliceIsSorted(set.Low, func(i, j int) bool { return set.Low[i].Value < set.Low[j].Value }))
		assert.True(t, sort.SliceIsSorted(set.High, func(i, j int) bool { return set.High[i].Value > set.High[j].Value }))
	})

	t.Run("posted grid", func(t *testing.T) {
		g := testutil.ConstantGrid(3, 2, 70)
		g[1][2] = 60
		g[0][1] = 80
		body := `{"grid":[[70,80,70],[70,70,60]],"low":65,"high":75}`
		rec := serve(s, testutil.NewTestRequest(http.MethodPost, "/alerts", body))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		set := testutil.DecodeJSON[fieldsim.AlertSet](t, rec)
		assert.Equal(t, []fieldsim.AlertCell{{X: 2, Y: 1, Value: g[1][2]}}, set.Low)
		assert.Equal(t, []fieldsim.AlertCell{{X: 1, Y: 0, Value: g[0][1]}}, set.High)
	})

	t.Run("body overrides query", func(t *testing.T) {
		body := `{"grid":[[70,70]],"low":71}`
		rec := serve(s, testutil.NewTestRequest(http.MethodPost, "/alerts?low=50", body))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		set := testutil.DecodeJSON[fieldsim.AlertSet](t, rec)
		assert.Len(t, set.Low, 2)
	})

	t.Run("thresholds inverted", func(t *testing.T) {
		rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/alerts?low=80&high=60", ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("configured thresholds", func(t *testing.T) {
		lo, hi := 68.0, 70.0
		cs := NewServer(&config.SimConfig{AlertLow: &lo, AlertHigh: &hi}, nil)
		rec := serve(cs, testutil.NewTestRequest(http.MethodGet, "/alerts", ""))
		set := testutil.DecodeJSON[fieldsim.AlertSet](t, rec)
		assert.NotEmpty(t, set.Low)
		assert.NotEmpty(t, set.High)
	})
}

func TestHandleTimeSeries(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/timeseries", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	series := testutil.DecodeJSON[fieldsim.TimeSeries](t, rec)
	require.Len(t, series, fieldsim.DefaultPointCount)

	last := series[len(series)-1]
	assert.Equal(t, "2:20 PM", last.TimeLabel)
	assert.Equal(t, 860, last.Minute)
	assert.Equal(t, 67.17, last.Min)
	assert.Equal(t, 70.52, last.Max)
	assert.Equal(t, 68.73, last.Avg)
	assert.Equal(t, 860-47*10, series[0].Minute)
}

func TestHandleTimeSeries_Window(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/timeseries?points=3&step=10&anchor=10", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	series := testutil.DecodeJSON[fieldsim.TimeSeries](t, rec)
	require.Len(t, series, 3)
	assert.Equal(t, "11:50 PM", series[0].TimeLabel)
	assert.Equal(t, "12:00 AM", series[1].TimeLabel)
	assert.Equal(t, "12:10 AM", series[2].TimeLabel)

	for _, q := range []string{"points=0", "step=-5", "anchor=later", "points=2000000000", "step=100000", "fan=NaN&points=2"} {
		rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/timeseries?"+q, ""))
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	}
}

func TestHandleEvents(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/events", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	events := testutil.DecodeJSON[[]fieldsim.Event](t, rec)
	require.Len(t, events, fieldsim.EventCount)
	assert.True(t, sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].MinutesAgo < events[j].MinutesAgo
	}))
	for _, e := range events {
		assert.Equal(t, fieldsim.EventType, e.Type)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, fieldsim.SeverityNote(e.Severity), e.Note)
	}

	again := serve(s, testutil.NewTestRequest(http.MethodGet, "/events", ""))
	assert.Equal(t, events, testutil.DecodeJSON[[]fieldsim.Event](t, again))
}

func TestHandleEvents_Sort(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/events?sort=label", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	events := testutil.DecodeJSON[[]fieldsim.Event](t, rec)
	require.Len(t, events, fieldsim.EventCount)
	assert.True(t, sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].WhenLabel > events[j].WhenLabel
	}))

	rec = serve(s, testutil.NewTestRequest(http.MethodGet, "/events?sort=severity", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleColor(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/color?value=74", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	got := testutil.DecodeJSON[colorResponse](t, rec)
	assert.Equal(t, 74.0, got.Value)
	assert.InDelta(t, 0.85, got.Alpha, 1e-12)
	assert.Equal(t, "rgba(56, 132, 255, 0.850)", got.Color)

	rec = serve(s, testutil.NewTestRequest(http.MethodGet, "/color?value=50", ""))
	got = testutil.DecodeJSON[colorResponse](t, rec)
	assert.Equal(t, "rgba(56, 132, 255, 0.080)", got.Color)

	rec = serve(s, testutil.NewTestRequest(http.MethodGet, "/color", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = serve(s, testutil.NewTestRequest(http.MethodGet, "/color?value=warm", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestHandleConfig(t *testing.T) {
	seed := uint32(99)
	s := NewServer(&config.SimConfig{Seed: &seed}, nil)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/config", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	cfg := testutil.DecodeJSON[config.SimConfig](t, rec)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint32(99), *cfg.Seed)
	require.NotNil(t, cfg.GridWidth)
	assert.Equal(t, 20, *cfg.GridWidth)
	require.NotNil(t, cfg.StreamInterval)
	assert.Equal(t, "1s", *cfg.StreamInterval)
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, testutil.NewTestRequest(http.MethodGet, "/version", ""))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, version.Current(), testutil.DecodeJSON[version.Info](t, rec))

	rec = serve(s, testutil.NewTestRequest(http.MethodPost, "/version", strings.Repeat("x", 4)))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}
