package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/testutil"
)

// loopbackRequest sets RemoteAddr to loopback so tsweb allows debug access.
func loopbackRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func newAdminMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	newTestServer(t).AttachAdminRoutes(mux)
	return mux
}

func TestAdminRoutes_Index(t *testing.T) {
	mux := newAdminMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, loopbackRequest(http.MethodGet, "/debug/"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Version")
	assert.Contains(t, body, "2:20 PM")
	assert.Contains(t, body, "sim-config")
	assert.Contains(t, body, "dashboard")
}

func TestAdminRoutes_SimConfig(t *testing.T) {
	mux := newAdminMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, loopbackRequest(http.MethodGet, "/debug/sim-config"))
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := testutil.DecodeJSON[config.SimConfig](t, rec)
	require.NotNil(t, cfg.AnchorMinutes)
	assert.Equal(t, 860, *cfg.AnchorMinutes)
}

func TestAdminRoutes_Pages(t *testing.T) {
	mux := newAdminMux(t)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/debug/field-chart", "text/html; charset=utf-8"},
		{"/debug/timeseries-chart?points=4", "text/html; charset=utf-8"},
		{"/debug/dashboard?points=4", "text/html; charset=utf-8"},
		{"/debug/field.png", "image/png"},
		{"/debug/timeseries.png?points=4", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, loopbackRequest(http.MethodGet, tt.path))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
		})
	}
}

func TestAdminRoutes_RemoteDenied(t *testing.T) {
	mux := newAdminMux(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/sim-config", nil)
	req.RemoteAddr = "203.0.113.7:4000"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
