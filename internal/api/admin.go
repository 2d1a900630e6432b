package api

import (
	"net/http"

	"tailscale.com/tsweb"

	"github.com/banshee-data/slice0/internal/httputil"
	"github.com/banshee-data/slice0/internal/timeutil"
	"github.com/banshee-data/slice0/internal/version"
)

// AttachAdminRoutes mounts the simulator debug pages under /debug/ on mux.
// Access is restricted to loopback and tailnet callers by tsweb.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KV("Version", version.String())
	debug.KVFunc("Anchor", func() any {
		return timeutil.FormatTimeOfDay(s.anchorMinutes())
	})
	debug.KVFunc("Seed", func() any { return s.cfg.GetSeed() })
	debug.KVFunc("Grid", func() any {
		return []int{s.cfg.GetGridWidth(), s.cfg.GetGridHeight()}
	})

	debug.HandleFunc("sim-config", "Resolved simulator configuration", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, s.cfg.Resolved())
	})
	debug.HandleFunc("field-chart", "Field heatmap at the anchor time", s.handleFieldChart)
	debug.HandleFunc("timeseries-chart", "Room summary time series", s.handleTimeSeriesChart)
	debug.HandleFunc("dashboard", "Heatmap and time series on one page", s.handleDashboard)
	debug.HandleFunc("field.png", "Field heatmap as PNG", s.handleFieldPNG)
	debug.HandleFunc("timeseries.png", "Time series as PNG", s.handleTimeSeriesPNG)
}
