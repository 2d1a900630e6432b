// Package api exposes the field simulator over HTTP for the Slice 0 web
// portal: JSON endpoints, a websocket frame stream, echarts debug pages and
// PNG reports. It holds no state beyond configuration and a clock.
package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"

	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/monitoring"
	"github.com/banshee-data/slice0/internal/timeutil"
)

// ANSI escape codes for the access log
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the simulator over HTTP. It holds no per-request state, so
// one Server may back any number of concurrent requests and streams.
type Server struct {
	cfg      *config.SimConfig
	clock    timeutil.Clock
	upgrader websocket.Upgrader
}

// NewServer returns a Server drawing defaults from cfg. A nil cfg uses the
// built-in defaults and a nil clock uses the wall clock.
func NewServer(cfg *config.SimConfig, clock timeutil.Clock) *Server {
	if cfg == nil {
		cfg = config.EmptySimConfig()
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		cfg:   cfg,
		clock: clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			// The portal is served from a different origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so /stream can upgrade.
func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := lrw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// WithCORS allows the listed portal origins to call the API from a browser.
// An empty list allows any origin.
func WithCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(next)
}

// ServeMux returns the API routes. Mount it under /api with StripPrefix.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/field", s.handleField)
	mux.HandleFunc("/summary", s.handleSummary)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.HandleFunc("/timeseries", s.handleTimeSeries)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/color", s.handleColor)
	mux.HandleFunc("/config", s.handleConfig)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/charts/field", s.handleFieldChart)
	mux.HandleFunc("/charts/timeseries", s.handleTimeSeriesChart)
	mux.HandleFunc("/charts/dashboard", s.handleDashboard)
	mux.HandleFunc("/reports/timeseries.png", s.handleTimeSeriesPNG)
	mux.HandleFunc("/reports/field.png", s.handleFieldPNG)
	return mux
}

// anchorMinutes is the "now" the time series and events end at.
func (s *Server) anchorMinutes() int {
	if s.cfg.GetLiveAnchor() {
		return timeutil.MinuteOfDayIn(s.clock.Now(), s.cfg.GetLocation())
	}
	return s.cfg.GetAnchorMinutes()
}

// simInput builds a SimInput from query parameters, falling back to the
// configured defaults for anything omitted.
func (s *Server) simInput(q url.Values) (fieldsim.SimInput, error) {
	in := fieldsim.SimInput{
		Width:       s.cfg.GetGridWidth(),
		Height:      s.cfg.GetGridHeight(),
		ZSlice:      s.cfg.GetZSlice(),
		TimeMinutes: s.anchorMinutes(),
	}
	door := s.cfg.GetDoorIntensity()
	fan := s.cfg.GetFanMix()
	seed := s.cfg.GetSeed()
	lo := s.cfg.GetClampMin()
	hi := s.cfg.GetClampMax()
	in.DoorIntensity, in.FanMix, in.Seed = &door, &fan, &seed
	in.ClampMin, in.ClampMax = &lo, &hi

	var err error
	if in.Width, err = queryInt(q, "width", in.Width); err != nil {
		return in, err
	}
	if in.Height, err = queryInt(q, "height", in.Height); err != nil {
		return in, err
	}
	if in.TimeMinutes, err = queryInt(q, "t", in.TimeMinutes); err != nil {
		return in, err
	}
	if in.ZSlice, err = queryFloat(q, "z", in.ZSlice); err != nil {
		return in, err
	}
	if door, err = queryFloat(q, "door", door); err != nil {
		return in, err
	}
	if fan, err = queryFloat(q, "fan", fan); err != nil {
		return in, err
	}
	if seed, err = queryUint32(q, "seed", seed); err != nil {
		return in, err
	}
	return in, nil
}

func queryInt(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be an integer, got %q", fieldsim.ErrInvalidArgument, key, raw)
	}
	return v, nil
}

func queryFloat(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be a number, got %q", fieldsim.ErrInvalidArgument, key, raw)
	}
	return v, nil
}

func queryUint32(q url.Values, key string, def uint32) (uint32, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be an unsigned 32-bit integer, got %q", fieldsim.ErrInvalidArgument, key, raw)
	}
	return uint32(v), nil
}
