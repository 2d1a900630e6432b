package api

import (
	"net/http"
	"time"

	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/httputil"
	"github.com/banshee-data/slice0/internal/monitoring"
	"github.com/banshee-data/slice0/internal/timeutil"
)

const streamWriteTimeout = 5 * time.Second

// StreamFrame is one websocket message on /stream.
type StreamFrame struct {
	Minute    int               `json:"minute"`
	TimeLabel string            `json:"time_label"`
	Field     fieldsim.Field    `json:"field"`
	Summary   fieldsim.Summary  `json:"summary"`
	Alerts    fieldsim.AlertSet `json:"alerts"`
}

// buildFrame simulates the room at minute and packages it for the portal.
func buildFrame(in fieldsim.SimInput, th fieldsim.Thresholds, minute int) (StreamFrame, error) {
	in.TimeMinutes = minute
	p, err := fieldsim.Normalize(in)
	if err != nil {
		return StreamFrame{}, err
	}
	f, err := fieldsim.Simulate(p)
	if err != nil {
		return StreamFrame{}, err
	}
	sum, err := fieldsim.Summarize(f.Grid)
	if err != nil {
		return StreamFrame{}, err
	}
	set, err := fieldsim.ComputeAlerts(f.Grid, th)
	if err != nil {
		return StreamFrame{}, err
	}
	return StreamFrame{
		Minute:    minute,
		TimeLabel: timeutil.FormatTimeOfDay(minute),
		Field:     f,
		Summary:   sum,
		Alerts:    set,
	}, nil
}

// handleStream upgrades to a websocket and pushes one frame immediately and
// one per stream interval, advancing simulated time by the stream step.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.simInput(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Reject bad parameters before upgrading so the client sees a 400.
	if _, err := fieldsim.Normalize(in); err != nil {
		httputil.WriteError(w, err)
		return
	}
	th := s.cfg.GetThresholds()
	step := s.cfg.GetStreamStepMinutes()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("stream: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain reads so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := s.clock.NewTicker(s.cfg.GetStreamInterval())
	defer ticker.Stop()

	minute := timeutil.WrapMinutes(in.TimeMinutes)
	send := func() bool {
		frame, err := buildFrame(in, th, minute)
		if err != nil {
			monitoring.Logf("stream: build frame at minute %d: %v", minute, err)
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			monitoring.Logf("stream: write failed: %v", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C():
			minute = timeutil.WrapMinutes(minute + step)
			if !send() {
				return
			}
		}
	}
}

