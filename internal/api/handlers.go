package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/httputil"
	"github.com/banshee-data/slice0/internal/version"
)

// maxBodyBytes bounds POSTed grids.
const maxBodyBytes = 1 << 20

// gridRequest is the POST body accepted by /summary and /alerts.
type gridRequest struct {
	Grid fieldsim.Grid `json:"grid"`
	Low  *float64      `json:"low,omitempty"`
	High *float64      `json:"high,omitempty"`
}

// colorResponse is returned by /color.
type colorResponse struct {
	Value float64 `json:"value"`
	Alpha float64 `json:"alpha"`
	Color string  `json:"color"`
}

// simulate runs the simulator with parameters from the query string.
func (s *Server) simulate(q url.Values) (fieldsim.Field, error) {
	in, err := s.simInput(q)
	if err != nil {
		return fieldsim.Field{}, err
	}
	p, err := fieldsim.Normalize(in)
	if err != nil {
		return fieldsim.Field{}, err
	}
	return fieldsim.Simulate(p)
}

// gridFor returns the POSTed grid, or a freshly simulated one for GET.
func (s *Server) gridFor(w http.ResponseWriter, r *http.Request) (fieldsim.Grid, *gridRequest, error) {
	switch r.Method {
	case http.MethodGet:
		f, err := s.simulate(r.URL.Query())
		return f.Grid, nil, err
	case http.MethodPost:
		var body gridRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil {
			return nil, nil, fmt.Errorf("%w: invalid request body: %v", fieldsim.ErrInvalidArgument, err)
		}
		return body.Grid, &body, nil
	}
	return nil, nil, errMethod
}

var errMethod = errors.New("method not allowed")

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	f, err := s.simulate(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSONOK(w, f)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.gridFor(w, r)
	if errors.Is(err, errMethod) {
		httputil.MethodNotAllowed(w)
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summary, err := fieldsim.Summarize(g)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSONOK(w, summary)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	g, body, err := s.gridFor(w, r)
	if errors.Is(err, errMethod) {
		httputil.MethodNotAllowed(w)
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	th := s.cfg.GetThresholds()
	q := r.URL.Query()
	if th.Low, err = queryFloat(q, "low", th.Low); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if th.High, err = queryFloat(q, "high", th.High); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if body != nil {
		if body.Low != nil {
			th.Low = *body.Low
		}
		if body.High != nil {
			th.High = *body.High
		}
	}

	set, err := fieldsim.ComputeAlerts(g, th)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSONOK(w, set)
}

// timeSeriesInput reads the time-series window from the query string.
func (s *Server) timeSeriesInput(q url.Values) (fieldsim.TimeSeriesInput, error) {
	in, err := s.simInput(q)
	if err != nil {
		return fieldsim.TimeSeriesInput{}, err
	}
	points, err := queryInt(q, "points", s.cfg.GetSeriesPoints())
	if err != nil {
		return fieldsim.TimeSeriesInput{}, err
	}
	step, err := queryInt(q, "step", s.cfg.GetSeriesStepMinutes())
	if err != nil {
		return fieldsim.TimeSeriesInput{}, err
	}
	anchor, err := queryInt(q, "anchor", s.anchorMinutes())
	if err != nil {
		return fieldsim.TimeSeriesInput{}, err
	}
	return fieldsim.TimeSeriesInput{
		PointCount:    &points,
		StepMinutes:   &step,
		AnchorMinutes: &anchor,
		Seed:          in.Seed,
		ZSlice:        in.ZSlice,
		DoorIntensity: in.DoorIntensity,
		FanMix:        in.FanMix,
	}, nil
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	in, err := s.timeSeriesInput(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	series, err := fieldsim.BuildTimeSeries(in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSONOK(w, series)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	in, err := s.simInput(q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	anchor, err := queryInt(q, "anchor", s.anchorMinutes())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := fieldsim.BuildEvents(fieldsim.EventInput{
		Seed:          in.Seed,
		DoorIntensity: in.DoorIntensity,
		AnchorMinutes: &anchor,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	switch order := q.Get("sort"); order {
	case "", "recent":
	case "label":
		fieldsim.SortEventsByLabel(events)
	default:
		httputil.BadRequest(w, fmt.Sprintf("sort must be 'recent' or 'label', got %q", order))
		return
	}
	httputil.WriteJSONOK(w, events)
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if r.URL.Query().Get("value") == "" {
		httputil.BadRequest(w, "value is required")
		return
	}
	v, err := queryFloat(r.URL.Query(), "value", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSONOK(w, colorResponse{
		Value: v,
		Alpha: fieldsim.HumidityAlpha(v),
		Color: fieldsim.HumidityToColor(v),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.cfg.Resolved())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}
