package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"

	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/httputil"
	"github.com/banshee-data/slice0/internal/report"
	"github.com/banshee-data/slice0/internal/security"
	"github.com/banshee-data/slice0/internal/timeutil"
)

// fieldPalette runs from dry (pale) to humid (deep blue).
var fieldPalette = []string{"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"}

// fieldHeatMap renders f as an echarts heatmap. Row 0 of the grid is drawn
// at the top.
func (s *Server) fieldHeatMap(f fieldsim.Field, minute int) *charts.HeatMap {
	w, h := f.Grid.Width(), f.Grid.Height()

	xs := make([]string, w)
	for x := range xs {
		xs[x] = strconv.Itoa(x)
	}
	ys := make([]string, h)
	for y := range ys {
		ys[y] = strconv.Itoa(h - 1 - y)
	}

	data := make([]opts.HeatMapData, 0, w*h)
	for y, row := range f.Grid {
		for x, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, h - 1 - y, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Slice 0 field", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Field at " + timeutil.FormatTimeOfDay(minute),
			Subtitle: fmt.Sprintf("%dx%d door=(%d,%d) pulse=%.2f", w, h, f.Door.X, f.Door.Y, f.DoorPulse),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys, Name: "y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(s.cfg.GetClampMin()),
			Max:        float32(s.cfg.GetClampMax()),
			InRange:    &opts.VisualMapInRange{Color: fieldPalette},
		}),
	)
	hm.SetXAxis(xs).AddSeries("field", data)
	return hm
}

// timeSeriesLine renders series as avg/min/max lines.
func timeSeriesLine(series fieldsim.TimeSeries) *charts.Line {
	labels := make([]string, len(series))
	avg := make([]opts.LineData, len(series))
	lo := make([]opts.LineData, len(series))
	hi := make([]opts.LineData, len(series))
	for i, pt := range series {
		labels[i] = pt.TimeLabel
		avg[i] = opts.LineData{Value: pt.Avg}
		lo[i] = opts.LineData{Value: pt.Min}
		hi[i] = opts.LineData{Value: pt.Max}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Slice 0 time series", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Room summary", Subtitle: fmt.Sprintf("%d samples", len(series))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value", Min: "dataMin", Max: "dataMax"}),
	)
	line.SetXAxis(labels).
		AddSeries("avg", avg).
		AddSeries("min", lo).
		AddSeries("max", hi)
	return line
}

// renderer is satisfied by every go-echarts chart and page.
type renderer interface {
	Render(w io.Writer) error
}

func writeChart(w http.ResponseWriter, c renderer) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleFieldChart(w http.ResponseWriter, r *http.Request) {
	in, err := s.simInput(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := fieldsim.Normalize(in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	f, err := fieldsim.Simulate(p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeChart(w, s.fieldHeatMap(f, p.TimeMinutes))
}

func (s *Server) handleTimeSeriesChart(w http.ResponseWriter, r *http.Request) {
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
	writeChart(w, timeSeriesLine(series))
}

// handleDashboard renders the heatmap and the time series on one page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, err := s.simInput(q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := fieldsim.Normalize(in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	f, err := fieldsim.Simulate(p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tsIn, err := s.timeSeriesInput(q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	series, err := fieldsim.BuildTimeSeries(tsIn)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page := components.NewPage()
	page.PageTitle = "Slice 0 dashboard"
	page.AddCharts(s.fieldHeatMap(f, p.TimeMinutes), timeSeriesLine(series))
	writeChart(w, page)
}

func (s *Server) handleTimeSeriesPNG(w http.ResponseWriter, r *http.Request) {
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
	p, err := report.TimeSeriesPlot(series, "Room summary")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writePNG(w, p, "timeseries-"+series[len(series)-1].TimeLabel)
}

func (s *Server) handleFieldPNG(w http.ResponseWriter, r *http.Request) {
	in, err := s.simInput(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	params, err := fieldsim.Normalize(in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	f, err := fieldsim.Simulate(params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	label := timeutil.FormatTimeOfDay(params.TimeMinutes)
	p, err := report.FieldPlot(f, params.ClampMin, params.ClampMax, "Field at "+label)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writePNG(w, p, "field-"+label)
}

// writePNG sends p inline with a download name derived from name.
func writePNG(w http.ResponseWriter, p *plot.Plot, name string) {
	var buf bytes.Buffer
	if err := report.WritePNG(&buf, p, report.DefaultWidth, report.DefaultHeight); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.png", security.SanitizeFilename(name)))
	_, _ = w.Write(buf.Bytes())
}
