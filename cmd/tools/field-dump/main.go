// Command field-dump prints simulator output as JSON, or renders it to PNG.
//
//	field-dump -what summary -t 860
//	field-dump -what series -png series.png
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gonum.org/v1/plot"

	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/fsutil"
	"github.com/banshee-data/slice0/internal/report"
	"github.com/banshee-data/slice0/internal/security"
	"github.com/banshee-data/slice0/internal/timeutil"
)

type options struct {
	What   string
	Minute int
	Seed   int64
	PNG    string
}

// dump is everything field-dump can emit for one minute.
type dump struct {
	Minute    int                 `json:"minute"`
	TimeLabel string              `json:"time_label"`
	Field     *fieldsim.Field     `json:"field,omitempty"`
	Summary   *fieldsim.Summary   `json:"summary,omitempty"`
	Alerts    *fieldsim.AlertSet  `json:"alerts,omitempty"`
	Series    fieldsim.TimeSeries `json:"series,omitempty"`
	Events    []fieldsim.Event    `json:"events,omitempty"`
	Config    *config.SimConfig   `json:"config,omitempty"`
}

func simInput(cfg *config.SimConfig, minute int, seed uint32) fieldsim.SimInput {
	door, fan := cfg.GetDoorIntensity(), cfg.GetFanMix()
	lo, hi := cfg.GetClampMin(), cfg.GetClampMax()
	return fieldsim.SimInput{
		Width:         cfg.GetGridWidth(),
		Height:        cfg.GetGridHeight(),
		ZSlice:        cfg.GetZSlice(),
		TimeMinutes:   minute,
		DoorIntensity: &door,
		FanMix:        &fan,
		Seed:          &seed,
		ClampMin:      &lo,
		ClampMax:      &hi,
	}
}

func build(cfg *config.SimConfig, opt options) (dump, error) {
	minute := opt.Minute
	if minute < 0 {
		minute = cfg.GetAnchorMinutes()
	}
	seed := cfg.GetSeed()
	if opt.Seed >= 0 {
		seed = uint32(opt.Seed)
	}
	out := dump{Minute: timeutil.WrapMinutes(minute), TimeLabel: timeutil.FormatTimeOfDay(minute)}

	want := func(s string) bool { return opt.What == s || opt.What == "all" }

	if want("field") || want("summary") || want("alerts") {
		p, err := fieldsim.Normalize(simInput(cfg, minute, seed))
		if err != nil {
			return out, err
		}
		f, err := fieldsim.Simulate(p)
		if err != nil {
			return out, err
		}
		if want("field") {
			out.Field = &f
		}
		if want("summary") {
			s, err := fieldsim.Summarize(f.Grid)
			if err != nil {
				return out, err
			}
			out.Summary = &s
		}
		if want("alerts") {
			a, err := fieldsim.ComputeAlerts(f.Grid, cfg.GetThresholds())
			if err != nil {
				return out, err
			}
			out.Alerts = &a
		}
	}
	if want("series") {
		points, step := cfg.GetSeriesPoints(), cfg.GetSeriesStepMinutes()
		door, fan := cfg.GetDoorIntensity(), cfg.GetFanMix()
		series, err := fieldsim.BuildTimeSeries(fieldsim.TimeSeriesInput{
			PointCount:    &points,
			StepMinutes:   &step,
			AnchorMinutes: &minute,
			Seed:          &seed,
			ZSlice:        cfg.GetZSlice(),
			DoorIntensity: &door,
			FanMix:        &fan,
		})
		if err != nil {
			return out, err
		}
		out.Series = series
	}
	if want("events") {
		door := cfg.GetDoorIntensity()
		events, err := fieldsim.BuildEvents(fieldsim.EventInput{Seed: &seed, DoorIntensity: &door, AnchorMinutes: &minute})
		if err != nil {
			return out, err
		}
		out.Events = events
	}
	if want("config") {
		out.Config = cfg.Resolved()
	}
	if out.Field == nil && out.Summary == nil && out.Alerts == nil && out.Series == nil && out.Events == nil && out.Config == nil {
		return out, fmt.Errorf("unknown -what %q (field, summary, alerts, series, events, config, all)", opt.What)
	}
	return out, nil
}

// plotFor picks the chart that matches what was asked for.
func plotFor(cfg *config.SimConfig, d dump) (*plot.Plot, error) {
	switch {
	case d.Series != nil:
		return report.TimeSeriesPlot(d.Series, "Room summary to "+d.TimeLabel)
	case d.Field != nil:
		return report.FieldPlot(*d.Field, cfg.GetClampMin(), cfg.GetClampMax(), "Field at "+d.TimeLabel)
	}
	return nil, fmt.Errorf("-png needs -what field or series")
}

func run(w io.Writer, fsys fsutil.FileSystem, cfg *config.SimConfig, opt options) error {
	d, err := build(cfg, opt)
	if err != nil {
		return err
	}
	if opt.PNG != "" {
		p, err := plotFor(cfg, d)
		if err != nil {
			return err
		}
		if err := report.SavePNG(fsys, opt.PNG, p); err != nil {
			return err
		}
		log.Printf("wrote %s", opt.PNG)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func main() {
	var opt options
	configPath := flag.String("config", "", "simulator config JSON (defaults to built-in values)")
	flag.StringVar(&opt.What, "what", "summary", "field, summary, alerts, series, events, config or all")
	flag.IntVar(&opt.Minute, "t", -1, "minute of day (defaults to the configured anchor)")
	flag.Int64Var(&opt.Seed, "seed", -1, "seed override")
	flag.StringVar(&opt.PNG, "png", "", "write a PNG chart here instead of JSON")
	flag.Parse()

	cfg := config.EmptySimConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSimConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if opt.PNG != "" {
		if err := security.ValidateExportPath(opt.PNG); err != nil {
			log.Fatal(err)
		}
	}

	if err := run(os.Stdout, fsutil.OSFileSystem{}, cfg, opt); err != nil {
		log.Fatal(err)
	}
}
