// Command field-view animates the simulated room in a terminal.
//
// Keys: space pauses, left/right step time, up/down move the z slice,
// d/D and f/F nudge door intensity and fan mix, q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/slice0/internal/config"
	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/timeutil"
)

// cellWidth is the number of terminal columns per grid cell.
const cellWidth = 2

// Colors of the humidity ramp at zero and full alpha.
var (
	rampLow  = [3]float64{255, 255, 255}
	rampHigh = [3]float64{56, 132, 255}
)

type viewer struct {
	screen tcell.Screen
	cfg    *config.SimConfig

	minute int
	z      float64
	door   float64
	fan    float64
	paused bool
}

func newViewer(screen tcell.Screen, cfg *config.SimConfig, minute int) *viewer {
	return &viewer{
		screen: screen,
		cfg:    cfg,
		minute: timeutil.WrapMinutes(minute),
		z:      cfg.GetZSlice(),
		door:   cfg.GetDoorIntensity(),
		fan:    cfg.GetFanMix(),
	}
}

// cellStyle maps a reading onto the same blue ramp the portal uses.
func cellStyle(v float64) tcell.Style {
	a := fieldsim.HumidityAlpha(v)
	var c [3]int32
	for i := range c {
		c[i] = int32(fieldsim.Lerp(rampLow[i], rampHigh[i], a))
	}
	return tcell.StyleDefault.Background(tcell.NewRGBColor(c[0], c[1], c[2]))
}

func (v *viewer) frame() (fieldsim.Field, fieldsim.Summary, fieldsim.AlertSet, error) {
	seed := v.cfg.GetSeed()
	lo, hi := v.cfg.GetClampMin(), v.cfg.GetClampMax()
	p, err := fieldsim.Normalize(fieldsim.SimInput{
		Width:         v.cfg.GetGridWidth(),
		Height:        v.cfg.GetGridHeight(),
		ZSlice:        v.z,
		TimeMinutes:   v.minute,
		DoorIntensity: &v.door,
		FanMix:        &v.fan,
		Seed:          &seed,
		ClampMin:      &lo,
		ClampMax:      &hi,
	})
	if err != nil {
		return fieldsim.Field{}, fieldsim.Summary{}, fieldsim.AlertSet{}, err
	}
	f, err := fieldsim.Simulate(p)
	if err != nil {
		return fieldsim.Field{}, fieldsim.Summary{}, fieldsim.AlertSet{}, err
	}
	s, err := fieldsim.Summarize(f.Grid)
	if err != nil {
		return fieldsim.Field{}, fieldsim.Summary{}, fieldsim.AlertSet{}, err
	}
	a, err := fieldsim.ComputeAlerts(f.Grid, v.cfg.GetThresholds())
	if err != nil {
		return fieldsim.Field{}, fieldsim.Summary{}, fieldsim.AlertSet{}, err
	}
	return f, s, a, nil
}

func (v *viewer) putString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (v *viewer) draw() error {
	f, s, a, err := v.frame()
	if err != nil {
		return err
	}

	v.screen.Clear()
	for y, row := range f.Grid {
		for x, val := range row {
			style := cellStyle(val)
			mark := ' '
			switch {
			case x == f.Door.X && y == f.Door.Y:
				mark = 'D'
				style = style.Foreground(tcell.ColorBlack).Bold(true)
			case val < v.cfg.GetAlertLow():
				mark = '-'
				style = style.Foreground(tcell.ColorRed)
			case val > v.cfg.GetAlertHigh():
				mark = '+'
				style = style.Foreground(tcell.ColorYellow)
			}
			for i := 0; i < cellWidth; i++ {
				v.screen.SetContent(x*cellWidth+i, y, mark, nil, style)
			}
		}
	}

	status := 0
	if h := f.Grid.Height(); h > 0 {
		status = h + 1
	}
	state := "running"
	if v.paused {
		state = "paused"
	}
	v.putString(0, status, fmt.Sprintf("%s  z=%.2f door=%.2f fan=%.2f  [%s]",
		timeutil.FormatTimeOfDay(v.minute), v.z, v.door, v.fan, state), tcell.StyleDefault)
	v.putString(0, status+1, fmt.Sprintf("min %.2f  max %.2f  avg %.2f  low %d  high %d  pulse %.2f",
		s.Min, s.Max, s.Avg, len(a.Low), len(a.High), f.DoorPulse), tcell.StyleDefault)
	v.screen.Show()
	return nil
}

func (v *viewer) step(minutes int) {
	v.minute = timeutil.WrapMinutes(v.minute + minutes)
}

// handleKey applies one key press. It returns false when the viewer should exit.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.step(-v.cfg.GetStreamStepMinutes())
	case tcell.KeyRight:
		v.step(v.cfg.GetStreamStepMinutes())
	case tcell.KeyUp:
		v.z = fieldsim.Clamp(v.z+0.05, 0, 1)
	case tcell.KeyDown:
		v.z = fieldsim.Clamp(v.z-0.05, 0, 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case 'd':
			v.door = fieldsim.Clamp(v.door-0.1, 0, 1)
		case 'D':
			v.door = fieldsim.Clamp(v.door+0.1, 0, 1)
		case 'f':
			v.fan = fieldsim.Clamp(v.fan-0.1, 0, 1)
		case 'F':
			v.fan = fieldsim.Clamp(v.fan+0.1, 0, 1)
		}
	}
	return true
}

// run redraws on every tick and key press until the user quits.
func (v *viewer) run(clock timeutil.Clock) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := clock.NewTicker(v.cfg.GetStreamInterval())
	defer ticker.Stop()

	if err := v.draw(); err != nil {
		return err
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
		case <-ticker.C():
			if !v.paused {
				v.step(v.cfg.GetStreamStepMinutes())
			}
		}
		if err := v.draw(); err != nil {
			return err
		}
	}
}

func main() {
	configPath := flag.String("config", "", "simulator config JSON (defaults to built-in values)")
	minute := flag.Int("t", -1, "starting minute of day (defaults to the configured anchor)")
	flag.Parse()

	cfg := config.EmptySimConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSimConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	start := *minute
	if start < 0 {
		start = cfg.GetAnchorMinutes()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("failed to init screen: %v", err)
	}

	v := newViewer(screen, cfg, start)
	err = v.run(timeutil.RealClock{})
	screen.Fini()
	if err != nil {
		log.Fatal(err)
	}
}
