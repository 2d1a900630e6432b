package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/fsutil"
	"github.com/banshee-data/slice0/internal/timeutil"
)

// DefaultConfigPath is the path to the canonical simulator defaults file.
const DefaultConfigPath = "config/sim.defaults.json"

// SimConfig holds the server-side defaults used whenever a request omits a
// simulation parameter. The JSON schema matches /api/config so the same
// document can be used for startup configuration and inspection.
type SimConfig struct {
	// Field params
	GridWidth     *int     `json:"grid_width,omitempty"`
	GridHeight    *int     `json:"grid_height,omitempty"`
	Seed          *uint32  `json:"seed,omitempty"`
	ZSlice        *float64 `json:"z_slice,omitempty"`
	DoorIntensity *float64 `json:"door_intensity,omitempty"`
	FanMix        *float64 `json:"fan_mix,omitempty"`
	ClampMin      *float64 `json:"clamp_min,omitempty"`
	ClampMax      *float64 `json:"clamp_max,omitempty"`

	// Alert params
	AlertLow  *float64 `json:"alert_low,omitempty"`
	AlertHigh *float64 `json:"alert_high,omitempty"`

	// Time series params
	AnchorMinutes     *int    `json:"anchor_minutes,omitempty"`
	LiveAnchor        *bool   `json:"live_anchor,omitempty"` // derive the anchor from the wall clock
	Timezone          *string `json:"timezone,omitempty"`    // tz database name for the live anchor
	SeriesPoints      *int    `json:"series_points,omitempty"`
	SeriesStepMinutes *int    `json:"series_step_minutes,omitempty"`

	// Stream params
	StreamInterval    *string `json:"stream_interval,omitempty"` // duration string like "1s"
	StreamStepMinutes *int    `json:"stream_step_minutes,omitempty"`
}

// EmptySimConfig returns a SimConfig with all fields set to nil so that every
// getter yields its built-in default.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// LoadSimConfig loads a SimConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
// Fields omitted from the JSON file keep their defaults, so partial configs
// are safe.
func LoadSimConfig(path string) (*SimConfig, error) {
	return LoadSimConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadSimConfigFS is LoadSimConfig reading through fsys.
func LoadSimConfigFS(fsys fsutil.FileSystem, path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *SimConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/<tool>/
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SimConfig) Validate() error {
	if c.GridWidth != nil && *c.GridWidth <= 0 {
		return fmt.Errorf("grid_width must be positive, got %d", *c.GridWidth)
	}
	if c.GridHeight != nil && *c.GridHeight <= 0 {
		return fmt.Errorf("grid_height must be positive, got %d", *c.GridHeight)
	}
	if c.GetGridWidth() > fieldsim.MaxGridSide || c.GetGridHeight() > fieldsim.MaxGridSide {
		return fmt.Errorf("grid %dx%d exceeds the %d cell side limit", c.GetGridWidth(), c.GetGridHeight(), fieldsim.MaxGridSide)
	}

	for name, v := range map[string]*float64{
		"z_slice":        c.ZSlice,
		"door_intensity": c.DoorIntensity,
		"fan_mix":        c.FanMix,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.GetClampMin() > c.GetClampMax() {
		return fmt.Errorf("clamp_min %.2f must not exceed clamp_max %.2f", c.GetClampMin(), c.GetClampMax())
	}
	if c.GetAlertLow() > c.GetAlertHigh() {
		return fmt.Errorf("alert_low %.2f must not exceed alert_high %.2f", c.GetAlertLow(), c.GetAlertHigh())
	}

	if c.AnchorMinutes != nil && (*c.AnchorMinutes < 0 || *c.AnchorMinutes >= 24*60) {
		return fmt.Errorf("anchor_minutes must be within a day, got %d", *c.AnchorMinutes)
	}
	if c.Timezone != nil {
		if _, err := timeutil.LoadZone(*c.Timezone); err != nil {
			return err
		}
	}
	if c.SeriesPoints != nil && *c.SeriesPoints <= 0 {
		return fmt.Errorf("series_points must be positive, got %d", *c.SeriesPoints)
	}
	if c.SeriesStepMinutes != nil && *c.SeriesStepMinutes <= 0 {
		return fmt.Errorf("series_step_minutes must be positive, got %d", *c.SeriesStepMinutes)
	}
	if c.StreamStepMinutes != nil && *c.StreamStepMinutes <= 0 {
		return fmt.Errorf("stream_step_minutes must be positive, got %d", *c.StreamStepMinutes)
	}
	if c.GetSeriesPoints() > fieldsim.MaxPointCount {
		return fmt.Errorf("series_points must be at most %d, got %d", fieldsim.MaxPointCount, c.GetSeriesPoints())
	}
	if c.GetSeriesStepMinutes() > fieldsim.MaxStepMinutes || c.GetStreamStepMinutes() > fieldsim.MaxStepMinutes {
		return fmt.Errorf("step minutes must be at most %d", fieldsim.MaxStepMinutes)
	}

	if c.StreamInterval != nil && *c.StreamInterval != "" {
		d, err := time.ParseDuration(*c.StreamInterval)
		if err != nil {
			return fmt.Errorf("invalid stream_interval '%s': %w", *c.StreamInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("stream_interval must be positive, got %s", d)
		}
	}

	return nil
}

// GetGridWidth returns the grid_width value or the default.
func (c *SimConfig) GetGridWidth() int {
	if c.GridWidth == nil {
		return fieldsim.SeriesGridWidth
	}
	return *c.GridWidth
}

// GetGridHeight returns the grid_height value or the default.
func (c *SimConfig) GetGridHeight() int {
	if c.GridHeight == nil {
		return fieldsim.SeriesGridHeight
	}
	return *c.GridHeight
}

// GetSeed returns the seed value or the default.
func (c *SimConfig) GetSeed() uint32 {
	if c.Seed == nil {
		return fieldsim.DefaultSeed
	}
	return *c.Seed
}

// GetZSlice returns the z_slice value or the default.
func (c *SimConfig) GetZSlice() float64 {
	if c.ZSlice == nil {
		return 0.5
	}
	return *c.ZSlice
}

// GetDoorIntensity returns the door_intensity value or the default.
func (c *SimConfig) GetDoorIntensity() float64 {
	if c.DoorIntensity == nil {
		return fieldsim.DefaultDoorIntensity
	}
	return *c.DoorIntensity
}

// GetFanMix returns the fan_mix value or the default.
func (c *SimConfig) GetFanMix() float64 {
	if c.FanMix == nil {
		return fieldsim.DefaultFanMix
	}
	return *c.FanMix
}

// GetClampMin returns the clamp_min value or the default.
func (c *SimConfig) GetClampMin() float64 {
	if c.ClampMin == nil {
		return fieldsim.DefaultClampMin
	}
	return *c.ClampMin
}

// GetClampMax returns the clamp_max value or the default.
func (c *SimConfig) GetClampMax() float64 {
	if c.ClampMax == nil {
		return fieldsim.DefaultClampMax
	}
	return *c.ClampMax
}

// GetThresholds returns the alert band.
func (c *SimConfig) GetThresholds() fieldsim.Thresholds {
	return fieldsim.Thresholds{Low: c.GetAlertLow(), High: c.GetAlertHigh()}
}

// GetAlertLow returns the alert_low value or the default.
func (c *SimConfig) GetAlertLow() float64 {
	if c.AlertLow == nil {
		return fieldsim.DefaultThresholds().Low
	}
	return *c.AlertLow
}

// GetAlertHigh returns the alert_high value or the default.
func (c *SimConfig) GetAlertHigh() float64 {
	if c.AlertHigh == nil {
		return fieldsim.DefaultThresholds().High
	}
	return *c.AlertHigh
}

// GetAnchorMinutes returns the anchor_minutes value or the default.
func (c *SimConfig) GetAnchorMinutes() int {
	if c.AnchorMinutes == nil {
		return fieldsim.DefaultAnchorMinutes
	}
	return *c.AnchorMinutes
}

// GetLiveAnchor returns the live_anchor value or the default.
func (c *SimConfig) GetLiveAnchor() bool {
	if c.LiveAnchor == nil {
		return false // default: fixed 2:20 PM reference frame
	}
	return *c.LiveAnchor
}

// GetTimezone returns the timezone value or "Local".
func (c *SimConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return timeutil.LocalZone
	}
	return *c.Timezone
}

// GetLocation resolves GetTimezone, falling back to the host zone.
func (c *SimConfig) GetLocation() *time.Location {
	loc, err := timeutil.LoadZone(c.GetTimezone())
	if err != nil {
		return time.Local
	}
	return loc
}

// GetSeriesPoints returns the series_points value or the default.
func (c *SimConfig) GetSeriesPoints() int {
	if c.SeriesPoints == nil {
		return fieldsim.DefaultPointCount
	}
	return *c.SeriesPoints
}

// GetSeriesStepMinutes returns the series_step_minutes value or the default.
func (c *SimConfig) GetSeriesStepMinutes() int {
	if c.SeriesStepMinutes == nil {
		return fieldsim.DefaultStepMinutes
	}
	return *c.SeriesStepMinutes
}

// GetStreamInterval parses and returns the StreamInterval as a time.Duration.
func (c *SimConfig) GetStreamInterval() time.Duration {
	if c.StreamInterval == nil || *c.StreamInterval == "" {
		return time.Second // default
	}
	d, err := time.ParseDuration(*c.StreamInterval)
	if err != nil || d <= 0 {
		return time.Second // default on parse error
	}
	return d
}

// GetStreamStepMinutes returns the stream_step_minutes value or the default.
func (c *SimConfig) GetStreamStepMinutes() int {
	if c.StreamStepMinutes == nil {
		return 1
	}
	return *c.StreamStepMinutes
}

// Resolved returns a copy of c with every field populated, either from c or
// from its default. This is what /api/config reports.
func (c *SimConfig) Resolved() *SimConfig {
	ptr := func(v float64) *float64 { return &v }
	width, height := c.GetGridWidth(), c.GetGridHeight()
	seed := c.GetSeed()
	anchor, live, tz := c.GetAnchorMinutes(), c.GetLiveAnchor(), c.GetTimezone()
	points, step := c.GetSeriesPoints(), c.GetSeriesStepMinutes()
	interval, streamStep := c.GetStreamInterval().String(), c.GetStreamStepMinutes()
	return &SimConfig{
		GridWidth:         &width,
		GridHeight:        &height,
		Seed:              &seed,
		ZSlice:            ptr(c.GetZSlice()),
		DoorIntensity:     ptr(c.GetDoorIntensity()),
		FanMix:            ptr(c.GetFanMix()),
		ClampMin:          ptr(c.GetClampMin()),
		ClampMax:          ptr(c.GetClampMax()),
		AlertLow:          ptr(c.GetAlertLow()),
		AlertHigh:         ptr(c.GetAlertHigh()),
		AnchorMinutes:     &anchor,
		LiveAnchor:        &live,
		Timezone:          &tz,
		SeriesPoints:      &points,
		SeriesStepMinutes: &step,
		StreamInterval:    &interval,
		StreamStepMinutes: &streamStep,
	}
}
