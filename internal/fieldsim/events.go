package fieldsim

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/banshee-data/slice0/internal/prng"
	"github.com/banshee-data/slice0/internal/timeutil"
)

// Synthetic event parameters.
const (
	EventCount         = 10
	EventType          = "Door cycle"
	eventWindowMinutes = 240
	eventMinDuration   = 10
	eventDurationSpan  = 45
	eventSeverityJit   = 0.25
)

// Severity notes, highest band first.
const (
	NoteHigh   = "High traffic"
	NoteNormal = "Normal traffic"
	NoteLight  = "Light traffic"
)

var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://banshee-data/slice0/events"))

// Event is one synthetic door cycle.
type Event struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	WhenLabel       string  `json:"when_label"`
	WhenMinute      int     `json:"when_minute"`
	MinutesAgo      int     `json:"minutes_ago"`
	DurationSeconds int     `json:"duration_seconds"`
	Severity        float64 `json:"severity"`
	Note            string  `json:"note"`
}

// EventInput configures BuildEvents. Nil fields take package defaults.
type EventInput struct {
	Seed          *uint32  `json:"seed,omitempty"`
	DoorIntensity *float64 `json:"door_intensity,omitempty"`
	AnchorMinutes *int     `json:"anchor_minutes,omitempty"`
}

// SeverityNote classifies a severity in [0, 1].
func SeverityNote(severity float64) string {
	switch {
	case severity > 0.66:
		return NoteHigh
	case severity > 0.33:
		return NoteNormal
	default:
		return NoteLight
	}
}

// BuildEvents returns EventCount door cycles from the four hours before the
// anchor, most recent first.
func BuildEvents(in EventInput) ([]Event, error) {
	seed := DefaultSeed
	if in.Seed != nil {
		seed = *in.Seed
	}
	intensity := DefaultDoorIntensity
	if in.DoorIntensity != nil {
		intensity = *in.DoorIntensity
	}
	if math.IsNaN(intensity) {
		return nil, fmt.Errorf("%w: door intensity is NaN", ErrInvalidArgument)
	}
	intensity = Clamp(intensity, 0, 1)
	anchor := DefaultAnchorMinutes
	if in.AnchorMinutes != nil {
		anchor = *in.AnchorMinutes
	}

	intensityKey := int(math.Round(intensity * 100))
	rng := prng.New(prng.Derive(seed, 0, 0, intensityKey))

	events := make([]Event, 0, EventCount)
	for i := 0; i < EventCount; i++ {
		ago := rng.Intn(eventWindowMinutes)
		when := timeutil.WrapMinutes(anchor - ago)
		duration := eventMinDuration + rng.Intn(eventDurationSpan)
		severity := Clamp(intensity+(rng.Float64()-0.5)*eventSeverityJit, 0, 1)

		id := uuid.NewSHA1(eventNamespace, []byte(fmt.Sprintf("%d/%d/%d", seed, intensityKey, i)))
		events = append(events, Event{
			ID:              id.String(),
			Type:            EventType,
			WhenLabel:       timeutil.FormatTimeOfDay(when),
			WhenMinute:      when,
			MinutesAgo:      ago,
			DurationSeconds: duration,
			Severity:        severity,
			Note:            SeverityNote(severity),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].MinutesAgo < events[j].MinutesAgo
	})
	return events, nil
}

// SortEventsByLabel reorders events by descending WhenLabel string. This is
// the ordering older dashboards used; it misorders labels across 10 o'clock
// and the AM/PM boundary.
func SortEventsByLabel(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].WhenLabel > events[j].WhenLabel
	})
}
