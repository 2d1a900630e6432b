package fieldsim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/slice0/internal/timeutil"
)

func TestBuildEvents_Shape(t *testing.T) {
	for _, intensity := range []float64{0, 0.2, 0.5, 0.8, 1} {
		events, err := BuildEvents(EventInput{DoorIntensity: floatPtr(intensity)})
		require.NoError(t, err)
		require.Len(t, events, EventCount)

		ids := map[string]bool{}
		for _, e := range events {
			assert.Equal(t, EventType, e.Type)
			assert.GreaterOrEqual(t, e.DurationSeconds, 10)
			assert.LessOrEqual(t, e.DurationSeconds, 54)
			assert.GreaterOrEqual(t, e.Severity, 0.0)
			assert.LessOrEqual(t, e.Severity, 1.0)
			assert.InDelta(t, intensity, e.Severity, 0.125+1e-12)
			assert.Equal(t, SeverityNote(e.Severity), e.Note)
			assert.GreaterOrEqual(t, e.MinutesAgo, 0)
			assert.Less(t, e.MinutesAgo, 240)
			assert.Equal(t, timeutil.WrapMinutes(DefaultAnchorMinutes-e.MinutesAgo), e.WhenMinute)
			assert.Equal(t, timeutil.FormatTimeOfDay(e.WhenMinute), e.WhenLabel)
			assert.False(t, ids[e.ID], "duplicate id %s", e.ID)
			ids[e.ID] = true
		}
	}
}

func TestBuildEvents_MostRecentFirst(t *testing.T) {
	events, err := BuildEvents(EventInput{AnchorMinutes: intPtr(60)})
	require.NoError(t, err)
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].MinutesAgo, events[i].MinutesAgo)
	}
}

func TestBuildEvents_Deterministic(t *testing.T) {
	in := EventInput{Seed: uint32Ptr(11), DoorIntensity: floatPtr(0.5)}
	a, err := BuildEvents(in)
	require.NoError(t, err)
	b, err := BuildEvents(in)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("BuildEvents() not deterministic (-a +b):\n%s", diff)
	}

	c, err := BuildEvents(EventInput{Seed: uint32Ptr(12), DoorIntensity: floatPtr(0.5)})
	require.NoError(t, err)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestSeverityNote(t *testing.T) {
	assert.Equal(t, NoteHigh, SeverityNote(0.9))
	assert.Equal(t, NoteNormal, SeverityNote(0.66))
	assert.Equal(t, NoteNormal, SeverityNote(0.5))
	assert.Equal(t, NoteLight, SeverityNote(0.33))
	assert.Equal(t, NoteLight, SeverityNote(0))
}

func TestSortEventsByLabel(t *testing.T) {
	events := []Event{
		{ID: "a", WhenLabel: "9:00 AM"},
		{ID: "b", WhenLabel: "10:00 AM"},
		{ID: "c", WhenLabel: "1:15 PM"},
	}
	SortEventsByLabel(events)

	// Lexicographic order puts 9 o'clock ahead of 10 and 1 PM last.
	got := []string{events[0].ID, events[1].ID, events[2].ID}
	assert.Equal(t, []string{"a", "c", "b"}, got)
}
