package timeutil

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of the wall-clock cycle used for wrapping.
const MinutesPerDay = 24 * 60

// WrapMinutes folds any minute offset into [0, MinutesPerDay).
// -10 becomes 1430 (11:50 PM).
func WrapMinutes(m int) int {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// MinuteOfDay returns the minute-of-day of t in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatTimeOfDay renders a minute-of-day as a 12-hour label such as
// "1:30 AM". Hour zero is shown as 12. Values outside a single day wrap.
func FormatTimeOfDay(minutes int) string {
	m := WrapMinutes(minutes)
	h := m / 60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m%60, suffix)
}
