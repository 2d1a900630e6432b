// Package monitoring holds the diagnostic log hook shared by the HTTP
// surface, the frame stream and the command-line tools.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger; tests mute it with SetLogger(nil).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogDuration reports how long an operation took once it finishes:
//
//	defer monitoring.LogDuration("timeseries", time.Now())
func LogDuration(label string, start time.Time) {
	Logf("%s took %.2fms", label, float64(time.Since(start).Microseconds())/1000)
}
