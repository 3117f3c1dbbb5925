package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MsSince is the elapsed time since t in fractional milliseconds, the unit
// every metric and timing header here uses.
func MsSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}

// AppendServerTiming adds one Server-Timing entry. Non-positive durations
// are left out; an entry with neither duration nor description is skipped.
func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	if durMs <= 0 && desc == "" {
		return
	}
	var b strings.Builder
	b.WriteString(name)
	if durMs > 0 {
		b.WriteString(";dur=")
		b.WriteString(strconv.FormatFloat(durMs, 'f', 2, 64))
	}
	if desc != "" {
		b.WriteString(";desc=")
		b.WriteString(strconv.Quote(desc))
	}
	w.Header().Add("Server-Timing", b.String())
}

// SetIfPos sets key to ms with two decimals, only for positive values.
func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, strconv.FormatFloat(ms, 'f', 2, 64))
	}
}
