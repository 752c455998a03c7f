package flightlog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeKeys lists candidate time columns in priority order.
var TimeKeys = []string{
	"unix_time",
	"blackbox.sensor_values.gps_data.unix_time",
	"time",
	"blackbox.steady_time",
	"blackbox.wall_time",
}

// UnixTimeKeys lists the absolute-time columns used to locate the takeoff timestamp.
var UnixTimeKeys = []string{"unix_time", "blackbox.sensor_values.gps_data.unix_time"}

const (
	absoluteTimeMarker = "unix_time"
	// Unix timestamps below this are seconds, above are milliseconds.
	epochSecondsLimit = 1e12
	// Relative timestamps above this are microseconds, below are milliseconds.
	relativeMicrosLimit = 1e6
)

// displayZone renders absolute takeoff times in Taiwan local time (UTC+8, no DST).
var displayZone = time.FixedZone("Asia/Taipei", 8*60*60)

// TimeBase describes the timeline of one log: which column carries time,
// whether it is absolute epoch time, and the span of valid samples.
type TimeBase struct {
	Key      string
	Absolute bool
	// Start and End are the raw minimum and maximum of all valid samples.
	Start float64
	End   float64
	valid bool
}

// DetectTimeBase picks the time column from the first non-nil row and scans
// all rows for the valid sample span. ok is false when no candidate column exists.
func DetectTimeBase(rows []Row) (TimeBase, bool) {
	key := firstPresentKey(firstRow(rows), TimeKeys)
	if key == "" {
		return TimeBase{}, false
	}
	tb := TimeBase{Key: key, Absolute: strings.Contains(key, absoluteTimeMarker)}
	for _, row := range rows {
		raw, ok := tb.Raw(row)
		if !ok {
			continue
		}
		if !tb.valid {
			tb.Start, tb.End, tb.valid = raw, raw, true
			continue
		}
		tb.Start = math.Min(tb.Start, raw)
		tb.End = math.Max(tb.End, raw)
	}
	return tb, true
}

// HasSamples reports whether at least one valid time sample was found.
func (tb TimeBase) HasSamples() bool {
	return tb.valid
}

// Raw returns the row's raw time value. Non-positive absolute values are
// rejected since they mark samples taken before the GPS fix.
func (tb TimeBase) Raw(row Row) (float64, bool) {
	if row == nil || tb.Key == "" {
		return 0, false
	}
	v, ok := ParseNumeric(row[tb.Key])
	if !ok || math.IsInf(v, 0) {
		return 0, false
	}
	if tb.Absolute && v <= 0 {
		return 0, false
	}
	return v, true
}

func (tb TimeBase) absoluteInSeconds() bool {
	return tb.Start < epochSecondsLimit
}

// toMs converts a raw sample to the millisecond timeline.
func (tb TimeBase) toMs(raw float64) float64 {
	if tb.Absolute {
		if tb.absoluteInSeconds() {
			return raw * 1000
		}
		return raw
	}
	if tb.Start > relativeMicrosLimit {
		return raw * 0.001
	}
	return raw
}

// Seconds maps a raw time value to seconds since the start of the log.
func (tb TimeBase) Seconds(raw float64) float64 {
	return (tb.toMs(raw) - tb.toMs(tb.Start)) / 1000
}

// StartMs returns the absolute start in epoch milliseconds, or 0 for relative timelines.
func (tb TimeBase) StartMs() float64 {
	if !tb.Absolute || !tb.valid {
		return 0
	}
	return tb.toMs(tb.Start)
}

// DurationMs returns the span of valid samples in milliseconds.
func (tb TimeBase) DurationMs() float64 {
	if !tb.valid {
		return 0
	}
	return tb.toMs(tb.End) - tb.toMs(tb.Start)
}

// Duration returns the span of valid samples in seconds.
func (tb TimeBase) Duration() float64 {
	return tb.DurationMs() / 1000
}

// DurationString renders the span as "<minutes> min <seconds> sec", or "N/A".
func (tb TimeBase) DurationString() string {
	ms := tb.DurationMs()
	if ms <= 0 {
		return "N/A"
	}
	total := int64(math.Floor(ms / 1000))
	return fmt.Sprintf("%d min %d sec", total/60, total%60)
}

// ProcessMetadata derives the display timeline of a log.
func ProcessMetadata(rows []Row) FlightInfo {
	tb, found := DetectTimeBase(rows)
	duration := "N/A"
	if found {
		duration = tb.DurationString()
	}

	for _, row := range rows {
		ts := ValueFromKeys(row, UnixTimeKeys)
		if ts == nil || math.IsInf(*ts, 0) || *ts <= 0 {
			continue
		}
		ms := *ts
		if ms < epochSecondsLimit {
			ms *= 1000
		}
		return FlightInfo{
			TakeoffTime:        FormatTakeoffTime(ms),
			TotalDuration:      duration,
			TakeoffTimestampMs: ms,
			IsRelativeTime:     false,
		}
	}

	if !found || !tb.HasSamples() {
		return FlightInfo{TakeoffTime: "N/A", TotalDuration: "N/A", IsRelativeTime: true}
	}
	return FlightInfo{
		TakeoffTime:    "N/A (no absolute timestamp)",
		TotalDuration:  duration,
		IsRelativeTime: true,
	}
}

// FormatTakeoffTime renders epoch milliseconds as a long local date and time.
func FormatTakeoffTime(ms float64) string {
	t := time.UnixMilli(int64(ms)).In(displayZone)
	return t.Format("2006年1月2日 15:04:05")
}

func firstRow(rows []Row) Row {
	for _, r := range rows {
		if r != nil {
			return r
		}
	}
	return nil
}

func firstPresentKey(row Row, keys []string) string {
	if row == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return k
		}
	}
	return ""
}
