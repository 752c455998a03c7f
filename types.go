package flightlog

import "errors"

// ErrNoData is returned when a summary is requested for an empty row set.
var ErrNoData = errors.New("no data provided for analysis")

// Row is one blackbox/telemetry sample keyed by CSV column name.
// Values are float64, int, numeric strings or hex strings; rows are never mutated.
type Row map[string]any

// DataPoint is one chart sample. X is seconds since the start of the log.
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LogData maps canonical channel names (plus MagnetTotalKey) to ordered samples.
type LogData map[string][]DataPoint

// FlightPathPoint is one geospatial sample. Time uses the chart time
// convention in milliseconds: absolute epoch ms, or relative ms from start.
type FlightPathPoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Alt  float64 `json:"alt"`
	Time float64 `json:"time"`
}

// FlightInfo carries display metadata about the log timeline.
type FlightInfo struct {
	TakeoffTime        string  `json:"takeoff_time"`
	TotalDuration      string  `json:"total_duration"`
	TakeoffTimestampMs float64 `json:"takeoff_timestamp_ms"`
	IsRelativeTime     bool    `json:"is_relative_time"`
}

// EventType classifies a detected flight event.
type EventType string

const (
	EventError           EventType = "ERROR"
	EventFailsafe        EventType = "FAILSAFE"
	EventArming          EventType = "ARMING"
	EventDisarming       EventType = "DISARMING"
	EventModeChange      EventType = "MODE_CHANGE"
	EventImpactDetected  EventType = "IMPACT_DETECTED"
	EventHighVibration   EventType = "HIGH_VIBRATION"
	EventMotorSaturation EventType = "MOTOR_SATURATION"
	EventBatteryWarning  EventType = "BATTERY_WARNING"
)

// FlightEvent is one detected event. Timestamp is seconds since the first valid time sample.
type FlightEvent struct {
	Timestamp   float64   `json:"timestamp"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Value       *float64  `json:"value,omitempty"`
}

// BatteryStats aggregates pack voltage and current.
type BatteryStats struct {
	StartVoltage float64 `json:"start_voltage"`
	EndVoltage   float64 `json:"end_voltage"`
	MinVoltage   float64 `json:"min_voltage"`
	MaxCurrent   float64 `json:"max_current"`
	AvgCurrent   float64 `json:"avg_current"`
}

// VibrationStats aggregates vibration magnitudes in m/s².
type VibrationStats struct {
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxZ float64 `json:"max_z"`
	AvgZ float64 `json:"avg_z"`
}

// AttitudeStats holds the attitude extrema in degrees.
type AttitudeStats struct {
	MaxRoll  float64 `json:"max_roll"`
	MaxPitch float64 `json:"max_pitch"`
}

// MotorStats summarizes one motor output channel. ID is 1-based.
type MotorStats struct {
	ID                int     `json:"id"`
	MaxVal            float64 `json:"max_val"`
	SaturatedDuration float64 `json:"saturated_duration_s"`
	AvgVal            float64 `json:"avg_val"`
}

// GPSStats summarizes receiver health.
type GPSStats struct {
	MinSatellites float64 `json:"min_satellites"`
	MaxHDOP       float64 `json:"max_hdop"`
	AvgSatellites float64 `json:"avg_satellites"`
	AvgHDOP       float64 `json:"avg_hdop"`
}

// FlightPhases holds phase timestamps in seconds; nil when not observed.
type FlightPhases struct {
	TakeoffTime *float64 `json:"takeoff_time,omitempty"`
	LandingTime *float64 `json:"landing_time,omitempty"`
	CrashTime   *float64 `json:"crash_time,omitempty"`
}

// FlightSummary is the aggregate produced by GenerateFlightSummary.
type FlightSummary struct {
	DurationSeconds float64         `json:"duration_seconds"`
	MaxAltitude     float64         `json:"max_altitude"`
	MaxDistance     float64         `json:"max_distance"`
	Battery         BatteryStats    `json:"battery"`
	BatteryProfile  *BatteryProfile `json:"battery_profile,omitempty"`
	Vibration       VibrationStats  `json:"vibration"`
	Attitude        AttitudeStats   `json:"attitude"`
	MotorStats      []MotorStats    `json:"motor_stats"`
	GPSStats        GPSStats        `json:"gps_stats"`
	Events          []FlightEvent   `json:"events"`
	ErrorCodes      []string        `json:"error_codes"`
	FlightPhases    FlightPhases    `json:"flight_phases"`
}

func floatPtr(v float64) *float64 {
	return &v
}
