package flightlog

import (
	"fmt"
	"math"
)

const (
	highVibrationThreshold = 60.0 // m/s²
	motorSaturationPWM     = 18500.0
	motorSaturationSeconds = 1.0
	// Voltages at or below this are treated as sensor noise, not a pack reading.
	plausiblePackVoltage = 5.0
	// Attitude magnitudes below this are assumed to be radians.
	radianAttitudeLimit = 7.0
	motorCount          = 4
)

var motorChannels = [motorCount]string{ChannelMotor1, ChannelMotor2, ChannelMotor3, ChannelMotor4}

type motorState struct {
	maxVal    float64
	sum       float64
	count     int
	run       float64
	total     float64
	saturated bool
}

// detectorState is the running state of one summary pass.
type detectorState struct {
	tb       TimeBase
	events   []FlightEvent
	errorSet map[string]struct{}
	errors   []string

	lastT float64

	maxAltitude  *float64
	home         *FlightPathPoint
	maxDistance  float64
	startVoltage float64
	minVoltage   *float64
	maxCurrent   *float64
	currentSum   float64
	currentCount int

	profile         *BatteryProfile
	lowVoltage      bool
	criticalVoltage bool
	overCurrent     bool

	maxVibX, maxVibY, maxVibZ float64
	sumVibZ                   float64
	vibZCount                 int
	highVibration             bool

	maxRoll, maxPitch float64

	motors [motorCount]motorState

	minSats   *float64
	maxHDOP   *float64
	sumSats   float64
	satCount  int
	sumHDOP   float64
	hdopCount int

	lastMode     *float64
	wasArmed     bool
	lastMask     uint32
	lastFailsafe float64
}

// GenerateFlightSummary runs the event detectors and aggregates over all rows.
// An empty row set is the only error; a log without a time column yields a
// zeroed summary.
func GenerateFlightSummary(rows []Row) (*FlightSummary, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	tb, ok := DetectTimeBase(rows)
	if !ok {
		return emptySummary(), nil
	}

	s := &detectorState{
		tb:       tb,
		events:   make([]FlightEvent, 0, 64),
		errorSet: make(map[string]struct{}),
	}
	for _, row := range rows {
		if v := Value(row, ChannelESC1Voltage); v != nil {
			s.startVoltage = *v
			break
		}
	}
	if s.startVoltage > 0 {
		p := DetectBatteryProfile(s.startVoltage)
		s.profile = &p
	}

	for i, row := range rows {
		t := s.lastT
		if raw, ok := tb.Raw(row); ok {
			t = tb.Seconds(raw)
		}
		dt := 0.0
		if i > 0 {
			dt = math.Max(0, t-s.lastT)
		}
		s.lastT = t
		s.observe(row, t, dt)
	}
	return s.finish(rows), nil
}

func emptySummary() *FlightSummary {
	motors := make([]MotorStats, motorCount)
	for i := range motors {
		motors[i].ID = i + 1
	}
	return &FlightSummary{
		MotorStats: motors,
		Events:     []FlightEvent{},
		ErrorCodes: []string{},
	}
}

func (s *detectorState) emit(t float64, typ EventType, desc string, value float64) {
	s.events = append(s.events, FlightEvent{
		Timestamp:   t,
		Type:        typ,
		Description: desc,
		Value:       floatPtr(value),
	})
}

func (s *detectorState) observe(row Row, t, dt float64) {
	if alt := Value(row, ChannelAltitude); alt != nil {
		s.maxAltitude = maxPtr(s.maxAltitude, *alt)
	}
	s.observeDistance(row)
	s.observeBattery(row, t)
	s.observeAttitude(row)
	s.observeVibration(row, t)
	s.observeMotors(row, t, dt)
	s.observeGPS(row)
	s.observeMode(row, t)
	s.observeArming(row, t)
	s.observeErrors(row, t)
	s.observeFailsafe(row, t)
}

// observeDistance tracks the farthest great-circle distance from the first fix.
func (s *detectorState) observeDistance(row Row) {
	lat := Value(row, ChannelLatitude)
	lng := Value(row, ChannelLongitude)
	if lat == nil || lng == nil || *lat == 0 || *lng == 0 {
		return
	}
	p := FlightPathPoint{Lat: rescaleFixedPoint(*lat, 90), Lng: rescaleFixedPoint(*lng, 180)}
	if s.home == nil {
		s.home = &p
		return
	}
	s.maxDistance = math.Max(s.maxDistance, haversineMeters(*s.home, p))
}

func (s *detectorState) observeBattery(row Row, t float64) {
	volt := Value(row, ChannelESC1Voltage)
	if volt != nil {
		if s.profile == nil && *volt > plausiblePackVoltage {
			p := DetectBatteryProfile(*volt)
			s.profile = &p
		}
		if *volt > 0 {
			s.minVoltage = minPtr(s.minVoltage, *volt)
		}
	}

	curr := Value(row, ChannelESC1Current)
	if curr != nil {
		s.maxCurrent = maxPtr(s.maxCurrent, *curr)
		s.currentSum += *curr
		s.currentCount++
	}

	if s.profile == nil {
		return
	}
	p := s.profile
	if volt != nil && *volt > plausiblePackVoltage {
		switch {
		case *volt < p.MinVoltage && !s.criticalVoltage:
			s.emit(t, EventBatteryWarning,
				fmt.Sprintf("Critical Battery Voltage (< %.1fV, %dS)", p.MinVoltage, p.CellCount), *volt)
			s.criticalVoltage = true
		case *volt < p.WarningVoltage && !s.lowVoltage:
			s.emit(t, EventBatteryWarning,
				fmt.Sprintf("Low Battery Voltage (< %.1fV - System 0%%)", p.WarningVoltage), *volt)
			s.lowVoltage = true
		}
	}
	if curr != nil && *curr > p.MaxContinuousCurrent && !s.overCurrent {
		s.emit(t, EventBatteryWarning,
			fmt.Sprintf("Battery Overcurrent Detected (> %gA)", p.MaxContinuousCurrent), *curr)
		s.overCurrent = true
	}
}

func (s *detectorState) observeAttitude(row Row) {
	if roll := Value(row, ChannelRoll); roll != nil {
		s.maxRoll = math.Max(s.maxRoll, attitudeDegrees(*roll))
	}
	if pitch := Value(row, ChannelPitch); pitch != nil {
		s.maxPitch = math.Max(s.maxPitch, attitudeDegrees(*pitch))
	}
}

func attitudeDegrees(v float64) float64 {
	v = math.Abs(v)
	if v < radianAttitudeLimit {
		return v * radiansToDegrees
	}
	return v
}

func (s *detectorState) observeVibration(row Row, t float64) {
	if vx := Value(row, ChannelVibrationX); vx != nil {
		s.maxVibX = math.Max(s.maxVibX, math.Abs(*vx))
	}
	if vy := Value(row, ChannelVibrationY); vy != nil {
		s.maxVibY = math.Max(s.maxVibY, math.Abs(*vy))
	}
	v := Value(row, ChannelVibrationZ)
	if v == nil {
		return
	}
	vz := math.Abs(*v)
	s.maxVibZ = math.Max(s.maxVibZ, vz)
	s.sumVibZ += vz
	s.vibZCount++

	// Rising edge fires; dropping back below re-arms the detector.
	if vz > highVibrationThreshold && !s.highVibration {
		s.emit(t, EventHighVibration, fmt.Sprintf("High Z-Axis Vibration Detected (%.1f m/s²)", vz), vz)
		s.highVibration = true
	} else if vz < highVibrationThreshold && s.highVibration {
		s.highVibration = false
	}
}

func (s *detectorState) observeMotors(row Row, t, dt float64) {
	for idx, name := range motorChannels {
		v := Value(row, name)
		if v == nil {
			continue
		}
		m := &s.motors[idx]
		m.count++
		m.sum += *v
		m.maxVal = math.Max(m.maxVal, *v)

		if *v <= motorSaturationPWM {
			m.run = 0
			m.saturated = false
			continue
		}
		m.run += dt
		m.total += dt
		if !m.saturated && m.run > motorSaturationSeconds {
			s.emit(t, EventMotorSaturation, fmt.Sprintf("Motor %d Saturated (> %g)", idx+1, motorSaturationPWM), *v)
			m.saturated = true
		}
	}
}

func (s *detectorState) observeGPS(row Row) {
	if sats := Value(row, ChannelSatellites); sats != nil {
		s.minSats = minPtr(s.minSats, *sats)
		s.sumSats += *sats
		s.satCount++
	}
	if hdop := Value(row, ChannelHDOP); hdop != nil {
		s.maxHDOP = maxPtr(s.maxHDOP, *hdop)
		s.sumHDOP += *hdop
		s.hdopCount++
	}
}

func (s *detectorState) observeMode(row Row, t float64) {
	mode := Value(row, ChannelFlightMode)
	if mode == nil || (s.lastMode != nil && *s.lastMode == *mode) {
		return
	}
	s.emit(t, EventModeChange, "Flight mode changed: "+FlightModeDescription(*mode), *mode)
	s.lastMode = mode
}

func (s *detectorState) observeArming(row Row, t float64) {
	v := Value(row, ChannelArmed)
	armed := v != nil && *v > 0
	if armed == s.wasArmed {
		return
	}
	value := 0.0
	if v != nil {
		value = *v
	}
	if armed {
		s.emit(t, EventArming, "Vehicle Armed", value)
	} else {
		s.emit(t, EventDisarming, "Vehicle Disarmed", value)
	}
	s.wasArmed = armed
}

// observeErrors diffs the 32-bit error mask against the previous row.
// Rows without an error value keep the previous mask.
func (s *detectorState) observeErrors(row Row, t float64) {
	v := Value(row, ChannelError)
	if v == nil {
		return
	}
	mask := toMask(*v)
	if mask == s.lastMask {
		return
	}
	diff := mask ^ s.lastMask
	for bit := 0; bit < 32; bit++ {
		if diff>>bit&1 == 0 {
			continue
		}
		id := bit + 1
		desc := ErrorDescription(id)
		if mask>>bit&1 == 1 {
			s.emit(t, EventError, "Error raised: "+desc, float64(id))
			s.addErrorCode(fmt.Sprintf("%d: %s", id, desc))
		} else {
			s.emit(t, EventError, "Error cleared: "+desc, float64(id))
		}
	}
	if mask == 0 && s.lastMask != 0 {
		s.emit(t, EventError, "System recovered (System OK)", 0)
	}
	s.lastMask = mask
}

// toMask wraps the truncated value modulo 2^32, so negative and oversized
// error words keep their low 32 bits.
func toMask(v float64) uint32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(v), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

func (s *detectorState) addErrorCode(code string) {
	if _, ok := s.errorSet[code]; ok {
		return
	}
	s.errorSet[code] = struct{}{}
	s.errors = append(s.errors, code)
}

func (s *detectorState) observeFailsafe(row Row, t float64) {
	v := Value(row, ChannelFailsafe)
	if v == nil || *v == s.lastFailsafe {
		return
	}
	if *v != 0 {
		s.emit(t, EventFailsafe, "Failsafe triggered: "+FailsafeDescription(*v), *v)
	} else {
		s.emit(t, EventFailsafe, "Failsafe cleared (fs_none)", 0)
	}
	s.lastFailsafe = *v
}

func (s *detectorState) finish(rows []Row) *FlightSummary {
	out := &FlightSummary{
		DurationSeconds: s.tb.Duration(),
		MaxAltitude:     valueOr(s.maxAltitude, 0),
		MaxDistance:     s.maxDistance,
		Battery: BatteryStats{
			StartVoltage: s.startVoltage,
			EndVoltage:   valueOr(Value(rows[len(rows)-1], ChannelESC1Voltage), 0),
			MinVoltage:   valueOr(s.minVoltage, 0),
			MaxCurrent:   valueOr(s.maxCurrent, 0),
			AvgCurrent:   mean(s.currentSum, s.currentCount),
		},
		Vibration: VibrationStats{
			MaxX: s.maxVibX,
			MaxY: s.maxVibY,
			MaxZ: s.maxVibZ,
			AvgZ: mean(s.sumVibZ, s.vibZCount),
		},
		Attitude: AttitudeStats{MaxRoll: s.maxRoll, MaxPitch: s.maxPitch},
		GPSStats: GPSStats{
			MinSatellites: valueOr(s.minSats, 0),
			MaxHDOP:       valueOr(s.maxHDOP, 0),
			AvgSatellites: mean(s.sumSats, s.satCount),
			AvgHDOP:       mean(s.sumHDOP, s.hdopCount),
		},
		ErrorCodes: s.errors,
	}
	if out.ErrorCodes == nil {
		out.ErrorCodes = []string{}
	}
	out.MotorStats = make([]MotorStats, motorCount)
	for i, m := range s.motors {
		out.MotorStats[i] = MotorStats{
			ID:                i + 1,
			MaxVal:            m.maxVal,
			SaturatedDuration: m.total,
			AvgVal:            mean(m.sum, m.count),
		}
	}
	out.FlightPhases = flightPhases(s.events)

	events := s.events
	if s.profile != nil {
		out.BatteryProfile = s.profile
		p := s.profile
		head := FlightEvent{
			Timestamp: 0,
			Type:      EventBatteryWarning,
			Description: fmt.Sprintf("Battery Detected: %dS (Start: %.1fV, Warn: %.1fV, Crit: %.1fV)",
				p.CellCount, s.startVoltage, p.WarningVoltage, p.MinVoltage),
			Value: floatPtr(float64(p.CellCount)),
		}
		events = append([]FlightEvent{head}, events...)
	}
	out.Events = events
	return out
}

// flightPhases derives takeoff (first arm), landing (last disarm) and crash
// time. Crash is the last nonzero ERROR/FAILSAFE event after landing, or any
// such event when the log never disarms, so it can misfire on truncated logs.
func flightPhases(events []FlightEvent) FlightPhases {
	var phases FlightPhases
	var crash *FlightEvent
	for i := range events {
		e := &events[i]
		switch e.Type {
		case EventArming:
			if phases.TakeoffTime == nil {
				phases.TakeoffTime = floatPtr(e.Timestamp)
			}
		case EventDisarming:
			phases.LandingTime = floatPtr(e.Timestamp)
		case EventError, EventFailsafe:
			if e.Value != nil && *e.Value != 0 {
				crash = e
			}
		}
	}
	if crash != nil && (phases.LandingTime == nil || crash.Timestamp > *phases.LandingTime) {
		phases.CrashTime = floatPtr(crash.Timestamp)
	}
	return phases
}

const earthRadiusMeters = 6371000.0

func haversineMeters(a, b FlightPathPoint) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func maxPtr(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return floatPtr(v)
	}
	return cur
}

func minPtr(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return floatPtr(v)
	}
	return cur
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
