package flightlog

import (
	"fmt"
	"math"
	"strings"
)

// BuildFlightNotes turns the metadata and summary into a plain text flight
// report used as analysis context.
func BuildFlightNotes(info FlightInfo, s *FlightSummary) string {
	if s == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Takeoff: %s\n", info.TakeoffTime)
	fmt.Fprintf(
		&b,
		"Duration %s (%.1f s) | Max altitude %.1f m\n",
		info.TotalDuration,
		s.DurationSeconds,
		s.MaxAltitude,
	)

	if p := s.BatteryProfile; p != nil {
		fmt.Fprintf(
			&b,
			"Battery %dS | %.1f V start / %.1f V end / %.1f V min | warn %.1f V, crit %.1f V\n",
			p.CellCount,
			s.Battery.StartVoltage,
			s.Battery.EndVoltage,
			s.Battery.MinVoltage,
			p.WarningVoltage,
			p.MinVoltage,
		)
	} else {
		b.WriteString("Battery profile unavailable (no voltage readings)\n")
	}
	fmt.Fprintf(&b, "Current %.1f avg / %.1f max A\n", s.Battery.AvgCurrent, s.Battery.MaxCurrent)
	fmt.Fprintf(
		&b,
		"Vibration max %.1f / %.1f / %.1f m/s² (x/y/z) | Z avg %.1f m/s²\n",
		s.Vibration.MaxX,
		s.Vibration.MaxY,
		s.Vibration.MaxZ,
		s.Vibration.AvgZ,
	)
	fmt.Fprintf(&b, "Attitude max roll %.1f° / pitch %.1f°\n", s.Attitude.MaxRoll, s.Attitude.MaxPitch)
	fmt.Fprintf(
		&b,
		"GPS sats %.0f min / %.1f avg | HDOP %.2f max / %.2f avg\n",
		s.GPSStats.MinSatellites,
		s.GPSStats.AvgSatellites,
		s.GPSStats.MaxHDOP,
		s.GPSStats.AvgHDOP,
	)

	if len(s.MotorStats) > 0 {
		b.WriteString("\nMotors\n")
		for _, m := range s.MotorStats {
			fmt.Fprintf(
				&b,
				"- Motor %d: %.0f avg / %.0f max, saturated %s\n",
				m.ID,
				m.AvgVal,
				m.MaxVal,
				formatDuration(m.SaturatedDuration),
			)
		}
	}

	b.WriteString("\nFlight Phases\n")
	fmt.Fprintf(&b, "- Takeoff: %s\n", phaseTime(s.FlightPhases.TakeoffTime))
	fmt.Fprintf(&b, "- Landing: %s\n", phaseTime(s.FlightPhases.LandingTime))
	if s.FlightPhases.CrashTime != nil {
		fmt.Fprintf(&b, "- Possible crash: %s\n", phaseTime(s.FlightPhases.CrashTime))
	}

	b.WriteString("\nEvents\n")
	if len(s.Events) == 0 {
		b.WriteString("- No events detected.\n")
	}
	for _, e := range s.Events {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", FormatEventTime(e.Timestamp), e.Type, e.Description)
	}

	if len(s.ErrorCodes) > 0 {
		b.WriteString("\nErrors Raised\n")
		for _, code := range s.ErrorCodes {
			fmt.Fprintf(&b, "- %s\n", code)
		}
	}

	return strings.TrimSpace(b.String())
}

// FormatEventTime renders seconds since log start as mm:ss.s.
func FormatEventTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	tenths := int64(math.Round(seconds * 10))
	m := tenths / 600
	rest := float64(tenths%600) / 10
	return fmt.Sprintf("%02d:%04.1f", m, rest)
}

func phaseTime(t *float64) string {
	if t == nil {
		return "not detected"
	}
	return FormatEventTime(*t)
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	return fmt.Sprintf("%dm%02ds", m, sec)
}
