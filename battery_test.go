package flightlog

import (
	"math"
	"testing"
)

func TestDetectBatteryProfile(t *testing.T) {
	cases := []struct {
		voltage    float64
		cells      int
		warn, min  float64
		continuous float64
	}{
		{voltage: 59, cells: 14, warn: 49, min: 44.8, continuous: 120},
		{voltage: 50, cells: 12, warn: 42, min: 38.4, continuous: 120},
		{voltage: 40, cells: 10, warn: 35, min: 32, continuous: 100},
		{voltage: 33.6, cells: 8, warn: 28, min: 25.6, continuous: 80},
		{voltage: 25.2, cells: 6, warn: 21, min: 19.2, continuous: 60},
		{voltage: 17.0, cells: 4, warn: 13.6, min: 12.8, continuous: 20},
		{voltage: 12.6, cells: 4, warn: 13.6, min: 12.8, continuous: 20},
		{voltage: 12.5, cells: 3, warn: 10.5, min: 9.6, continuous: 40},
		{voltage: 0, cells: 3, warn: 10.5, min: 9.6, continuous: 40},
	}
	for _, tc := range cases {
		p := DetectBatteryProfile(tc.voltage)
		if p.CellCount != tc.cells {
			t.Fatalf("%.1f V: cells=%d, want %d", tc.voltage, p.CellCount, tc.cells)
		}
		if math.Abs(p.WarningVoltage-tc.warn) > 1e-9 || math.Abs(p.MinVoltage-tc.min) > 1e-9 {
			t.Fatalf("%.1f V: warn/min=%v/%v, want %v/%v", tc.voltage, p.WarningVoltage, p.MinVoltage, tc.warn, tc.min)
		}
		if p.MaxContinuousCurrent != tc.continuous {
			t.Fatalf("%.1f V: continuous=%v, want %v", tc.voltage, p.MaxContinuousCurrent, tc.continuous)
		}
	}
}
