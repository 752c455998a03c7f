package flightlog

// BatteryProfile is the inferred pack configuration used as detection context.
type BatteryProfile struct {
	CellCount            int     `json:"cell_count"`
	WarningVoltage       float64 `json:"warning_voltage"`
	MinVoltage           float64 `json:"min_voltage"`
	MaxContinuousCurrent float64 `json:"max_continuous_current"`
	MaxBurstCurrent      float64 `json:"max_burst_current"`
}

const (
	cellWarningVoltage = 3.5
	cellMinVoltage     = 3.2
)

type batteryBracket struct {
	above      float64
	cells      int
	continuous float64
	burst      float64
}

// Checked high to low; the first bracket whose floor the voltage exceeds wins.
var batteryBrackets = []batteryBracket{
	{above: 58, cells: 14, continuous: 120, burst: 180},
	{above: 41, cells: 12, continuous: 120, burst: 180},
	{above: 30, cells: 10, continuous: 100, burst: 150},
	{above: 26, cells: 8, continuous: 80, burst: 120},
	{above: 18, cells: 6, continuous: 60, burst: 100},
}

// DetectBatteryProfile guesses the series cell count from an observed pack
// voltage. The result is approximate and bracket based. The 4S bracket uses
// the MCX-250421 datasheet (4S 8.7Ah): 12.8 V cut-off, 13.6 V system 0%,
// 20 A continuous and 40 A pulse. Anything at or below 12.5 V is taken as 3S.
func DetectBatteryProfile(voltage float64) BatteryProfile {
	if voltage > 0 {
		for _, b := range batteryBrackets {
			if voltage > b.above {
				return perCellProfile(b.cells, b.continuous, b.burst)
			}
		}
		if voltage > 12.5 {
			return BatteryProfile{
				CellCount:            4,
				WarningVoltage:       13.6,
				MinVoltage:           12.8,
				MaxContinuousCurrent: 20,
				MaxBurstCurrent:      40,
			}
		}
	}
	return perCellProfile(3, 40, 60)
}

func perCellProfile(cells int, continuous, burst float64) BatteryProfile {
	return BatteryProfile{
		CellCount:            cells,
		WarningVoltage:       float64(cells) * cellWarningVoltage,
		MinVoltage:           float64(cells) * cellMinVoltage,
		MaxContinuousCurrent: continuous,
		MaxBurstCurrent:      burst,
	}
}
