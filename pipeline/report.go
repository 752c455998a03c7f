package pipeline

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
)

// Report sheet names.
const (
	SheetSummary = "Summary"
	SheetEvents  = "Events"
	SheetMotors  = "Motors"
)

func writeReport(path, runID string, a *flightlog.Analysis) error {
	f, err := buildReport(runID, a)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func marshalReport(runID string, a *flightlog.Analysis) ([]byte, error) {
	f, err := buildReport(runID, a)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildReport lays the analysis out as a workbook with one sheet each for
// headline figures, events and motor outputs.
func buildReport(runID string, a *flightlog.Analysis) (*excelize.File, error) {
	if a == nil || a.Summary == nil {
		return nil, fmt.Errorf("analysis is required")
	}
	s := a.Summary

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetEvents, SheetMotors} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	summary := [][]any{
		{"Field", "Value"},
		{"Run ID", runID},
		{"Takeoff", a.Info.TakeoffTime},
		{"Duration", a.Info.TotalDuration},
		{"Duration (s)", s.DurationSeconds},
		{"Max altitude (m)", s.MaxAltitude},
		{"Max distance (m)", s.MaxDistance},
		{"Start voltage (V)", s.Battery.StartVoltage},
		{"End voltage (V)", s.Battery.EndVoltage},
		{"Min voltage (V)", s.Battery.MinVoltage},
		{"Avg current (A)", s.Battery.AvgCurrent},
		{"Max current (A)", s.Battery.MaxCurrent},
		{"Max vibration X", s.Vibration.MaxX},
		{"Max vibration Y", s.Vibration.MaxY},
		{"Max vibration Z", s.Vibration.MaxZ},
		{"Avg vibration Z", s.Vibration.AvgZ},
		{"Max roll (deg)", s.Attitude.MaxRoll},
		{"Max pitch (deg)", s.Attitude.MaxPitch},
		{"Min satellites", s.GPSStats.MinSatellites},
		{"Avg satellites", s.GPSStats.AvgSatellites},
		{"Max HDOP", s.GPSStats.MaxHDOP},
		{"Avg HDOP", s.GPSStats.AvgHDOP},
		{"Takeoff (s)", optionalCell(s.FlightPhases.TakeoffTime)},
		{"Landing (s)", optionalCell(s.FlightPhases.LandingTime)},
		{"Possible crash (s)", optionalCell(s.FlightPhases.CrashTime)},
		{"Events", len(s.Events)},
	}
	if p := s.BatteryProfile; p != nil {
		summary = append(summary,
			[]any{"Battery cells", p.CellCount},
			[]any{"Warning voltage (V)", p.WarningVoltage},
			[]any{"Critical voltage (V)", p.MinVoltage},
		)
	}
	for _, code := range s.ErrorCodes {
		summary = append(summary, []any{"Error raised", code})
	}
	if err := setRows(f, SheetSummary, summary); err != nil {
		_ = f.Close()
		return nil, err
	}

	events := [][]any{{"Time (s)", "Time", "Type", "Description", "Value"}}
	for _, e := range s.Events {
		events = append(events, []any{
			e.Timestamp,
			flightlog.FormatEventTime(e.Timestamp),
			string(e.Type),
			e.Description,
			optionalCell(e.Value),
		})
	}
	if err := setRows(f, SheetEvents, events); err != nil {
		_ = f.Close()
		return nil, err
	}

	motors := [][]any{{"Motor", "Avg output", "Max output", "Saturated (s)"}}
	for _, m := range s.MotorStats {
		motors = append(motors, []any{m.ID, m.AvgVal, m.MaxVal, m.SaturatedDuration})
	}
	if err := setRows(f, SheetMotors, motors); err != nil {
		_ = f.Close()
		return nil, err
	}

	widths := map[string]float64{SheetSummary: 22, SheetEvents: 18, SheetMotors: 14}
	for sheet, w := range widths {
		if err := f.SetColWidth(sheet, "A", "E", w); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func optionalCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
