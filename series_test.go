package flightlog

import (
	"math"
	"testing"
)

func xs(points []DataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}

func assertFloats(t *testing.T, label string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("%s[%d]: got %v, want %v", label, i, got[i], want[i])
		}
	}
}

func TestProcessRawDataSubSampleSpacing(t *testing.T) {
	rows := []Row{
		{"time": 0.0, "motor1": 1000.0},
		{"time": 0.0, "motor1": 1100.0},
		{"time": 0.0, "motor1": 1200.0},
		{"time": 1000.0, "motor1": 1300.0},
		{"time": 1000.0, "motor1": 1400.0},
	}
	chart, _ := ProcessRawData(rows)
	assertFloats(t, "motor x", xs(chart[ChannelMotor1]), []float64{0, 0.2, 0.4, 1.0, 1.2})
}

func TestProcessRawDataSkipsMissingAndUnparseable(t *testing.T) {
	rows := []Row{
		{"time": 0.0, "motor1": 1000.0},
		{"time": 500.0, "motor1": "abc"},
		{"motor1": 1200.0},
		{"time": "", "motor1": 1300.0},
		{"time": 1500.0, "motor1": "0x5DC"},
	}
	chart, _ := ProcessRawData(rows)
	got := chart[ChannelMotor1]
	if len(got) != 2 {
		t.Fatalf("expected 2 motor samples, got %+v", got)
	}
	if got[1].X != 1.5 || got[1].Y != 1500 {
		t.Fatalf("unexpected hex sample %+v", got[1])
	}
}

func TestProcessRawDataTransformsAndMagnetTotal(t *testing.T) {
	rows := []Row{
		{"time": 0.0, "altitude": 100.0, "roll": 1.0, "magnet_x": 1.0, "magnet_y": 2.0, "magnet_z": 2.0},
		{"time": 1000.0, "altitude": 112.5, "magnet_x": 1.0, "magnet_y": 2.0},
	}
	chart, _ := ProcessRawData(rows)

	alt := chart[ChannelAltitude]
	assertFloats(t, "altitude", []float64{alt[0].Y, alt[1].Y}, []float64{0, 12.5})

	if roll := chart[ChannelRoll]; len(roll) != 1 || math.Abs(roll[0].Y-57.3) > 1e-9 {
		t.Fatalf("unexpected roll series %+v", roll)
	}
	total := chart[MagnetTotalKey]
	if len(total) != 1 || total[0].Y != 9 {
		t.Fatalf("expected one magnet total of 9, got %+v", total)
	}
	if _, ok := chart[ChannelLatitude]; ok {
		t.Fatal("latitude should not be a chart series")
	}
}

func TestProcessRawDataFlightPath(t *testing.T) {
	rows := []Row{
		{"unix_time": 1700000000.0, "lat": -251650000.0, "lng": 1215000000.0, "alt": 50.0},
		{"unix_time": 1700000001.0, "lat": 0.0, "lng": 121.5, "alt": 51.0},
		{"unix_time": 1700000002.0, "lat": 25.1, "lng": 121.6},
		{"unix_time": 1700000003.0, "lat": 25.2, "lng": 121.7, "alt": 52.0},
	}
	_, path := ProcessRawData(rows)
	if len(path) != 2 {
		t.Fatalf("expected 2 path points, got %+v", path)
	}
	if math.Abs(path[0].Lat+25.165) > 1e-9 || math.Abs(path[0].Lng-121.5) > 1e-9 {
		t.Fatalf("fixed-point coordinates not rescaled: %+v", path[0])
	}
	if path[0].Alt != 50 {
		t.Fatalf("path altitude should stay absolute, got %v", path[0].Alt)
	}
	if path[0].Time != 1700000000000 || path[1].Time != 1700000003000 {
		t.Fatalf("unexpected path times %v %v", path[0].Time, path[1].Time)
	}
}

func TestProcessRawDataRelativePathTime(t *testing.T) {
	rows := []Row{
		{"time": 2000.0, "lat": 25.0, "lng": 121.0, "alt": 10.0},
		{"time": 4000.0, "lat": 25.0, "lng": 121.0, "alt": 10.0},
	}
	_, path := ProcessRawData(rows)
	if len(path) != 2 || path[0].Time != 0 || path[1].Time != 2000 {
		t.Fatalf("unexpected relative path %+v", path)
	}
}

func TestProcessRawDataWithoutTimeColumn(t *testing.T) {
	chart, path := ProcessRawData([]Row{{"motor1": 1000.0}})
	if path != nil {
		t.Fatalf("expected nil path, got %+v", path)
	}
	series, ok := chart[ChannelMotor1]
	if !ok || len(series) != 0 {
		t.Fatalf("expected empty motor series key, got %+v (present=%v)", series, ok)
	}
	if _, ok := chart[MagnetTotalKey]; !ok {
		t.Fatal("expected magnet total key")
	}
}
