package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
)

// relativeBase anchors relative timelines. The FIT epoch itself reads back
// as the invalid timestamp, so the base sits one second after it.
var relativeBase = time.Date(1989, 12, 31, 0, 0, 1, 0, time.UTC)

func writeFlightPathFIT(path string, points []flightlog.FlightPathPoint, relative bool) error {
	data, err := marshalFlightPathFIT(points, relative)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// marshalFlightPathFIT encodes the flight path as a FIT activity with one
// record per point, bracketed by timer start and stop events.
func marshalFlightPathFIT(points []flightlog.FlightPathPoint, relative bool) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("flight path is empty")
	}

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return nil, fmt.Errorf("new fit file: %w", err)
	}
	activity, err := file.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity accessor: %w", err)
	}

	start := pointTime(points[0], relative)
	end := pointTime(points[len(points)-1], relative)
	file.FileId.TimeCreated = start

	startEvent := fit.NewEventMsg()
	startEvent.Timestamp = start
	startEvent.Event = fit.EventTimer
	startEvent.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, startEvent)

	for _, p := range points {
		rec := fit.NewRecordMsg()
		rec.Timestamp = pointTime(p, relative)
		rec.PositionLat = fit.NewLatitudeDegrees(p.Lat)
		rec.PositionLong = fit.NewLongitudeDegrees(p.Lng)
		rec.Altitude = encodeAltitude(p.Alt)
		activity.Records = append(activity.Records, rec)
	}

	stopEvent := fit.NewEventMsg()
	stopEvent.Timestamp = end
	stopEvent.Event = fit.EventTimer
	stopEvent.EventType = fit.EventTypeStop
	activity.Events = append(activity.Events, stopEvent)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode fit: %w", err)
	}
	return buf.Bytes(), nil
}

func pointTime(p flightlog.FlightPathPoint, relative bool) time.Time {
	ms := int64(math.Round(p.Time))
	if relative {
		return relativeBase.Add(time.Duration(ms) * time.Millisecond)
	}
	return time.UnixMilli(ms).UTC()
}

// encodeAltitude applies the FIT record altitude scale (5) and offset (500 m).
// 0xFFFF is the invalid marker, so the top is clamped one below it.
func encodeAltitude(m float64) uint16 {
	v := math.Round((m + 500) * 5)
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 65534:
		return 65534
	}
	return uint16(v)
}
