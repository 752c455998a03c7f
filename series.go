package flightlog

import "math"

// subSampleSpacing is the synthetic spacing, in seconds, given to rows that
// share the same raw timestamp. It assumes a 5 Hz sensor rate behind a
// coarser timestamp field; it is a display heuristic, not a reconstruction
// of the true sampling time, and logs at other native rates will be skewed.
const subSampleSpacing = 0.2

// Fixed-point GPS encodings store degrees scaled by 1e7.
const gpsFixedPointScale = 1e7

// ProcessRawData builds chart series and the flight path in one ordered pass.
// Without a usable time column both outputs are empty.
func ProcessRawData(rows []Row) (LogData, []FlightPathPoint) {
	channels := ChartChannels()
	chart := make(LogData, len(channels)+1)
	for _, ch := range channels {
		chart[ch.Name] = []DataPoint{}
	}
	chart[MagnetTotalKey] = []DataPoint{}

	tb, ok := DetectTimeBase(rows)
	if !ok {
		return chart, nil
	}

	baselines := make(map[string]float64, 1)
	for _, row := range rows {
		if alt := Value(row, ChannelAltitude); alt != nil {
			baselines[BaselineInitialAlt] = *alt
			break
		}
	}

	path := make([]FlightPathPoint, 0, len(rows))
	var (
		lastRaw    float64
		haveLast   bool
		subCounter int
	)
	for _, row := range rows {
		raw, ok := tb.Raw(row)
		if !ok {
			continue
		}
		if !haveLast || raw != lastRaw {
			subCounter = 0
			lastRaw = raw
			haveLast = true
		}
		t := tb.Seconds(raw) + float64(subCounter)*subSampleSpacing
		subCounter++

		var magX, magY, magZ *float64
		for _, ch := range channels {
			v := Value(row, ch.Name)
			if v == nil {
				continue
			}
			y := ch.Apply(*v, baselines)
			chart[ch.Name] = append(chart[ch.Name], DataPoint{X: t, Y: y})
			switch ch.Name {
			case ChannelMagnetX:
				magX = floatPtr(y)
			case ChannelMagnetY:
				magY = floatPtr(y)
			case ChannelMagnetZ:
				magZ = floatPtr(y)
			}
		}
		if magX != nil && magY != nil && magZ != nil {
			total := *magX**magX + *magY**magY + *magZ**magZ
			chart[MagnetTotalKey] = append(chart[MagnetTotalKey], DataPoint{X: t, Y: total})
		}

		if p, ok := pathPoint(row, tb, t); ok {
			path = append(path, p)
		}
	}
	return chart, path
}

// pathPoint builds a flight path sample using the raw (absolute) altitude.
func pathPoint(row Row, tb TimeBase, t float64) (FlightPathPoint, bool) {
	lat := Value(row, ChannelLatitude)
	lng := Value(row, ChannelLongitude)
	alt := Value(row, ChannelAltitude)
	if lat == nil || lng == nil || alt == nil || *lat == 0 || *lng == 0 {
		return FlightPathPoint{}, false
	}
	p := FlightPathPoint{
		Lat:  rescaleFixedPoint(*lat, 90),
		Lng:  rescaleFixedPoint(*lng, 180),
		Alt:  *alt,
		Time: t * 1000,
	}
	if tb.Absolute {
		p.Time = tb.StartMs() + t*1000
	}
	return p, true
}

func rescaleFixedPoint(v, limit float64) float64 {
	if math.Abs(v) > limit {
		return v / gpsFixedPointScale
	}
	return v
}
