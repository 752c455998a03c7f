package flightlog

import "fmt"

// Analysis bundles everything derived from one flight log.
type Analysis struct {
	Info    FlightInfo        `json:"info"`
	Summary *FlightSummary    `json:"summary"`
	Series  LogData           `json:"series"`
	Path    []FlightPathPoint `json:"flight_path"`
	Notes   string            `json:"notes"`
}

// Analyze runs metadata, series and summary extraction over decoded rows.
// The extractors share no state, so each one sees the rows unchanged.
func Analyze(rows []Row) (*Analysis, error) {
	summary, err := GenerateFlightSummary(rows)
	if err != nil {
		return nil, fmt.Errorf("generate flight summary: %w", err)
	}
	info := ProcessMetadata(rows)
	series, path := ProcessRawData(rows)
	if path == nil {
		path = []FlightPathPoint{}
	}
	return &Analysis{
		Info:    info,
		Summary: summary,
		Series:  series,
		Path:    path,
		Notes:   BuildFlightNotes(info, summary),
	}, nil
}

// CountEvents tallies summary events by type.
func CountEvents(s *FlightSummary) map[EventType]int {
	out := make(map[EventType]int)
	if s == nil {
		return out
	}
	for _, e := range s.Events {
		out[e.Type]++
	}
	return out
}
