package pipeline

import (
	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
	"github.com/lucasjlepore/flightlog-analyzer/internal/metrics"
)

// Artefact file names written next to the llmexport bundle.
const (
	seriesBaseName   = "chart_series"
	FlightPathJSON   = "flight_path.json"
	FlightPathFIT    = "flight_path.fit"
	FlightInfoJSON   = "flight_info.json"
	FlightReportXLSX = "flight_report.xlsx"
)

// Options configures the flightlog_analyze pipeline.
type Options struct {
	CSVPath    string
	OutDir     string
	Format     string // parquet|csv
	Overwrite  bool
	CopySource bool

	// Logger and Metrics are optional; nil disables them.
	Logger  *logging.StructuredLogger
	Metrics *metrics.Collector
}

// Result returns generated output paths.
type Result struct {
	RunID              string   `json:"run_id"`
	OutputDir          string   `json:"output_dir"`
	ManifestPath       string   `json:"manifest_path"`
	RowsPath           string   `json:"rows_path"`
	SummaryPath        string   `json:"summary_path"`
	NotesPath          string   `json:"notes_path"`
	SourceCopyPath     string   `json:"source_copy_path,omitempty"`
	ChartSeriesPath    string   `json:"chart_series_path"`
	FlightPathJSONPath string   `json:"flight_path_json_path"`
	FlightPathFITPath  string   `json:"flight_path_fit_path,omitempty"`
	FlightInfoPath     string   `json:"flight_info_path"`
	ReportPath         string   `json:"report_path"`
	RowCount           int      `json:"row_count"`
	EventCount         int      `json:"event_count"`
	Warnings           []string `json:"warnings,omitempty"`
}

// BytesOptions configures an in-memory run.
type BytesOptions struct {
	SourceFileName string
	CSVData        []byte
	Format         string // parquet|csv
	CopySource     bool

	Logger  *logging.StructuredLogger
	Metrics *metrics.Collector
}

// BytesResult holds every artefact keyed by file name.
type BytesResult struct {
	RunID    string
	Files    map[string][]byte
	RowCount int
	Warnings []string
	Analysis *flightlog.Analysis
}

// SeriesSample is one long-format chart sample.
type SeriesSample struct {
	Channel string  `json:"channel"`
	Unit    string  `json:"unit"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// FlightPathFile is the flight_path.json document.
type FlightPathFile struct {
	RunID          string                      `json:"run_id"`
	IsRelativeTime bool                        `json:"is_relative_time"`
	PointCount     int                         `json:"point_count"`
	Points         []flightlog.FlightPathPoint `json:"points"`
}

// FlightInfoFile is the flight_info.json document.
type FlightInfoFile struct {
	RunID       string               `json:"run_id"`
	Info        flightlog.FlightInfo `json:"info"`
	RowCount    int                  `json:"row_count"`
	ColumnCount int                  `json:"column_count"`
	Channels    []ChannelCoverage    `json:"channels"`
}

// ChannelCoverage reports which column fed a chart channel and how many samples it produced.
type ChannelCoverage struct {
	Channel string `json:"channel"`
	Label   string `json:"label"`
	Unit    string `json:"unit,omitempty"`
	Header  string `json:"header,omitempty"`
	Samples int    `json:"samples"`
}
