package llmexport

import (
	"time"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
)

const (
	// ExportFormatVersion identifies the on-disk schema for LLM exports.
	ExportFormatVersion = "flightlog_llm_jsonl_v1"
)

// Bundle file names. Pipeline artefacts sit next to these in the same directory.
const (
	ManifestFile = "manifest.json"
	RowsFile     = "rows.jsonl"
	SummaryFile  = "flight_summary.json"
	NotesFile    = "flight_notes.md"
	SourceFile   = "source.csv"
)

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source CSV to the output directory.
	CopySourceFile bool
}

// ExportResult describes generated files.
type ExportResult struct {
	OutputDir       string   `json:"output_dir"`
	ManifestPath    string   `json:"manifest_path"`
	RowsPath        string   `json:"rows_path"`
	SummaryPath     string   `json:"summary_path"`
	NotesPath       string   `json:"notes_path"`
	SourceCopyPath  string   `json:"source_copy_path,omitempty"`
	RowCount        int      `json:"row_count"`
	ColumnCount     int      `json:"column_count"`
	SourceSHA256    string   `json:"source_sha256"`
	SourceSizeBytes int64    `json:"source_size_bytes"`
	Warnings        []string `json:"warnings,omitempty"`

	// Bundle is the parsed log the files were rendered from.
	Bundle *ParsedBundle `json:"-"`
}

// Manifest captures export metadata and pointers to exported files.
type Manifest struct {
	FormatVersion     string               `json:"format_version"`
	GeneratedAt       time.Time            `json:"generated_at"`
	SourceFile        string               `json:"source_file"`
	SourceFileName    string               `json:"source_file_name"`
	SourceSHA256      string               `json:"source_sha256"`
	SourceSizeBytes   int64                `json:"source_size_bytes"`
	Columns           []string             `json:"columns"`
	ResolvedHeaders   map[string]string    `json:"resolved_headers"`
	UnmappedColumns   []string             `json:"unmapped_columns,omitempty"`
	TimeBase          *TimeBaseInfo        `json:"time_base,omitempty"`
	Info              flightlog.FlightInfo `json:"info"`
	RowsPath          string               `json:"rows_path"`
	RowCount          int                  `json:"row_count"`
	SummaryPath       string               `json:"summary_path"`
	NotesPath         string               `json:"notes_path"`
	Warnings          []string             `json:"warnings,omitempty"`
	SchemaDescription SchemaDetails        `json:"schema_description"`
}

// TimeBaseInfo records how the log timeline was interpreted.
type TimeBaseInfo struct {
	Key       string  `json:"key"`
	Absolute  bool    `json:"absolute"`
	StartRaw  float64 `json:"start_raw"`
	EndRaw    float64 `json:"end_raw"`
	DurationS float64 `json:"duration_s"`
}

// SchemaDetails documents the record shape for downstream applications.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}

// RowEnvelope is one JSONL line in rows.jsonl.
// The stream keeps CSV row order.
type RowEnvelope struct {
	FormatVersion string        `json:"format_version"`
	RowIndex      int           `json:"row_index"`
	TimeSeconds   *float64      `json:"time_s,omitempty"`
	Values        flightlog.Row `json:"values"`
}

// SummaryDocument is the JSON document handed to the analysis consumer.
type SummaryDocument struct {
	Info    flightlog.FlightInfo     `json:"info"`
	Summary *flightlog.FlightSummary `json:"summary"`
}
