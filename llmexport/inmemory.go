package llmexport

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/csvlog"
)

// ParsedBundle is the in-memory representation of a decoded flight log.
type ParsedBundle struct {
	Columns         []string
	Rows            []flightlog.Row
	Records         []RowEnvelope
	Analysis        *flightlog.Analysis
	TimeBase        *TimeBaseInfo
	ResolvedHeaders map[string]string
	UnmappedColumns []string
	SourceSHA256    string
	SourceSizeBytes int64
}

// ParseBytes decodes raw CSV bytes and runs the flight analysis over them.
func ParseBytes(data []byte) (*ParsedBundle, error) {
	rows, columns, err := csvlog.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv bytes: %w", err)
	}
	analysis, err := flightlog.Analyze(rows)
	if err != nil {
		return nil, fmt.Errorf("analyze flight log: %w", err)
	}
	sum := sha256.Sum256(data)

	bundle := &ParsedBundle{
		Columns:         columns,
		Rows:            rows,
		Analysis:        analysis,
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(data)),
	}
	bundle.ResolvedHeaders, bundle.UnmappedColumns = ResolveHeaders(rows, columns)

	tb, hasTime := flightlog.DetectTimeBase(rows)
	if hasTime {
		bundle.TimeBase = &TimeBaseInfo{
			Key:       tb.Key,
			Absolute:  tb.Absolute,
			StartRaw:  tb.Start,
			EndRaw:    tb.End,
			DurationS: tb.Duration(),
		}
	}

	bundle.Records = make([]RowEnvelope, len(rows))
	for i, row := range rows {
		env := RowEnvelope{FormatVersion: ExportFormatVersion, RowIndex: i, Values: row}
		if hasTime {
			if raw, ok := tb.Raw(row); ok {
				s := tb.Seconds(raw)
				env.TimeSeconds = &s
			}
		}
		bundle.Records[i] = env
	}
	return bundle, nil
}

// ResolveHeaders maps each canonical channel to the first column that
// satisfied it anywhere in the log, and lists columns no channel claimed.
func ResolveHeaders(rows []flightlog.Row, columns []string) (map[string]string, []string) {
	resolved := make(map[string]string)
	claimed := make(map[string]struct{})
	for _, ch := range flightlog.Channels() {
		for _, row := range rows {
			if header, ok := flightlog.ResolvedHeader(row, ch.Name); ok {
				resolved[ch.Name] = header
				claimed[header] = struct{}{}
				break
			}
		}
	}
	for _, key := range flightlog.TimeKeys {
		claimed[key] = struct{}{}
	}

	unmapped := make([]string, 0)
	for _, c := range dedupeStrings(columns) {
		if c == "" {
			continue
		}
		if _, ok := claimed[c]; !ok {
			unmapped = append(unmapped, c)
		}
	}
	sort.Strings(unmapped)
	return resolved, unmapped
}

// BuildManifest assembles the manifest for a parsed bundle.
func BuildManifest(bundle *ParsedBundle, sourcePath, sourceName string, generatedAt time.Time) Manifest {
	m := Manifest{
		FormatVersion:   ExportFormatVersion,
		GeneratedAt:     generatedAt.UTC(),
		SourceFile:      sourcePath,
		SourceFileName:  sourceName,
		SourceSHA256:    bundle.SourceSHA256,
		SourceSizeBytes: bundle.SourceSizeBytes,
		Columns:         bundle.Columns,
		ResolvedHeaders: bundle.ResolvedHeaders,
		UnmappedColumns: bundle.UnmappedColumns,
		TimeBase:        bundle.TimeBase,
		RowsPath:        RowsFile,
		RowCount:        len(bundle.Records),
		SummaryPath:     SummaryFile,
		NotesPath:       NotesFile,
		Warnings:        BuildWarningsFromBundle(bundle),
		SchemaDescription: SchemaDetails{
			RecordType: "JSONL line-per-CSV-row in source order",
			Notes: []string{
				"Values keep the CSV column names; decimal cells are numbers, other cells are strings.",
				"Empty cells are omitted from values.",
				"time_s is seconds since the first valid time sample and is absent for rows without usable time.",
				"resolved_headers maps canonical channel names to the CSV column that supplied them.",
			},
		},
	}
	if bundle.Analysis != nil {
		m.Info = bundle.Analysis.Info
	}
	return m
}

// MarshalJSON renders indented JSON with deterministic key order.
func MarshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out = append(out, '\n')
	return out, nil
}

// MarshalJSONL renders row envelopes as JSONL bytes.
func MarshalJSONL(records []RowEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriterSize(&buf, 1<<20)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildWarningsFromBundle returns deterministic data-quality notes.
func BuildWarningsFromBundle(bundle *ParsedBundle) []string {
	if bundle == nil {
		return nil
	}
	warnings := make([]string, 0, 4)
	if bundle.TimeBase == nil {
		warnings = append(warnings, "no time column found; series and events are empty")
	} else if bundle.TimeBase.DurationS <= 0 {
		warnings = append(warnings, "time column has no usable span")
	}
	if _, ok := bundle.ResolvedHeaders[flightlog.ChannelESC1Voltage]; !ok {
		warnings = append(warnings, "no battery voltage column; battery profile not detected")
	}
	if _, ok := bundle.ResolvedHeaders[flightlog.ChannelLatitude]; !ok {
		warnings = append(warnings, "no GPS position columns; flight path is empty")
	}
	if n := len(bundle.UnmappedColumns); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d columns not mapped to a known channel", n))
	}
	return dedupeStrings(warnings)
}

// BundleFiles renders the bundle artefacts keyed by file name.
func BundleFiles(bundle *ParsedBundle, manifest Manifest) (map[string][]byte, error) {
	files := make(map[string][]byte, 4)

	manifestBytes, err := MarshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	files[ManifestFile] = manifestBytes

	rowsBytes, err := MarshalJSONL(bundle.Records)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	files[RowsFile] = rowsBytes

	summaryBytes, err := MarshalJSON(SummaryDocument{Info: bundle.Analysis.Info, Summary: bundle.Analysis.Summary})
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	files[SummaryFile] = summaryBytes
	files[NotesFile] = []byte(bundle.Analysis.Notes + "\n")
	return files, nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
