package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
	"github.com/lucasjlepore/flightlog-analyzer/llmexport"
)

// Run executes the full flightlog_analyze pipeline and writes all artefacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.CSVPath) == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	ctx := logging.WithRunID(context.Background(), runID)
	log := loggerOrDiscard(opts.Logger)
	log.Info(ctx, "analysis started", logging.Fields{"csv": opts.CSVPath, "out": opts.OutDir, "format": format})

	res, analysis, err := run(ctx, runID, opts, format)
	if err != nil {
		log.Error(ctx, "analysis failed", logging.Fields{"csv": opts.CSVPath}, err)
		opts.Metrics.RecordAnalysis("error", 0, nil, time.Since(started))
		return nil, err
	}

	opts.Metrics.RecordAnalysis("ok", res.RowCount, eventCounts(analysis.Summary), time.Since(started))
	log.Info(ctx, "analysis complete", logging.Fields{
		"rows":        res.RowCount,
		"events":      res.EventCount,
		"duration_s":  analysis.Summary.DurationSeconds,
		"elapsed_ms":  time.Since(started).Milliseconds(),
		"warnings":    len(res.Warnings),
		"path_points": len(analysis.Path),
	})
	return res, nil
}

func run(ctx context.Context, runID string, opts Options, format string) (*Result, *flightlog.Analysis, error) {
	baseExport, err := llmexport.ExportFile(opts.CSVPath, opts.OutDir, llmexport.ExportOptions{
		Overwrite:      opts.Overwrite,
		CopySourceFile: opts.CopySource,
	})
	if err != nil {
		return nil, nil, err
	}

	bundle := baseExport.Bundle
	analysis := bundle.Analysis
	loggerOrDiscard(opts.Logger).Debug(ctx, "bundle exported", logging.Fields{"rows": len(bundle.Rows), "columns": len(bundle.Columns)})

	samples := buildSeriesSamples(analysis.Series)
	seriesPath := filepath.Join(opts.OutDir, seriesBaseName+"."+format)
	switch format {
	case "csv":
		if err := writeSeriesCSV(seriesPath, samples); err != nil {
			return nil, nil, fmt.Errorf("write chart series csv: %w", err)
		}
	case "parquet":
		if err := writeSeriesParquet(seriesPath, samples); err != nil {
			return nil, nil, fmt.Errorf("write chart series parquet: %w", err)
		}
	}

	pathJSON := filepath.Join(opts.OutDir, FlightPathJSON)
	if err := writeJSON(pathJSON, buildFlightPathFile(runID, analysis)); err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", FlightPathJSON, err)
	}

	pathFIT := ""
	if len(analysis.Path) > 0 {
		pathFIT = filepath.Join(opts.OutDir, FlightPathFIT)
		if err := writeFlightPathFIT(pathFIT, analysis.Path, analysis.Info.IsRelativeTime); err != nil {
			return nil, nil, fmt.Errorf("write %s: %w", FlightPathFIT, err)
		}
	}

	infoPath := filepath.Join(opts.OutDir, FlightInfoJSON)
	if err := writeJSON(infoPath, buildFlightInfoFile(runID, bundle.Rows, bundle.Columns, analysis)); err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", FlightInfoJSON, err)
	}

	reportPath := filepath.Join(opts.OutDir, FlightReportXLSX)
	if err := writeReport(reportPath, runID, analysis); err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", FlightReportXLSX, err)
	}

	return &Result{
		RunID:              runID,
		OutputDir:          opts.OutDir,
		ManifestPath:       baseExport.ManifestPath,
		RowsPath:           baseExport.RowsPath,
		SummaryPath:        baseExport.SummaryPath,
		NotesPath:          baseExport.NotesPath,
		SourceCopyPath:     baseExport.SourceCopyPath,
		ChartSeriesPath:    seriesPath,
		FlightPathJSONPath: pathJSON,
		FlightPathFITPath:  pathFIT,
		FlightInfoPath:     infoPath,
		ReportPath:         reportPath,
		RowCount:           len(bundle.Rows),
		EventCount:         len(analysis.Summary.Events),
		Warnings:           baseExport.Warnings,
	}, analysis, nil
}

// RunBytes executes the pipeline in memory and returns every artefact keyed
// by file name. No files are written.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.CSVData) == 0 {
		return nil, fmt.Errorf("csv data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.SourceFileName)
	if name == "" {
		name = "input.csv"
	}

	started := time.Now()
	runID := uuid.NewString()
	ctx := logging.WithRunID(context.Background(), runID)
	log := loggerOrDiscard(opts.Logger)

	out, err := runBytes(runID, name, format, opts)
	if err != nil {
		log.Error(ctx, "analysis failed", logging.Fields{"source": name}, err)
		opts.Metrics.RecordAnalysis("error", 0, nil, time.Since(started))
		return nil, err
	}
	opts.Metrics.RecordAnalysis("ok", out.RowCount, eventCounts(out.Analysis.Summary), time.Since(started))
	log.Info(ctx, "analysis complete", logging.Fields{
		"source":     name,
		"files":      len(out.Files),
		"events":     len(out.Analysis.Summary.Events),
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	return out, nil
}

func runBytes(runID, name, format string, opts BytesOptions) (*BytesResult, error) {
	bundle, err := llmexport.ParseBytes(opts.CSVData)
	if err != nil {
		return nil, err
	}
	manifest := llmexport.BuildManifest(bundle, name, filepath.Base(name), time.Now())
	files, err := llmexport.BundleFiles(bundle, manifest)
	if err != nil {
		return nil, err
	}
	analysis := bundle.Analysis

	samples := buildSeriesSamples(analysis.Series)
	var series []byte
	switch format {
	case "csv":
		series, err = marshalSeriesCSV(samples)
	case "parquet":
		series, err = marshalSeriesParquet(samples)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal chart series %s: %w", format, err)
	}
	files[seriesBaseName+"."+format] = series

	if files[FlightPathJSON], err = llmexport.MarshalJSON(buildFlightPathFile(runID, analysis)); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", FlightPathJSON, err)
	}
	if len(analysis.Path) > 0 {
		if files[FlightPathFIT], err = marshalFlightPathFIT(analysis.Path, analysis.Info.IsRelativeTime); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", FlightPathFIT, err)
		}
	}
	info := buildFlightInfoFile(runID, bundle.Rows, bundle.Columns, analysis)
	if files[FlightInfoJSON], err = llmexport.MarshalJSON(info); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", FlightInfoJSON, err)
	}
	if files[FlightReportXLSX], err = marshalReport(runID, analysis); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", FlightReportXLSX, err)
	}
	if opts.CopySource {
		files[llmexport.SourceFile] = append([]byte(nil), opts.CSVData...)
	}

	return &BytesResult{
		RunID:    runID,
		Files:    files,
		RowCount: len(bundle.Rows),
		Warnings: manifest.Warnings,
		Analysis: analysis,
	}, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func loggerOrDiscard(l *logging.StructuredLogger) *logging.StructuredLogger {
	if l == nil {
		return logging.Discard()
	}
	return l
}

func eventCounts(s *flightlog.FlightSummary) map[string]int {
	counts := flightlog.CountEvents(s)
	out := make(map[string]int, len(counts))
	for typ, n := range counts {
		out[string(typ)] = n
	}
	return out
}

// buildSeriesSamples flattens chart series into long format, in channel
// table order with magnet_total last.
func buildSeriesSamples(series flightlog.LogData) []SeriesSample {
	out := make([]SeriesSample, 0, 4096)
	appendChannel := func(name, unit string) {
		for _, p := range series[name] {
			out = append(out, SeriesSample{Channel: name, Unit: unit, X: p.X, Y: p.Y})
		}
	}
	for _, ch := range flightlog.ChartChannels() {
		appendChannel(ch.Name, ch.Unit)
	}
	appendChannel(flightlog.MagnetTotalKey, "")
	return out
}

func buildFlightPathFile(runID string, a *flightlog.Analysis) FlightPathFile {
	return FlightPathFile{
		RunID:          runID,
		IsRelativeTime: a.Info.IsRelativeTime,
		PointCount:     len(a.Path),
		Points:         a.Path,
	}
}

func buildFlightInfoFile(runID string, rows []flightlog.Row, columns []string, a *flightlog.Analysis) FlightInfoFile {
	resolved, _ := llmexport.ResolveHeaders(rows, columns)
	chart := flightlog.ChartChannels()
	coverage := make([]ChannelCoverage, 0, len(chart))
	for _, ch := range chart {
		header, ok := resolved[ch.Name]
		if !ok {
			continue
		}
		coverage = append(coverage, ChannelCoverage{
			Channel: ch.Name,
			Label:   ch.Label,
			Unit:    ch.Unit,
			Header:  header,
			Samples: len(a.Series[ch.Name]),
		})
	}
	return FlightInfoFile{
		RunID:       runID,
		Info:        a.Info,
		RowCount:    len(rows),
		ColumnCount: len(columns),
		Channels:    coverage,
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var seriesHeader = []string{"channel", "unit", "x", "y"}

func writeSeriesCSV(path string, samples []SeriesSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := encodeSeriesCSV(bw, samples); err != nil {
		return err
	}
	return bw.Flush()
}

func marshalSeriesCSV(samples []SeriesSample) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeSeriesCSV(&buf, samples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeSeriesCSV(out io.Writer, samples []SeriesSample) error {
	w := csv.NewWriter(out)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{s.Channel, s.Unit, formatFloat(s.X), formatFloat(s.Y)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
