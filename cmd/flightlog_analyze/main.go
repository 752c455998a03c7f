package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
	"github.com/lucasjlepore/flightlog-analyzer/pipeline"
)

func main() {
	var (
		csvPath    = flag.String("csv", "", "Path to input blackbox .csv log")
		outDir     = flag.String("out", "", "Output directory")
		format     = flag.String("format", "parquet", "Chart series format: parquet|csv")
		overwrite  = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
		copySource = flag.Bool("copy-source", true, "Copy the input log into the output directory as source.csv")
		logLevel   = flag.String("log-level", "warn", "Log level: debug|info|warn|error")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --csv flight.csv --out outdir [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*csvPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger("flightlog_analyze", "1.0.0", logging.ParseLevel(*logLevel))
	logger.SetOutput(os.Stderr)

	result, err := pipeline.Run(pipeline.Options{
		CSVPath:    *csvPath,
		OutDir:     *outDir,
		Format:     *format,
		Overwrite:  *overwrite,
		CopySource: *copySource,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightlog_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("flightlog_analyze complete\n")
	fmt.Printf("Run ID:              %s\n", result.RunID)
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("rows.jsonl:          %s\n", result.RowsPath)
	fmt.Printf("manifest.json:       %s\n", result.ManifestPath)
	fmt.Printf("flight summary:      %s\n", result.SummaryPath)
	fmt.Printf("flight notes:        %s\n", result.NotesPath)
	fmt.Printf("chart series:        %s\n", result.ChartSeriesPath)
	fmt.Printf("flight path:         %s\n", result.FlightPathJSONPath)
	if result.FlightPathFITPath != "" {
		fmt.Printf("flight path (fit):   %s\n", result.FlightPathFITPath)
	}
	fmt.Printf("flight info:         %s\n", result.FlightInfoPath)
	fmt.Printf("report:              %s\n", result.ReportPath)
	if result.SourceCopyPath != "" {
		fmt.Printf("source copy:         %s\n", result.SourceCopyPath)
	}
	fmt.Printf("rows / events:       %d / %d\n", result.RowCount, result.EventCount)
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}
