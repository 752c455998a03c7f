package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/flightlog-analyzer/llmexport"
)

func main() {
	var (
		outDir     = flag.String("out-dir", "", "Output directory for manifest.json and rows.jsonl")
		overwrite  = flag.Bool("overwrite", true, "Allow writing to non-empty output directories")
		copySource = flag.Bool("copy-source", true, "Copy the input CSV log into export directory as source.csv")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-csv-log>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	inputPath := flag.Arg(0)
	if strings.TrimSpace(*outDir) == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		*outDir = filepath.Join(".", "exports", base+"_"+llmexport.ExportFormatVersion)
	}

	result, err := llmexport.ExportFile(inputPath, *outDir, llmexport.ExportOptions{
		Overwrite:      *overwrite,
		CopySourceFile: *copySource,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Export complete\n")
	fmt.Printf("Output dir: %s\n", result.OutputDir)
	fmt.Printf("Manifest:   %s\n", result.ManifestPath)
	fmt.Printf("Rows:       %s\n", result.RowsPath)
	fmt.Printf("Summary:    %s\n", result.SummaryPath)
	fmt.Printf("Notes:      %s\n", result.NotesPath)
	if result.SourceCopyPath != "" {
		fmt.Printf("Source csv: %s\n", result.SourceCopyPath)
	}
	fmt.Printf("Rows:       %d (%d columns)\n", result.RowCount, result.ColumnCount)
	fmt.Printf("SHA-256:    %s\n", result.SourceSHA256)
	for _, w := range result.Warnings {
		fmt.Printf("Warning:    %s\n", w)
	}
}
