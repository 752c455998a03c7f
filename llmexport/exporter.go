package llmexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportFile parses a blackbox CSV and writes an LLM-friendly export bundle.
// Output files:
//   - manifest.json
//   - rows.jsonl
//   - flight_summary.json
//   - flight_notes.md
//   - source.csv (optional)
func ExportFile(inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read csv file: %w", err)
	}
	bundle, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse csv file: %w", err)
	}

	if err := ensureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}

	manifest := BuildManifest(bundle, inputPath, filepath.Base(inputPath), time.Now())
	files, err := BundleFiles(bundle, manifest)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{RowsFile, SummaryFile, NotesFile, ManifestFile} {
		if err := os.WriteFile(filepath.Join(outputDir, name), files[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	sourceCopyPath := ""
	if opts.CopySourceFile {
		sourceCopyPath = filepath.Join(outputDir, SourceFile)
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source csv file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:       outputDir,
		ManifestPath:    filepath.Join(outputDir, ManifestFile),
		RowsPath:        filepath.Join(outputDir, RowsFile),
		SummaryPath:     filepath.Join(outputDir, SummaryFile),
		NotesPath:       filepath.Join(outputDir, NotesFile),
		SourceCopyPath:  sourceCopyPath,
		RowCount:        len(bundle.Records),
		ColumnCount:     len(bundle.Columns),
		SourceSHA256:    bundle.SourceSHA256,
		SourceSizeBytes: bundle.SourceSizeBytes,
		Warnings:        manifest.Warnings,
		Bundle:          bundle,
	}, nil
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
