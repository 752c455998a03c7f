//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/lucasjlepore/flightlog-analyzer/pipeline"
)

func main() {
	js.Global().Set("analyzeFlightLog", js.FuncOf(analyzeFlightLog))
	select {}
}

func analyzeFlightLog(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return map[string]any{
			"ok":    false,
			"error": "expected arguments: fileBytes(Uint8Array), options(object)",
		}
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return map[string]any{
			"ok":    false,
			"error": "csv file bytes are required",
		}
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return map[string]any{
			"ok":    false,
			"error": "failed to read CSV bytes from JS input",
		}
	}

	// parquet is unavailable in js builds
	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.csv"),
		CSVData:        fileBytes,
		Format:         getString(optsArg, "format", "csv"),
		CopySource:     getBool(optsArg, "copy_source", true),
	}
	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	zipBytes, err := pipeline.ZipFiles(result.Files)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("create zip: %v", err),
		}
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	return map[string]any{
		"ok":       true,
		"run_id":   result.RunID,
		"zip":      payload,
		"notes":    result.Analysis.Notes,
		"events":   len(result.Analysis.Summary.Events),
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(pipeline.SortedNames(result.Files)),
	}
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getBool(v js.Value, key string, fallback bool) bool {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.Type() != js.TypeBoolean {
		return fallback
	}
	return out.Bool()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
