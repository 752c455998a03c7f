package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/csvlog"
)

func main() {
	var (
		jsonOut    = flag.Bool("json", false, "Emit full analysis as JSON")
		showCounts = flag.Bool("counts", false, "Include per-type event counts in text output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-csv-log>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	rows, _, err := csvlog.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		os.Exit(1)
	}
	analysis, err := flightlog.Analyze(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(analysis.Notes)
	if *showCounts {
		counts := flightlog.CountEvents(analysis.Summary)
		types := make([]string, 0, len(counts))
		for typ := range counts {
			types = append(types, string(typ))
		}
		sort.Strings(types)
		fmt.Println()
		fmt.Println("Event Counts")
		for _, typ := range types {
			fmt.Printf("- %-17s %d\n", typ, counts[flightlog.EventType(typ)])
		}
	}
}
