// Package csvlog decodes blackbox CSV exports into flightlog rows.
package csvlog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
)

// ErrNoHeader is returned when the input holds no header row.
var ErrNoHeader = errors.New("csv has no header row")

// utf8BOM is stripped from the first header cell; Excel exports carry it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses a CSV stream whose first record is the header. Decimal cells
// become float64, anything else (including 0x hex) stays a string for the
// resolver, and empty cells are left out of the row. Ragged records are
// accepted: missing trailing cells are absent, surplus cells are dropped.
func Read(r io.Reader) ([]flightlog.Row, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := make([]string, len(first))
	for i, h := range first {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) > 0 {
		headers[0] = string(bytes.TrimPrefix([]byte(headers[0]), utf8BOM))
	}

	rows := make([]flightlog.Row, 0, 1024)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if isEmptyRecord(record) {
			continue
		}
		row := make(flightlog.Row, len(headers))
		for i, cell := range record {
			if i >= len(headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" || headers[i] == "" {
				continue
			}
			row[headers[i]] = typedCell(cell)
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}

// ReadFile opens and parses a CSV log from disk.
func ReadFile(path string) ([]flightlog.Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func typedCell(cell string) any {
	if isHex(cell) {
		return cell
	}
	// NaN and Inf stay strings so rows remain JSON encodable.
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return cell
}

func isHex(cell string) bool {
	s := strings.TrimLeft(cell, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isEmptyRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
