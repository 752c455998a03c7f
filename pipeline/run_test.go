package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tormoder/fit"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xuri/excelize/v2"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/llmexport"
)

const flightCSV = "time,esc1_voltage,esc1_current,armed,error,lat,lng,alt,custom_tag\n" +
	"0,16.8,5,0,0,25.0,121.5,100,a\n" +
	"1000,16.6,25,1,0,25.0005,121.5,100,b\n" +
	"2000,16.2,28,1,0,25.001,121.5,108,c\n" +
	"3000,15.9,12,1,0,25.0015,121.5,101,d\n" +
	"4000,15.8,3,0,0,25.0015,121.5,100,e\n"

func writeFlightCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight.csv")
	if err := os.WriteFile(path, []byte(flightCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestRunWritesCSVArtefacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{
		CSVPath:    writeFlightCSV(t),
		OutDir:     outDir,
		Format:     "csv",
		CopySource: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("expected run id")
	}
	if res.RowCount != 5 {
		t.Fatalf("expected 5 rows, got %d", res.RowCount)
	}

	for _, p := range []string{
		res.ManifestPath, res.RowsPath, res.SummaryPath, res.NotesPath, res.SourceCopyPath,
		res.ChartSeriesPath, res.FlightPathJSONPath, res.FlightPathFITPath, res.FlightInfoPath, res.ReportPath,
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected artefact %q: %v", p, err)
		}
	}
	if filepath.Base(res.ChartSeriesPath) != "chart_series.csv" {
		t.Fatalf("unexpected series path %q", res.ChartSeriesPath)
	}

	f, err := os.Open(res.ChartSeriesPath)
	if err != nil {
		t.Fatalf("open chart series: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read chart series csv: %v", err)
	}
	header := rows[0]
	for i, col := range []string{"channel", "unit", "x", "y"} {
		if header[i] != col {
			t.Fatalf("unexpected header column %d: got %q want %q", i, header[i], col)
		}
	}
	voltage := 0
	for _, row := range rows[1:] {
		if row[0] == flightlog.ChannelESC1Voltage {
			voltage++
		}
	}
	if voltage != 5 {
		t.Fatalf("expected 5 voltage samples, got %d", voltage)
	}

	var info FlightInfoFile
	data, err := os.ReadFile(res.FlightInfoPath)
	if err != nil {
		t.Fatalf("read flight info: %v", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("decode flight info: %v", err)
	}
	if info.RunID != res.RunID || info.RowCount != 5 || info.ColumnCount != 9 {
		t.Fatalf("unexpected flight info %+v", info)
	}
	if !info.Info.IsRelativeTime || info.Info.TotalDuration != "0 min 4 sec" {
		t.Fatalf("unexpected info block %+v", info.Info)
	}
	found := false
	for _, c := range info.Channels {
		if c.Channel == flightlog.ChannelESC1Voltage {
			found = c.Header == "esc1_voltage" && c.Samples == 5
		}
	}
	if !found {
		t.Fatalf("voltage coverage missing or wrong: %+v", info.Channels)
	}

	var summary llmexport.SummaryDocument
	data, err = os.ReadFile(res.SummaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Summary == nil || summary.Summary.DurationSeconds != 4 {
		t.Fatalf("unexpected summary %+v", summary.Summary)
	}
	if len(summary.Summary.Events) != res.EventCount {
		t.Fatalf("summary file has %d events, result reports %d", len(summary.Summary.Events), res.EventCount)
	}
}

func TestRunParquetSeriesReadsBack(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{CSVPath: writeFlightCSV(t), OutDir: outDir})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if filepath.Ext(res.ChartSeriesPath) != ".parquet" {
		t.Fatalf("default format should be parquet, got %q", res.ChartSeriesPath)
	}

	fr, err := local.NewLocalFileReader(res.ChartSeriesPath)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(seriesParquetRow), 4)
	if err != nil {
		t.Fatalf("parquet reader: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	want := len(buildSeriesSamples(mustAnalyze(t).Series))
	if n != want {
		t.Fatalf("parquet rows = %d, want %d", n, want)
	}
	rows := make([]seriesParquetRow, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("read parquet rows: %v", err)
	}
	if rows[0].Channel == "" {
		t.Fatalf("expected channel name in first row: %+v", rows[0])
	}
}

func TestRunRefusesBadFormat(t *testing.T) {
	_, err := Run(Options{CSVPath: writeFlightCSV(t), OutDir: t.TempDir(), Format: "xml"})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestFlightPathFITDecodes(t *testing.T) {
	a := mustAnalyze(t)
	data, err := marshalFlightPathFIT(a.Path, a.Info.IsRelativeTime)
	if err != nil {
		t.Fatalf("marshal fit: %v", err)
	}
	file, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode fit: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}
	if len(activity.Records) != len(a.Path) {
		t.Fatalf("records = %d, want %d", len(activity.Records), len(a.Path))
	}
	first := activity.Records[0]
	if lat := first.PositionLat.Degrees(); lat < 24.9999 || lat > 25.0001 {
		t.Fatalf("unexpected first latitude %f", lat)
	}
	if !first.Timestamp.Equal(relativeBase) {
		t.Fatalf("relative path should start at the relative base, got %s", first.Timestamp)
	}
	last := activity.Records[len(activity.Records)-1]
	if d := last.Timestamp.Sub(first.Timestamp); d != 4*time.Second {
		t.Fatalf("unexpected path span %s", d)
	}
}

func TestEncodeAltitude(t *testing.T) {
	tests := []struct {
		in   float64
		want uint16
	}{
		{-500, 0},
		{-900, 0},
		{0, 2500},
		{100.2, 3001},
		{20000, 65534},
	}
	for _, tc := range tests {
		if got := encodeAltitude(tc.in); got != tc.want {
			t.Fatalf("encodeAltitude(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRunBytesReturnsAllFiles(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		SourceFileName: "flight.csv",
		CSVData:        []byte(flightCSV),
		Format:         "csv",
		CopySource:     true,
	})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}
	for _, name := range []string{
		llmexport.ManifestFile, llmexport.RowsFile, llmexport.SummaryFile, llmexport.NotesFile, llmexport.SourceFile,
		"chart_series.csv", FlightPathJSON, FlightPathFIT, FlightInfoJSON, FlightReportXLSX,
	} {
		if len(res.Files[name]) == 0 {
			t.Fatalf("missing in-memory file %q", name)
		}
	}
	if res.RowCount != 5 {
		t.Fatalf("expected 5 rows, got %d", res.RowCount)
	}

	var path FlightPathFile
	if err := json.Unmarshal(res.Files[FlightPathJSON], &path); err != nil {
		t.Fatalf("decode flight path: %v", err)
	}
	if path.PointCount != 5 || len(path.Points) != 5 || path.RunID != res.RunID {
		t.Fatalf("unexpected flight path %+v", path)
	}

	xlsx, err := excelize.OpenReader(bytes.NewReader(res.Files[FlightReportXLSX]))
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer xlsx.Close()
	rows, err := xlsx.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	if len(rows) < 2 || rows[1][0] != "Run ID" || rows[1][1] != res.RunID {
		t.Fatalf("unexpected summary sheet %v", rows)
	}
	motors, err := xlsx.GetRows(SheetMotors)
	if err != nil {
		t.Fatalf("motor rows: %v", err)
	}
	if len(motors) != 5 || motors[1][0] != "1" {
		t.Fatalf("expected a header and four motor rows, got %v", motors)
	}
}

func TestRunBytesWithoutGPSSkipsFIT(t *testing.T) {
	res, err := RunBytes(BytesOptions{CSVData: []byte("time,esc1_voltage\n0,16.8\n1000,16.7\n"), Format: "csv"})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}
	if _, ok := res.Files[FlightPathFIT]; ok {
		t.Fatalf("did not expect a FIT file without GPS")
	}
	if _, ok := res.Files[llmexport.SourceFile]; ok {
		t.Fatalf("did not expect a source copy")
	}
}

func mustAnalyze(t *testing.T) *flightlog.Analysis {
	t.Helper()
	bundle, err := llmexport.ParseBytes([]byte(flightCSV))
	if err != nil {
		t.Fatalf("ParseBytes error: %v", err)
	}
	return bundle.Analysis
}
