package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/internal/config"
	"github.com/lucasjlepore/flightlog-analyzer/internal/metrics"
	"github.com/lucasjlepore/flightlog-analyzer/llmexport"
	"github.com/lucasjlepore/flightlog-analyzer/pipeline"
)

const flightCSV = "time,esc1_voltage,esc1_current,armed,lat,lng,alt\n" +
	"0,16.8,5,0,25.0,121.5,100\n" +
	"1000,16.6,20,1,25.0005,121.5,104\n" +
	"2000,16.4,4,0,25.001,121.5,100\n"

func newTestRouter(t *testing.T, cfg *config.Config) (*mux.Router, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector("flightlog_test")
	router := mux.NewRouter()
	NewFlightHandler(cfg, nil, collector).RegisterRoutes(router)
	return router, collector
}

func TestAnalyzeRawBody(t *testing.T) {
	router, collector := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(flightCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" || resp.Summary == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Summary.DurationSeconds != 2 || len(resp.FlightPath) != 3 {
		t.Fatalf("unexpected analysis duration=%v path=%d", resp.Summary.DurationSeconds, len(resp.FlightPath))
	}
	if !strings.Contains(resp.Notes, "Flight Phases") {
		t.Fatalf("notes missing phases section: %q", resp.Notes)
	}

	if got := testutil.ToFloat64(collector.AnalysesTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok analyses=%v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.APIRequestsTotal.WithLabelValues("/api/v1/analyze", "POST", "200")); got != 1 {
		t.Fatalf("api requests=%v, want 1", got)
	}
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, "flight.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(flightCSV)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeErrors(t *testing.T) {
	small := config.Default()
	small.MaxUploadBytes = 16

	tests := []struct {
		name string
		cfg  *config.Config
		body string
		want int
	}{
		{name: "empty body", body: "", want: http.StatusBadRequest},
		{name: "header only", body: "time,lat\n", want: http.StatusUnprocessableEntity},
		{name: "too large", cfg: small, body: flightCSV, want: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tc.cfg)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", rec.Code, tc.want, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tc.want || resp.Message == "" {
				t.Fatalf("unexpected error response %+v", resp)
			}
		})
	}
}

func TestExportReturnsZip(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export?format=csv&name=flight.csv", strings.NewReader(flightCSV))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type %q", ct)
	}
	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{llmexport.ManifestFile, llmexport.SummaryFile, "chart_series.csv", pipeline.FlightReportXLSX} {
		if !names[want] {
			t.Fatalf("zip missing %q: %v", want, names)
		}
	}
	if names[llmexport.SourceFile] {
		t.Fatalf("source copy should be opt-in")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/export?format=xml", strings.NewReader(flightCSV))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestListChannels(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var channels []ChannelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &channels); err != nil {
		t.Fatalf("decode channels: %v", err)
	}
	if len(channels) != len(flightlog.Channels()) {
		t.Fatalf("got %d channels, want %d", len(channels), len(flightlog.Channels()))
	}
	for _, ch := range channels {
		if ch.Name == flightlog.ChannelLatitude && ch.Chart {
			t.Fatalf("latitude should not be a chart channel")
		}
	}
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
