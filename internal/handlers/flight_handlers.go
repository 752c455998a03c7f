// Package handlers exposes the flight log analysis over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	flightlog "github.com/lucasjlepore/flightlog-analyzer"
	"github.com/lucasjlepore/flightlog-analyzer/internal/config"
	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
	"github.com/lucasjlepore/flightlog-analyzer/internal/metrics"
	"github.com/lucasjlepore/flightlog-analyzer/llmexport"
	"github.com/lucasjlepore/flightlog-analyzer/pipeline"
)

// uploadField is the multipart form field carrying the CSV log.
const uploadField = "file"

// FlightHandler handles flight log API endpoints
type FlightHandler struct {
	cfg     *config.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *FlightHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &FlightHandler{cfg: cfg, logger: logger, metrics: metricsCollector}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalyzeResponse is the body of a successful analyze call.
type AnalyzeResponse struct {
	RunID      string                      `json:"run_id"`
	Info       flightlog.FlightInfo        `json:"info"`
	Summary    *flightlog.FlightSummary    `json:"summary"`
	FlightPath []flightlog.FlightPathPoint `json:"flight_path"`
	Notes      string                      `json:"notes"`
	Warnings   []string                    `json:"warnings,omitempty"`
}

// ChannelResponse describes one canonical channel.
type ChannelResponse struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Unit    string   `json:"unit,omitempty"`
	Aliases []string `json:"aliases"`
	Chart   bool     `json:"chart"`
}

// Analyze handles POST /api/v1/analyze
func (h *FlightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, err := h.readUpload(w, r)
	if err != nil {
		h.sendUploadError(w, err)
		return
	}

	started := time.Now()
	runID := uuid.NewString()
	ctx := logging.WithRunID(r.Context(), runID)

	bundle, err := llmexport.ParseBytes(data)
	if err != nil {
		h.metrics.RecordAnalysis("error", 0, nil, time.Since(started))
		h.logger.Warn(ctx, "[API_ANALYZE_REJECTED] unusable flight log", logging.Fields{"error": err.Error(), "bytes": len(data)})
		h.sendError(w, analyzeErrorMessage(err), http.StatusUnprocessableEntity)
		return
	}

	a := bundle.Analysis
	counts := make(map[string]int)
	for typ, n := range flightlog.CountEvents(a.Summary) {
		counts[string(typ)] = n
	}
	h.metrics.RecordAnalysis("ok", len(bundle.Rows), counts, time.Since(started))
	h.logger.Info(ctx, "[API_ANALYZE] flight log analyzed", logging.Fields{
		"rows":   len(bundle.Rows),
		"events": len(a.Summary.Events),
	})

	h.sendJSON(w, AnalyzeResponse{
		RunID:      runID,
		Info:       a.Info,
		Summary:    a.Summary,
		FlightPath: a.Path,
		Notes:      a.Notes,
		Warnings:   llmexport.BuildWarningsFromBundle(bundle),
	}, http.StatusOK)
}

// Export handles POST /api/v1/export and returns every artefact as a zip.
func (h *FlightHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.readUpload(w, r)
	if err != nil {
		h.sendUploadError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.cfg.SeriesFormat
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}
	copySource, _ := strconv.ParseBool(r.URL.Query().Get("copy_source"))

	res, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: name,
		CSVData:        data,
		Format:         format,
		CopySource:     copySource,
		Logger:         h.logger,
		Metrics:        h.metrics,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unsupported format") {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.sendError(w, analyzeErrorMessage(err), http.StatusUnprocessableEntity)
		return
	}

	archive, err := pipeline.ZipFiles(res.Files)
	if err != nil {
		h.logger.Error(r.Context(), "[API_EXPORT_ERROR] failed to build archive", logging.Fields{"run_id": res.RunID}, err)
		h.sendError(w, "failed to build archive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "flightlog_"+res.RunID+".zip"))
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// ListChannels handles GET /api/v1/channels
func (h *FlightHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	chart := make(map[string]bool)
	for _, ch := range flightlog.ChartChannels() {
		chart[ch.Name] = true
	}
	channels := flightlog.Channels()
	out := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ChannelResponse{
			Name:    ch.Name,
			Label:   ch.Label,
			Unit:    ch.Unit,
			Aliases: ch.Aliases,
			Chart:   chart[ch.Name],
		})
	}
	h.sendJSON(w, out, http.StatusOK)
}

// HealthCheck handles GET /healthz
func (h *FlightHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// readUpload accepts either a raw CSV body or a multipart form with a file field.
func (h *FlightHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile(uploadField)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		src = file
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptyUpload
	}
	return data, nil
}

var errEmptyUpload = errors.New("request body is empty")

func (h *FlightHandler) sendUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.sendError(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	h.sendError(w, err.Error(), http.StatusBadRequest)
}

func analyzeErrorMessage(err error) string {
	if errors.Is(err, flightlog.ErrNoData) {
		return "flight log has no data rows"
	}
	return err.Error()
}

// sendJSON sends a JSON response
func (h *FlightHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error(context.Background(), "[API_ENCODE_ERROR] failed to encode response", nil, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error","message":"failed to encode response","code":500}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// sendError sends an error response
func (h *FlightHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// RegisterRoutes registers all flight API routes and the request instrumentation.
func (h *FlightHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.instrument)
	router.HandleFunc("/api/v1/analyze", h.Analyze).Methods("POST")
	router.HandleFunc("/api/v1/export", h.Export).Methods("POST")
	router.HandleFunc("/api/v1/channels", h.ListChannels).Methods("GET")
	router.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}
