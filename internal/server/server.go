package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/pipeline-forecast/internal/config"
	"github.com/iwvelando/pipeline-forecast/internal/forecast"
	"github.com/iwvelando/pipeline-forecast/internal/pipeline"
	"github.com/iwvelando/pipeline-forecast/internal/risk"
	"github.com/iwvelando/pipeline-forecast/pkg/clusters"
	"github.com/iwvelando/pipeline-forecast/pkg/constants"
	"github.com/iwvelando/pipeline-forecast/pkg/finance"
	"github.com/iwvelando/pipeline-forecast/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	workbookField = "workbook"
	scenarioField = "scenario"
	policyField   = "policy"
	compareField  = "compare"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	baseScenario  []byte
}

// NewHandler constructs the HTTP handler that serves the forecast API.
// baseScenario is the YAML scenario used when a request does not carry one;
// when it is empty the built-in defaults apply.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, baseScenario []byte) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		baseScenario:  append([]byte(nil), baseScenario...),
	}

	mux := http.NewServeMux()

	// Forecast API endpoint (workbook upload plus optional scenario)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Probability presets for clients building a scenario
	mux.HandleFunc("/api/presets", h.handlePresets)

	// Example workbook in the expected layout
	mux.HandleFunc("/api/template", h.handleTemplate)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type forecastResponse struct {
	RunID         string                 `json:"runId"`
	Scenario      string                 `json:"scenario"`
	Policy        forecast.Policy        `json:"policy"`
	Rows          []forecast.Row         `json:"rows"`
	Summary       risk.Summary           `json:"summary"`
	CostChanges   []string               `json:"costChanges,omitempty"`
	Opportunities []opportunityStatus    `json:"opportunities"`
	Comparison    []presetComparison     `json:"comparison,omitempty"`
	CSV           string                 `json:"csv"`
	Warnings      []string               `json:"warnings,omitempty"`
	Duration      string                 `json:"duration"`
	Config        map[string]interface{} `json:"config,omitempty"`
}

type opportunityStatus struct {
	Name    string  `json:"name"`
	Cluster string  `json:"cluster"`
	Weight  float64 `json:"weight"`
	Active  bool    `json:"active"`
}

type presetComparison struct {
	Name    string       `json:"name"`
	Summary risk.Summary `json:"summary"`
}

type presetResponse struct {
	Name    string          `json:"name"`
	Weights []clusterWeight `json:"weights"`
}

type clusterWeight struct {
	Cluster string  `json:"cluster"`
	Weight  float64 `json:"weight"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecast"
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, header, err := r.FormFile(workbookField)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing pipeline workbook", op)
		return
	}
	defer h.closeUpload(file, op)

	if err := pipeline.CheckExtension(header.Filename); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	opportunities, err := pipeline.NewParser(h.logger).ParseWorkbook(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	scenarioBytes, err := h.readScenario(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(scenarioBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if policy := strings.TrimSpace(r.FormValue(policyField)); policy != "" {
		cfg.Policy = strings.ToLower(policy)
	}

	warnings := cfg.ValidateConfiguration()
	in, err := forecast.BuildInputs(*cfg, opportunities)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := forecast.GetForecast(h.logger, *cfg, opportunities)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}
	report := output.NewReport(result, cfg.Threshold)

	var comparison []presetComparison
	if coerceBool(r.FormValue(compareField)) {
		presets, err := forecast.RunPresets(h.logger, in, clusters.PresetNames())
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compare presets: %v", err), op)
			return
		}
		for _, p := range presets {
			comparison = append(comparison, presetComparison{
				Name:    p.Name,
				Summary: risk.Summarize(p.Ledger, cfg.Threshold),
			})
		}
	}

	configMap, err := decodeYAMLToMap(scenarioBytes)
	if err != nil {
		h.logger.Warn("failed to decode scenario map",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		RunID:         result.RunID,
		Scenario:      result.Name,
		Policy:        result.Ledger.Policy,
		Rows:          result.Ledger.Rows,
		Summary:       report.Summary,
		CostChanges:   report.CostChanges,
		Opportunities: buildOpportunities(opportunities, in),
		Comparison:    comparison,
		CSV:           output.CsvString(report),
		Warnings:      warnings,
		Duration:      elapsed.String(),
		Config:        configMap,
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("runId", response.RunID),
		zap.Int("opportunities", len(opportunities)),
		zap.Bool("atRisk", response.Summary.AtRisk),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// readScenario returns the request's scenario YAML, taken from an uploaded
// file or a plain form field, falling back to the base scenario.
func (h *handler) readScenario(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile(scenarioField)
	if err == nil {
		defer h.closeUpload(file, "server.readScenario")
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			return nil, fmt.Errorf("failed to read scenario: %w", err)
		}
		return buf.Bytes(), nil
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	if text := r.FormValue(scenarioField); strings.TrimSpace(text) != "" {
		return []byte(text), nil
	}
	return h.baseScenario, nil
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	presets := make([]presetResponse, 0, len(clusters.PresetNames()))
	for _, name := range clusters.PresetNames() {
		table, err := clusters.Preset(name)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handlePresets")
			return
		}
		preset := presetResponse{Name: name}
		for _, cluster := range table.Names() {
			preset.Weights = append(preset.Weights, clusterWeight{Cluster: cluster, Weight: table.Weight(cluster)})
		}
		presets = append(presets, preset)
	}

	h.writeJSON(w, http.StatusOK, presets)
}

func (h *handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	var buf bytes.Buffer
	if err := pipeline.WriteTemplate(&buf, pipeline.ExampleOpportunities()); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to build template: %v", err), "server.handleTemplate")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.DefaultTemplateFile))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write template", zap.String("op", "server.handleTemplate"), zap.Error(err))
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func buildOpportunities(opportunities []pipeline.Opportunity, in forecast.Inputs) []opportunityStatus {
	statuses := make([]opportunityStatus, 0, len(opportunities))
	for _, opp := range opportunities {
		statuses = append(statuses, opportunityStatus{
			Name:    opp.Name,
			Cluster: opp.Cluster,
			Weight:  in.Probabilities.Weight(opp.Cluster),
			Active:  finance.IsActive(in.Active, opp.Name),
		})
	}
	return statuses
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *handler) closeUpload(file multipart.File, op string) {
	if err := file.Close(); err != nil {
		h.logger.Warn("failed to close uploaded file",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": http.StatusText(http.StatusMethodNotAllowed),
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	if parsed, err := strconv.ParseBool(trimmed); err == nil {
		return parsed
	}
	return strings.EqualFold(trimmed, "yes") || strings.EqualFold(trimmed, "on")
}
