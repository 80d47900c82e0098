package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"oxforecast/internal/config"
	"oxforecast/internal/fetchers"
	"oxforecast/internal/logger"
	"oxforecast/internal/reports"
	"oxforecast/internal/storage"
)

// HandleRoot redirects to the chart page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Redirect(w, r, "/chart", http.StatusFound)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]string{"config": "ok", "storage": "disabled"}
	if s.Storage != nil {
		checks["storage"] = "ok"
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
		"mockup":    s.Config.MockupMode,
		"checks":    checks,
	})
}

// HandleChartPage serves the HTML page with the embedded interactive chart.
// When the forecast API is unavailable the page explains that instead.
func (s *Server) HandleChartPage(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.serviceFor(w, r)
	if !ok {
		return
	}

	report, err := svc.GenerateReport(r.Context(), s.now())
	if err != nil {
		s.respondUnavailablePage(w, svc, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(report.HTML))
}

// HandleChartPNG serves the static PNG rendering
func (s *Server) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.serviceFor(w, r)
	if !ok {
		return
	}

	report, err := svc.GenerateReport(r.Context(), s.now())
	if err != nil {
		s.respondWithError(w, statusFor(err), "Chart unavailable", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(report.Artifacts.PNG)
}

// HandleChartJSON serves the chart description itself
func (s *Server) HandleChartJSON(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.serviceFor(w, r)
	if !ok {
		return
	}

	spec, err := svc.Build(r.Context(), s.now())
	if err != nil {
		s.respondWithError(w, statusFor(err), "Chart unavailable", err)
		return
	}
	respondWithJSON(w, http.StatusOK, spec)
}

// HandleEChartsPage serves the standalone go-echarts page
func (s *Server) HandleEChartsPage(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.serviceFor(w, r)
	if !ok {
		return
	}

	report, err := svc.GenerateReport(r.Context(), s.now())
	if err != nil {
		s.respondUnavailablePage(w, svc, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.Artifacts.Page)
}

// HandleProbabilityTable returns the exceedance table, or with ?a=&b= the first matching row.
func (s *Server) HandleProbabilityTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	table, err := s.services[s.defaultVariant()].ProbabilityTable(r.Context())
	if err != nil {
		s.respondWithError(w, statusFor(err), "Probability table unavailable", err)
		return
	}

	q := r.URL.Query()
	if q.Get("a") == "" && q.Get("b") == "" {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"rows": table, "count": len(table)})
		return
	}

	a, errA := strconv.ParseFloat(q.Get("a"), 64)
	b, errB := strconv.ParseFloat(q.Get("b"), 64)
	if errA != nil || errB != nil {
		s.respondWithError(w, http.StatusBadRequest, "Query parameters a and b must be numbers", nil)
		return
	}

	idx := table.FindRow(a, b)
	resp := map[string]interface{}{"index": idx, "row": nil}
	if idx >= 0 {
		resp["row"] = table[idx]
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// HandleGenerate renders a chart and stores every artifact as a new run
func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.orchestrator == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Storage is not configured", nil)
		return
	}

	// Try to acquire the mutex - if already locked, return error immediately
	if !s.generateMutex.TryLock() {
		s.log.Warn("Chart generation already in progress, rejecting new request")
		respondWithJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "Chart generation already in progress",
			"status": "conflict",
		})
		return
	}
	defer s.generateMutex.Unlock()

	svc, ok := s.serviceFor(w, r)
	if !ok {
		return
	}

	report, err := svc.GenerateReport(r.Context(), s.now())
	if err != nil {
		s.respondWithError(w, statusFor(err), "Chart generation failed", err)
		return
	}

	paths, err := s.orchestrator.StoreReport(r.Context(), report)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to store chart", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"folder": storage.RunFolderPath(report.Data.Now),
		"files":  paths,
	})
}

// HandleListRuns lists recent stored runs
func (s *Server) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Storage == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Storage is not configured", nil)
		return
	}

	// Get limit from query parameter (default 10, capped at 100)
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}

	runs, err := s.Storage.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"runs":      runs,
		"count":     len(runs),
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// HandleLatestRun redirects to the page of the newest stored run
func (s *Server) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Storage == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Storage is not configured", nil)
		return
	}

	run, err := s.Storage.LatestRun(r.Context())
	if errors.Is(err, storage.ErrNoRuns) {
		s.respondWithError(w, http.StatusNotFound, "No stored runs", nil)
		return
	}
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to find latest run", err)
		return
	}
	http.Redirect(w, r, "/files/"+run+"/"+reports.IndexFile, http.StatusFound)
}

// HandleFileProxy serves a stored file, e.g. /files/2024/07/01/OXChart-.../chart.png
func (s *Server) HandleFileProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Storage == nil {
		http.NotFound(w, r)
		return
	}

	filePath := strings.TrimPrefix(r.URL.Path, "/files/")
	if filePath == "" {
		http.Error(w, "File path required", http.StatusBadRequest)
		return
	}

	fileData, err := s.Storage.GetFile(r.Context(), filePath)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			http.Error(w, "Invalid file path", http.StatusBadRequest)
			return
		}
		s.log.Debug("Stored file not found", logger.Fields{"path": filePath, "error": err.Error()})
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", storage.GetContentType(filePath))
	w.Write(fileData)
}

// serviceFor resolves ?variant=, defaulting to the configured variant.
func (s *Server) serviceFor(w http.ResponseWriter, r *http.Request) (*reports.ReportService, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	variant := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("variant")))
	if variant == "" {
		variant = s.defaultVariant()
	}
	svc, ok := s.services[variant]
	if !ok {
		s.respondWithError(w, http.StatusBadRequest, "Unknown chart variant: "+variant, nil)
		return nil, false
	}
	return svc, true
}

func (s *Server) defaultVariant() string {
	v := strings.ToLower(strings.TrimSpace(s.Config.ChartVariant))
	if v == "" {
		return "simple"
	}
	return v
}

// respondUnavailablePage renders the "data unavailable" page with the mapped status.
func (s *Server) respondUnavailablePage(w http.ResponseWriter, svc *reports.ReportService, err error) {
	status := statusFor(err)
	s.log.Error("Chart page failed", err, logger.Fields{"status": status})

	page, pageErr := svc.Pages().BuildUnavailablePage(s.now(), svc.Location())
	if pageErr != nil {
		http.Error(w, "Service Unavailable", status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(page))
}

// statusFor maps upstream failures onto the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fetchers.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetchers.ErrRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
