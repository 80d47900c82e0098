package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oxforecast/internal/charts"
	"oxforecast/internal/config"
	"oxforecast/internal/fetchers"
	"oxforecast/internal/logger"
	"oxforecast/internal/mocks"
	"oxforecast/internal/reports"
	"oxforecast/internal/solar"
	"oxforecast/internal/storage"
)

// Server represents the main application server
type Server struct {
	Config  *config.Config
	Storage storage.Client

	// services holds one report service per chart variant
	services      map[string]*reports.ReportService
	orchestrator  *reports.StorageOrchestrator
	apiProxy      http.Handler
	generateMutex sync.Mutex
	now           func() time.Time
	log           *logger.Logger
}

// NewServer wires the server from configuration: the forecast API client (or
// fixture data in mockup mode), sun times for the configured coordinate and
// local storage for generated runs.
func NewServer(cfg *config.Config) (*Server, error) {
	log := logger.Component("server")

	var source reports.DataSource
	if cfg.MockupMode {
		source = mocks.NewMockService(cfg.MocksDir)
		log.Info("Mockup mode enabled", logger.Fields{"mocks_dir": cfg.MocksDir})
	} else {
		source = fetchers.NewClient(fetchers.Options{
			BaseURL:  cfg.APIBaseURL,
			Timeout:  cfg.HTTPTimeout,
			RPS:      cfg.FetchRPS,
			Burst:    cfg.FetchBurst,
			Location: cfg.Location(),
		})
	}

	store, err := storage.NewStorageClient(cfg)
	if err != nil {
		return nil, err
	}

	sun := solar.NewCalculator(cfg.Latitude, cfg.Longitude, cfg.Location())
	return New(cfg, source, sun, store)
}

// New assembles a server from explicit collaborators. store may be nil, which
// disables /generate, /runs and /files.
func New(cfg *config.Config, source reports.DataSource, sun reports.SunTimesProvider, store storage.Client) (*Server, error) {
	if cfg == nil || source == nil {
		return nil, fmt.Errorf("server: config and data source are required")
	}

	s := &Server{
		Config:   cfg,
		Storage:  store,
		services: map[string]*reports.ReportService{},
		now:      time.Now,
		log:      logger.Component("server"),
	}

	for _, variant := range []string{"simple", "rich"} {
		opts, err := charts.OptionsForVariant(variant)
		if err != nil {
			return nil, err
		}
		if cfg.ThresholdPPB > 0 {
			opts.Threshold = cfg.ThresholdPPB
		}
		s.services[variant] = reports.NewReportService(reports.ServiceConfig{
			Region:   cfg.Region,
			Lat:      cfg.Latitude,
			Lon:      cfg.Longitude,
			Location: cfg.Location(),
			Options:  opts,
			Size:     charts.DefaultPNGSize,
			Version:  config.GetVersion(),
		}, source, sun)
	}
	if _, err := charts.OptionsForVariant(cfg.ChartVariant); err != nil {
		return nil, err
	}

	if store != nil {
		s.orchestrator = reports.NewStorageOrchestrator(store)
	}

	if cfg.APIBaseURL != "" {
		proxy, err := newAPIProxy(cfg.APIBaseURL, s.log)
		if err != nil {
			return nil, err
		}
		s.apiProxy = proxy
	}

	return s, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/chart", s.HandleChartPage)
	mux.HandleFunc("/chart.png", s.HandleChartPNG)
	mux.HandleFunc("/chart.json", s.HandleChartJSON)
	mux.HandleFunc("/chart/echarts", s.HandleEChartsPage)
	mux.HandleFunc("/ptable", s.HandleProbabilityTable)
	mux.HandleFunc("/generate", s.HandleGenerate)
	mux.HandleFunc("/runs", s.HandleListRuns)
	mux.HandleFunc("/runs/latest", s.HandleLatestRun)
	mux.HandleFunc("/files/", s.HandleFileProxy)
	mux.Handle("/metrics", promhttp.Handler())
	if s.apiProxy != nil {
		mux.Handle("/api/", http.StripPrefix("/api", s.apiProxy))
	}

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// Handler returns the routes wrapped in the request-id, logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	return requestIDMiddleware(loggingMiddleware(s.log, metricsMiddleware(s.SetupRoutes())))
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}

// newAPIProxy forwards /api/* to the forecast API with the prefix already stripped.
func newAPIProxy(base string, log *logger.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", base, err)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("API proxy request failed", err, logger.Fields{"path": r.URL.Path})
		http.Error(w, "Upstream unavailable", http.StatusBadGateway)
	}
	return proxy, nil
}
