package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"oxforecast/internal/charts"
	"oxforecast/internal/config"
	"oxforecast/internal/fetchers"
	"oxforecast/internal/logger"
	"oxforecast/internal/mocks"
	"oxforecast/internal/reports"
	"oxforecast/internal/solar"
	"oxforecast/internal/storage"
)

// LocalRunner renders one chart and writes every artifact to the output directory
type LocalRunner struct {
	service      *reports.ReportService
	orchestrator *reports.StorageOrchestrator
	outputDir    string
	log          *logger.Logger
}

func NewLocalRunner(cfg *config.Config, variant string) (*LocalRunner, error) {
	opts, err := charts.OptionsForVariant(variant)
	if err != nil {
		return nil, err
	}
	opts.Threshold = cfg.ThresholdPPB

	var source reports.DataSource
	if cfg.MockupMode {
		source = mocks.NewMockService(cfg.MocksDir)
	} else {
		source = fetchers.NewClient(fetchers.Options{
			BaseURL:  cfg.APIBaseURL,
			Timeout:  cfg.HTTPTimeout,
			RPS:      cfg.FetchRPS,
			Burst:    cfg.FetchBurst,
			Location: cfg.Location(),
		})
	}

	store, err := storage.NewLocalStorageClient(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	svc := reports.NewReportService(reports.ServiceConfig{
		Region:   cfg.Region,
		Lat:      cfg.Latitude,
		Lon:      cfg.Longitude,
		Location: cfg.Location(),
		Options:  opts,
		Size:     charts.DefaultPNGSize,
		Version:  config.GetVersion(),
	}, source, solar.NewCalculator(cfg.Latitude, cfg.Longitude, cfg.Location()))

	return &LocalRunner{
		service:      svc,
		orchestrator: reports.NewStorageOrchestrator(store),
		outputDir:    store.BaseDir(),
		log:          logger.Component("local-runner"),
	}, nil
}

func (lr *LocalRunner) Run(ctx context.Context, now time.Time) error {
	start := time.Now()
	lr.log.Info("Starting local chart generation", logger.Fields{"now": now.Format(time.RFC3339)})

	report, err := lr.service.GenerateReport(ctx, now)
	if err != nil {
		return fmt.Errorf("chart generation failed: %w", err)
	}

	paths, err := lr.orchestrator.StoreReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to store chart: %w", err)
	}

	summary := map[string]interface{}{
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
		"slots":       report.Artifacts.Spec.Slots(),
		"subtitle":    report.Artifacts.Spec.Subtitle,
		"night_bands": report.Artifacts.Spec.Shading != nil,
		"files":       paths,
	}
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(summaryJSON))

	if len(paths) > 0 {
		index := filepath.Join(lr.outputDir, filepath.FromSlash(paths[len(paths)-1]))
		if abs, err := filepath.Abs(index); err == nil {
			lr.log.Infof("Open in browser: file://%s", abs)
		}
	}
	return nil
}

func main() {
	variant := flag.String("variant", "", "chart variant (simple or rich); defaults to CHART_VARIANT")
	at := flag.String("at", "", "render as of this RFC3339 time instead of now")
	mock := flag.Bool("mock", false, "use fixture data instead of the forecast API")
	flag.Parse()

	if *mock {
		os.Setenv("MOCKUP_MODE", "true")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat, cfg.Environment); err != nil {
		logger.Fatal("Failed to configure logger", err)
	}

	now := time.Now()
	if *at != "" {
		now, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			logger.Fatal("Invalid -at time", err)
		}
	}

	if *variant == "" {
		*variant = cfg.ChartVariant
	}

	runner, err := NewLocalRunner(cfg, *variant)
	if err != nil {
		logger.Fatal("Failed to create local runner", err)
	}
	if err := runner.Run(ctx, now); err != nil {
		logger.Fatal("Local run failed", err)
	}
}
