package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"oxforecast/internal/logger"
	"oxforecast/internal/storage"
)

// Stored file names inside a run folder.
const (
	IndexFile     = "index.html"
	PNGFile       = "chart.png"
	EChartsFile   = "chart_echarts.html"
	SpecFile      = "chart_spec.json"
	InputDataFile = "api_data.json"
)

// StorageOrchestrator writes every file of a report into one run folder
type StorageOrchestrator struct {
	storage storage.Client
	log     *logger.Logger
}

// NewStorageOrchestrator creates a new storage orchestrator
func NewStorageOrchestrator(client storage.Client) *StorageOrchestrator {
	return &StorageOrchestrator{storage: client, log: logger.Component("storage")}
}

// StoreReport stores the report files and returns their paths relative to the storage root.
// The page is written last so a listed run is always complete.
func (so *StorageOrchestrator) StoreReport(ctx context.Context, report *Report) ([]string, error) {
	if report == nil || report.Artifacts == nil || report.Data == nil {
		return nil, fmt.Errorf("report is incomplete")
	}

	apiData, err := json.MarshalIndent(report.Data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chart data: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{InputDataFile, apiData},
		{SpecFile, report.Artifacts.JSON},
		{PNGFile, report.Artifacts.PNG},
		{EChartsFile, report.Artifacts.Page},
		{IndexFile, []byte(report.HTML)},
	}

	timestamp := report.Data.Now
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := so.storage.StoreFile(ctx, f.data, f.name, timestamp)
		if err != nil {
			return paths, fmt.Errorf("failed to store %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}

	so.log.Info("Report stored", logger.Fields{"folder": storage.RunFolderPath(timestamp), "files": len(paths)})
	return paths, nil
}
