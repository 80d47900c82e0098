package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"oxforecast/internal/fetchers"
	"oxforecast/internal/models"
)

// MockService serves fixture payloads in place of the forecast API
type MockService struct {
	mocksDir string
}

// NewMockService creates a mock service reading fixtures from mocksDir/data
func NewMockService(mocksDir string) *MockService {
	return &MockService{
		mocksDir: filepath.Join(mocksDir, "data"),
	}
}

// FetchAll mirrors fetchers.Client.FetchAll using the fixture files. The
// timestamp in req is kept so charts are laid out against the real clock.
func (m *MockService) FetchAll(ctx context.Context, req fetchers.Request) (*models.ChartData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.ChartData{Region: req.Region, Now: req.Now}

	var forecast models.ForecastResponse
	if err := m.loadTypedJSONFile("forecast.json", &forecast); err != nil {
		return nil, fmt.Errorf("failed to load forecast data: %w", err)
	}
	result.Forecast = &forecast

	if req.Observations {
		var obs models.ObservationResponse
		if err := m.loadTypedJSONFile("observation.json", &obs); err != nil {
			return nil, fmt.Errorf("failed to load observation data: %w", err)
		}
		obs.OXObs, _ = fetchers.NormalizeObservations(obs.OXObs)
		result.Observation = &obs
	}

	if req.Location {
		var loc models.LocationResponse
		if err := m.loadTypedJSONFile("location.json", &loc); err != nil {
			return nil, fmt.Errorf("failed to load location data: %w", err)
		}
		result.Location = &loc
	}

	return result, nil
}

// FetchProbabilityTable returns the fixture probability table
func (m *MockService) FetchProbabilityTable(ctx context.Context) (models.ProbabilityTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var table models.ProbabilityTable
	if err := m.loadTypedJSONFile("ptable.json", &table); err != nil {
		return nil, fmt.Errorf("failed to load probability table: %w", err)
	}
	return table, nil
}

// loadTypedJSONFile loads a JSON file and unmarshals it into target
func (m *MockService) loadTypedJSONFile(filename string, target interface{}) error {
	filePath := filepath.Join(m.mocksDir, filename)
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("failed to unmarshal file %s: %w", filename, err)
	}
	return nil
}
