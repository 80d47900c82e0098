package storage

import (
	"fmt"

	"oxforecast/internal/config"
)

// NewStorageClient creates the storage client for the configured output directory
func NewStorageClient(cfg *config.Config) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage: nil config")
	}
	client, err := NewLocalStorageClient(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
	}
	return client, nil
}
