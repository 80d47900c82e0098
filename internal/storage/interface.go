package storage

import (
	"context"
	"time"
)

// Client stores rendered chart artifacts grouped into one folder per run.
type Client interface {
	// Close releases any resources held by the client
	Close() error

	// StoreFile writes fileData as filename inside the folder for timestamp and
	// returns the stored path relative to the client root.
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) (string, error)

	// GetFile reads a file by its path relative to the client root.
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListRuns returns run folders newest first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]string, error)

	// LatestRun returns the newest run folder, or ErrNoRuns.
	LatestRun(ctx context.Context) (string, error)
}
