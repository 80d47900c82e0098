package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"oxforecast/internal/logger"
)

// ErrInvalidPath is returned for paths that would escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// ErrNoRuns is returned by LatestRun when nothing has been stored yet.
var ErrNoRuns = errors.New("no stored runs")

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	baseDir string
	log     *logger.Logger
}

// NewLocalStorageClient creates a new local storage client
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if baseDir == "" {
		baseDir = "charts"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
		log:     logger.Component("storage"),
	}, nil
}

// BaseDir is the root every stored path is relative to
func (l *LocalStorageClient) BaseDir() string {
	return l.baseDir
}

// Close is a no-op for local storage
func (l *LocalStorageClient) Close() error {
	return nil
}

// StoreFile writes a file into the run folder for timestamp.
func (l *LocalStorageClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, filename)
	}

	relPath := filepath.Join(filepath.FromSlash(RunFolderPath(timestamp)), filename)
	filePath := filepath.Join(l.baseDir, relPath)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	l.log.Debug("Stored file", logger.Fields{"path": filePath, "bytes": len(fileData)})
	return filepath.ToSlash(relPath), nil
}

// GetFile retrieves a file by its path relative to the base directory
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// ListRuns lists run folders that contain an index.html, newest first.
func (l *LocalStorageClient) ListRuns(ctx context.Context, limit int) ([]string, error) {
	var runs []string

	err := filepath.WalkDir(l.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && d.Name() == "index.html" {
			rel, relErr := filepath.Rel(l.baseDir, filepath.Dir(path))
			if relErr == nil {
				runs = append(runs, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk output directory: %w", err)
	}

	// Folder names embed the timestamp, so reverse lexical order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))

	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

// LatestRun returns the newest run folder.
func (l *LocalStorageClient) LatestRun(ctx context.Context) (string, error) {
	runs, err := l.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoRuns, l.baseDir)
	}
	return runs[0], nil
}

func (l *LocalStorageClient) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return filepath.Join(l.baseDir, clean), nil
}
