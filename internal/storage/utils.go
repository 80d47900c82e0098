package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// RunFolderPath generates a consistent folder path for one render run
// Format: YYYY/MM/DD/OXChart-YYYY-MM-DD-HH-MM-SS
func RunFolderPath(timestamp time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d/OXChart-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

var contentTypes = map[string]string{
	".json": "application/json",
	".txt":  "text/plain; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".css":  "text/css",
	".md":   "text/markdown",
	".png":  "image/png",
	".svg":  "image/svg+xml",
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
