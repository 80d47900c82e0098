package storage

import (
	"testing"
	"time"
)

func TestRunFolderPath(t *testing.T) {
	tests := []struct {
		name      string
		timestamp time.Time
		expected  string
	}{
		{
			name:      "standard date and time",
			timestamp: time.Date(2024, 7, 1, 9, 30, 45, 0, time.UTC),
			expected:  "2024/07/01/OXChart-2024-07-01-09-30-45",
		},
		{
			name:      "new year date",
			timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected:  "2025/01/01/OXChart-2025-01-01-00-00-00",
		},
		{
			name:      "leap year date",
			timestamp: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
			expected:  "2024/02/29/OXChart-2024-02-29-23-59-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunFolderPath(tt.timestamp); got != tt.expected {
				t.Errorf("RunFolderPath() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"index.html":   "text/html; charset=utf-8",
		"chart.png":    "image/png",
		"chart.json":   "application/json",
		"CHART.PNG":    "image/png",
		"styles.css":   "text/css",
		"data.bin":     "application/octet-stream",
		"no-extension": "application/octet-stream",
	}
	for filename, want := range tests {
		if got := GetContentType(filename); got != want {
			t.Errorf("GetContentType(%q) = %q, want %q", filename, got, want)
		}
	}
}
