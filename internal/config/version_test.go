package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionFromEnvironment(t *testing.T) {
	t.Setenv("APP_VERSION", "1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())

	t.Setenv("APP_VERSION", "2.0.0-beta.1")
	assert.Equal(t, "2.0.0-beta.1", GetVersion())
}

func TestGetVersionFallback(t *testing.T) {
	t.Setenv("APP_VERSION", "")
	assert.NotEmpty(t, GetVersion())
}

func TestVersionFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "VERSION")
	assert.NoError(t, os.WriteFile(path, []byte("3.4.5\n"), 0o644))

	assert.Equal(t, "3.4.5", versionFromFile(filepath.Join(dir, "missing"), path))
	assert.Equal(t, fallbackVersion, versionFromFile(filepath.Join(dir, "missing")))
}
