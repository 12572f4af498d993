package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{FS: afero.NewMemMapFs(), Dir: "/work"})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	yml := `
source:
  kind: file
  path: /data/countries.csv
  timeout: 5s
chart:
  granularity: months
log:
  level: debug
`
	require.NoError(t, afero.WriteFile(fs, "/work/.ganttloom.yaml", []byte(yml), 0644))

	cfg, err := Load(Options{FS: fs, Dir: "/work"})
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Source.Kind)
	assert.Equal(t, "/data/countries.csv", cfg.Source.Path)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "months", cfg.Chart.Granularity)
	assert.Equal(t, 1200.0, cfg.Chart.Width, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("server:\n  addr: \":9000\"\n"), 0644))
	t.Setenv("GANTTLOOM_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("GANTTLOOM_SOURCE_KIND", "url")
	t.Setenv("GANTTLOOM_SOURCE_URL", "https://example.com/export?format=csv")

	cfg, err := Load(Options{FS: fs, File: "/cfg.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "url", cfg.Source.Kind)
	assert.Equal(t, "https://example.com/export?format=csv", cfg.Source.URL)
}

func TestLoad_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(Options{FS: fs, File: "/missing.yaml"})
	assert.Error(t, err, "an explicit file must exist")

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("source:\n  kind: file\n"), 0644))
	_, err = Load(Options{FS: fs, File: "/bad.yaml"})
	assert.ErrorContains(t, err, "invalid config", "file source without a path")

	require.NoError(t, afero.WriteFile(fs, "/gran.yaml", []byte("chart:\n  granularity: days\n"), 0644))
	_, err = Load(Options{FS: fs, File: "/gran.yaml"})
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteDefault(fs, "/work/.ganttloom.yaml", false))
	assert.Error(t, WriteDefault(fs, "/work/.ganttloom.yaml", false))
	assert.NoError(t, WriteDefault(fs, "/work/.ganttloom.yaml", true))

	data, err := afero.ReadFile(fs, "/work/.ganttloom.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 30s")

	cfg, err := Load(Options{FS: fs, Dir: "/work"})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GANTTLOOM_TEST_MARKER=present\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("GANTTLOOM_TEST_MARKER") })

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "present", os.Getenv("GANTTLOOM_TEST_MARKER"))
}
