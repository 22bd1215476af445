package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/internal/testutil"
	"github.com/sartorproj/covidframe/source"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, source.JHU, cfg.Source)
	assert.Equal(t, source.FormatLong, cfg.Format)
	assert.Equal(t, source.DataAll, cfg.DataType)
	assert.True(t, cfg.Update)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, source.DefaultConfig().NYTURL, cfg.Fetch.NYTURL)
	assert.Empty(t, cfg.File)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "covidframe.yaml", `
source: nyt
data_type: cases
output: json
limit: 5
fetch:
  timeout: 5s
  cache_dir: /from/file
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Equal(t, source.NYT, cfg.Source)
		assert.Equal(t, OutputJSON, cfg.Output)
		assert.Equal(t, 5, cfg.Limit)
		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, "/from/file", cfg.Fetch.CacheDir)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("COVIDFRAME_OUTPUT", "csv")
		t.Setenv("COVIDFRAME_FETCH__CACHE_DIR", "/from/env")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, OutputCSV, cfg.Output)
		assert.Equal(t, "/from/env", cfg.Fetch.CacheDir)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("COVIDFRAME_OUTPUT", "csv")
		flags := NewRootCmd().PersistentFlags()
		require.NoError(t, flags.Parse([]string{"--output", "table", "--cache-dir", "/from/flag", "--timeout", "1m", "--update=false"}))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, OutputTable, cfg.Output)
		assert.Equal(t, "/from/flag", cfg.Fetch.CacheDir)
		assert.Equal(t, time.Minute, cfg.Fetch.Timeout)
		assert.False(t, cfg.Update)
		assert.Equal(t, source.NYT, cfg.Source, "unset flags leave the file value")
	})
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"output", []string{"--output", "xml"}, "output must be one of"},
		{"input layout", []string{"--input", "x.csv", "--input-layout", "tall"}, "input_layout"},
		{"request", []string{"--source", "who"}, "Source must be one of"},
		{"wide all", []string{"--format", "wide"}, "wide format holds one data type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := NewRootCmd().PersistentFlags()
			require.NoError(t, flags.Parse(tt.args))
			_, err := LoadConfig("", flags)
			require.Error(t, err)
			assert.ErrorIs(t, err, frame.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestConfigRequest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "NYT"
	cfg.Region = ""
	req := cfg.Request()
	assert.Equal(t, source.NYT, req.Source)
	assert.NoError(t, req.Validate())
}
