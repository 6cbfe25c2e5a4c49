package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"unknown backend", func(c *AppConfig) { c.Storage.Backend = "s3" }, "unknown storage backend"},
		{"unknown codec", func(c *AppConfig) { c.Storage.Codec = "xml" }, "unknown storage codec"},
		{"empty key", func(c *AppConfig) { c.Storage.TagsKey = "" }, "must not be empty"},
		{"same keys", func(c *AppConfig) { c.Storage.TagsKey = c.Storage.TodosKey }, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAppConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateClampsDelays(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Behavior.ErrorExpiryMS = 0
	cfg.Behavior.SearchDebounceMS = -5
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.Behavior.ErrorExpiryMS)
	assert.Equal(t, 300, cfg.Behavior.SearchDebounceMS)

	cfg.Behavior.SearchDebounceMS = 0
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Behavior.SearchDebounce())
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Codec = CodecMsgpack
	cfg.Behavior.SearchEnabled = false
	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, got.Storage.Backend)
	assert.Equal(t, CodecMsgpack, got.Storage.Codec)
	assert.False(t, got.Behavior.SearchEnabled)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAppConfig().Storage, got.Storage)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TODOLIST_STORAGE_BACKEND", BackendMemory)
	got, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, got.Storage.Backend)
}
