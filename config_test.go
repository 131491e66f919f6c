package assetpack

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	var cfg Config
	err := cfg.Validate()

	var ce *ConfigError
	require.True(t, errors.As(err, &ce), "expected *ConfigError, got %v", err)
	assert.Equal(t, "cache_path", ce.Option)

	cfg = Config{CachePath: "/cache"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(t, DefaultFetchConcurrency, cfg.FetchConcurrency)
	assert.Equal(t, time.UTC, cfg.Location())

	cfg = Config{CachePath: "/cache", Timezone: "Not/AZone"}
	err = cfg.Validate()
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "timezone", ce.Option)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(Config{}, WithFs(afero.NewMemMapFs()))
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestOpenCreatesCacheDirectory(t *testing.T) {
	engine, fs, _ := setupTestEngine(t, testConfig())

	exists, err := afero.DirExists(fs, testCachePath)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, engine.Close())
}

func TestEngineConfigLocation(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Asia/Tokyo"
	engine, _, _ := setupTestEngine(t, cfg)

	assert.Equal(t, "Asia/Tokyo", engine.Config().Location().String())
}

func TestLoadConfig(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/etc/assetpack.yaml", []byte(`
cache_path: /srv/cache
cache_url: https://static.example.com/cache
asset_path: /srv/assets
asset_url: https://static.example.com/assets
style_dir: css
script_dir: js
file_prefix: v2-
dev: true
force_curl: true
timezone: Europe/Paris
connect_timeout: 2s
fetch_concurrency: 8
manifest: assets.yaml
`), 0o644))

	cfg, err := LoadConfig(memFs, "/etc/assetpack.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/srv/cache", cfg.CachePath)
	assert.Equal(t, "https://static.example.com/cache", cfg.CacheURL)
	assert.Equal(t, "/srv/assets", cfg.AssetPath)
	assert.Equal(t, "css", cfg.StyleDir)
	assert.Equal(t, "js", cfg.ScriptDir)
	assert.Equal(t, "v2-", cfg.FilePrefix)
	assert.True(t, cfg.Dev)
	assert.True(t, cfg.ForceRemoteFetch)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, "Europe/Paris", cfg.Location().String())
}

func TestLoadConfigErrors(t *testing.T) {
	memFs := afero.NewMemMapFs()

	_, err := LoadConfig(memFs, "/missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(memFs, "/bad.yaml", []byte("cache_path: [unclosed"), 0o644))
	_, err = LoadConfig(memFs, "/bad.yaml")
	assert.ErrorContains(t, err, "failed to parse config")

	require.NoError(t, afero.WriteFile(memFs, "/empty.yaml", []byte("dev: true\n"), 0o644))
	_, err = LoadConfig(memFs, "/empty.yaml")
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/assets/css/a.css", joinURL("/assets/", "/css/", "a.css"))
	assert.Equal(t, "https://x.com/a.css", joinURL("https://x.com", "", "a.css"))
	assert.Equal(t, "a.css", joinURL("", "a.css"))
	assert.Equal(t, "", joinURL(""))
}
