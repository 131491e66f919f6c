package assetpack

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConnectTimeout bounds how long a remote fetch may spend connecting.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultFetchConcurrency is the number of bundle members fetched at once.
	DefaultFetchConcurrency = 4
)

// Config holds the process-wide, read-only settings for one engine.
type Config struct {
	CachePath string `yaml:"cache_path"` // Directory holding every cache artifact
	CacheURL  string `yaml:"cache_url"`  // Public URL prefix of CachePath
	AssetPath string `yaml:"asset_path"` // Directory local asset files are resolved against
	AssetURL  string `yaml:"asset_url"`  // Public URL prefix of AssetPath
	BasePath  string `yaml:"base_path"`
	BaseURL   string `yaml:"base_url"`

	// StyleDir and ScriptDir are optional subdirectories of AssetPath/AssetURL
	// holding styles and scripts.
	StyleDir  string `yaml:"style_dir"`
	ScriptDir string `yaml:"script_dir"`

	// FilePrefix is prepended to the names of single-asset cache files.
	FilePrefix string `yaml:"file_prefix"`

	Dev              bool `yaml:"dev"`
	ForceRemoteFetch bool `yaml:"force_curl"`

	// Timezone names the location used for every date rendered by the engine
	// (cache-bust tokens, cache file headers). Defaults to UTC.
	Timezone string `yaml:"timezone"`

	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	FetchConcurrency int           `yaml:"fetch_concurrency"`

	location *time.Location
}

// Validate checks the required options, fills in defaults and resolves the
// configured timezone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CachePath) == "" {
		return &ConfigError{Option: "cache_path", Err: errors.New("required option is empty")}
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = DefaultFetchConcurrency
	}

	tz := c.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return &ConfigError{Option: "timezone", Err: err}
	}
	c.location = loc
	return nil
}

// Location returns the timezone resolved by Validate.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// cacheFile returns the path of a file inside the cache directory.
func (c *Config) cacheFile(name string) string {
	return filepath.Join(c.CachePath, name)
}

// cacheFileURL returns the public URL of a file inside the cache directory.
func (c *Config) cacheFileURL(name string) string {
	return joinURL(c.CacheURL, name)
}

// LoadConfig reads a YAML configuration file from fs and validates it.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := UnmarshalConfig(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UnmarshalConfig decodes YAML configuration into cfg without validating it.
// Unknown keys are ignored.
func UnmarshalConfig(data []byte, cfg *Config) error {
	return yaml.Unmarshal(data, cfg)
}

// joinURL joins a URL prefix and a relative path with exactly one slash.
func joinURL(base string, parts ...string) string {
	out := base
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
			continue
		}
		out = strings.TrimRight(out, "/") + "/" + strings.TrimLeft(p, "/")
	}
	return out
}
