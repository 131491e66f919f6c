package assetpack

import (
	"crypto/md5"
	"fmt"
	"hash"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/spf13/afero"
)

// Engine builds and caches style and script artifacts in a flat cache
// directory. It is safe to share an Engine between goroutines; the state of a
// single build lives in a Session.
type Engine struct {
	cfg      Config
	fs       afero.Fs
	hashFunc HashFunc
	nowFunc  NowFunc
	fetcher  Fetcher
	client   *http.Client
	reporter ErrorReporter
	logger   log.Interface

	contentAddressed bool // name bundles after their bytes instead of their members
	legacyPoisoning  bool // a failed bundle write disables the whole asset type

	mu       sync.RWMutex // guards cache directory maintenance
	reportMu sync.Mutex
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// Option defines a function that configures an Engine.
type Option func(*Engine)

// Open creates a new engine for cfg. The cache directory will be created if it
// doesn't exist.
func Open(cfg Config, options ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		hashFunc: defaultHashFunc,
		nowFunc:  time.Now,
		reporter: nopReporter{},
		logger:   log.Log,
	}

	for _, option := range options {
		option(e)
	}

	if e.fetcher == nil {
		e.fetcher = NewFetcher(e.fs, e.client, cfg.ConnectTimeout)
	}

	if err := e.fs.MkdirAll(cfg.CachePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// NewSession scans the cache directory and starts a build session.
func (e *Engine) NewSession() (*Session, error) {
	idx, err := ScanIndex(e.fs, e.cfg.CachePath)
	if err != nil {
		return nil, err
	}
	return &Session{
		engine:  e,
		index:   idx,
		started: e.now(),
		bundles: make(map[string]*Bundle),
	}, nil
}

// Close releases the engine. The engine keeps no open files.
func (e *Engine) Close() error {
	return nil
}

func (e *Engine) now() time.Time {
	return e.nowFunc()
}

func (e *Engine) newHash() hash.Hash {
	return e.hashFunc()
}

// defaultHashFunc names bundles with MD5, which keeps cache files compatible
// with existing cache directories.
func defaultHashFunc() hash.Hash {
	return md5.New()
}
