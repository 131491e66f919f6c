package assetpack

import (
	"net/http"

	"github.com/apex/log"
	"github.com/spf13/afero"
)

// WithFs sets a custom filesystem for sources and the cache directory.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	engine, err := assetpack.Open(cfg, assetpack.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithHashFunc sets the hash used to name bundles from their member names.
// The default is MD5.
//
// Note: Changing the hash function orphans every existing bundle file.
func WithHashFunc(hashFunc HashFunc) Option {
	return func(e *Engine) {
		e.hashFunc = hashFunc
	}
}

// WithNowFunc sets a custom time function for the engine.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) Option {
	return func(e *Engine) {
		e.nowFunc = nowFunc
	}
}

// WithFetcher replaces the content fetcher.
func WithFetcher(f Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithHTTPClient sets the client used by the default fetcher for remote
// sources. Ignored when WithFetcher is also given.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		e.client = client
	}
}

// WithErrorReporter sets the sink for recoverable failures.
func WithErrorReporter(r ErrorReporter) Option {
	return func(e *Engine) {
		if r == nil {
			r = nopReporter{}
		}
		e.reporter = r
	}
}

// WithLogger sets the logger. The default is the apex/log package logger.
func WithLogger(l log.Interface) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithContentAddressedBundles names bundles after an xxHash digest of their
// combined bytes instead of the ordered member names. Every build then reads
// all members, but reordering members with identical output no longer creates
// a new cache file.
func WithContentAddressedBundles() Option {
	return func(e *Engine) {
		e.contentAddressed = true
	}
}

// WithLegacyBundlePoisoning makes a single failed bundle write disable the
// output of every bundle of the same type for the rest of the session. By
// default only the failing group is dropped.
func WithLegacyBundlePoisoning() Option {
	return func(e *Engine) {
		e.legacyPoisoning = true
	}
}
