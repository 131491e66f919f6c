package assetpack

import (
	"path/filepath"
)

// Extensions of the two asset kinds.
const (
	StyleExt  = "css"
	ScriptExt = "js"
)

// DefaultMedia is the media group of styles that don't declare one.
const DefaultMedia = "screen"

// Kind holds the only behaviors that differ between styles and scripts. All
// caching, staleness and bundling logic is shared and driven through it.
type Kind interface {
	// Extension returns the file extension of the kind, without the dot.
	Extension() string
	// ResolvePath returns the local path of a declared file.
	ResolvePath(cfg *Config, file string) string
	// ResolveURL returns the public URL of a declared file.
	ResolveURL(cfg *Config, file string) string
	// Parse transforms raw source content before it is cached or combined.
	Parse(content []byte) []byte
	// Minify compacts parsed content.
	Minify(content []byte) ([]byte, error)
}

// ParseFunc transforms raw content, e.g. to process templates or pragmas.
type ParseFunc func(content []byte) []byte

// MinifyFunc compacts content.
type MinifyFunc func(content []byte) ([]byte, error)

type fileKind struct {
	ext    string
	dir    func(cfg *Config) string
	parse  ParseFunc
	minify MinifyFunc
}

// Styles returns the style kind. Nil functions leave content untouched.
func Styles(parse ParseFunc, minify MinifyFunc) Kind {
	return &fileKind{
		ext:    StyleExt,
		dir:    func(cfg *Config) string { return cfg.StyleDir },
		parse:  parse,
		minify: minify,
	}
}

// Scripts returns the script kind. Nil functions leave content untouched.
func Scripts(parse ParseFunc, minify MinifyFunc) Kind {
	return &fileKind{
		ext:    ScriptExt,
		dir:    func(cfg *Config) string { return cfg.ScriptDir },
		parse:  parse,
		minify: minify,
	}
}

func (k *fileKind) Extension() string { return k.ext }

func (k *fileKind) ResolvePath(cfg *Config, file string) string {
	return filepath.Join(cfg.AssetPath, k.dir(cfg), filepath.FromSlash(file))
}

func (k *fileKind) ResolveURL(cfg *Config, file string) string {
	return joinURL(cfg.AssetURL, k.dir(cfg), file)
}

func (k *fileKind) Parse(content []byte) []byte {
	if k.parse == nil {
		return content
	}
	return k.parse(content)
}

func (k *fileKind) Minify(content []byte) ([]byte, error) {
	if k.minify == nil {
		return content, nil
	}
	return k.minify(content)
}

func isStyle(k Kind) bool {
	return k.Extension() == StyleExt
}
