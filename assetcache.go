package assetpack

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
)

// slotState records what happened to the two cache slots of an asset during
// its session. The slots are checked at most once.
type slotState struct {
	checked     bool
	err         error
	fetchFailed bool
	produced    map[bool][]byte // minified -> bytes meant for that slot
}

type cacheSlot struct {
	name string
	path string
	url  string
}

// slot returns the parsed (minified=false) or parsed+minified cache slot.
// Slots built from the dev variant of an asset that also declares a prod
// variant are named <name>.dev.parsed[.min].<ext>.
func (a *Asset) slot(minified bool) cacheSlot {
	suffix := ".parsed."
	if minified {
		suffix = ".parsed.min."
	}
	if a.ActiveStage() == Dev && a.prod.Declared() {
		suffix = ".dev" + suffix
	}
	cfg := &a.engine.cfg
	name := cfg.FilePrefix + a.name + suffix + a.kind.Extension()
	return cacheSlot{
		name: name,
		path: cfg.cacheFile(name),
		url:  cfg.cacheFileURL(name),
	}
}

// CachePath returns the path of a single-asset cache slot.
func (a *Asset) CachePath(minified bool) string {
	return a.slot(minified).path
}

// CacheURL returns the public URL of a single-asset cache slot.
func (a *Asset) CacheURL(minified bool) string {
	return a.slot(minified).url
}

// SlotStale reports whether a cache slot has to be regenerated: it is missing,
// or its mtime is not strictly newer than the active source's. Remote sources
// report the epoch, so their slots stay fresh once written unless remote
// fetches are forced.
func (a *Asset) SlotStale(minified bool) bool {
	info, err := a.engine.fs.Stat(a.slot(minified).path)
	if err != nil {
		return true
	}
	if a.active().Remote && a.engine.cfg.ForceRemoteFetch {
		return true
	}
	src, ok := a.ModifiedAt(a.ActiveStage()).Get()
	if !ok {
		return true
	}
	return !info.ModTime().After(src)
}

// ensureCache regenerates stale slots, once per asset.
func (a *Asset) ensureCache() error {
	if !a.cache.checked {
		a.cache.checked = true
		a.cache.err = a.createCache()
	}
	return a.cache.err
}

// createCache fetches and parses the source once and rewrites whichever slots
// are stale. Nothing is written unless the content was obtained.
func (a *Asset) createCache() error {
	parsedStale := a.SlotStale(false)
	minStale := a.SlotStale(true)
	if !parsedStale && !minStale {
		a.engine.logger.Debugf("cache for %s is fresh", a.name)
		return nil
	}

	content, err := a.Fetch()
	if err != nil {
		a.cache.fetchFailed = true
		return err
	}
	a.cache.produced = make(map[bool][]byte, 2)

	if minStale {
		minified, err := a.kind.Minify(content)
		if err != nil {
			a.engine.report(Failure{Op: "minify", Asset: a.name, Err: err})
			minified = content
		}
		data := withNewline(minified)
		a.cache.produced[true] = data

		slot := a.slot(true)
		if err := a.engine.writeCacheFile(slot.path, data); err != nil {
			a.engine.report(Failure{Op: "write", Asset: a.name, Ref: slot.path, Err: err})
			return err
		}
		a.engine.logger.Debugf("regenerated %s", slot.name)
	}

	if parsedStale {
		var buf bytes.Buffer
		buf.WriteString(a.header())
		buf.Write(content)
		buf.WriteByte('\n')
		data := buf.Bytes()
		a.cache.produced[false] = data

		slot := a.slot(false)
		if err := a.engine.writeCacheFile(slot.path, data); err != nil {
			a.engine.report(Failure{Op: "write", Asset: a.name, Ref: slot.path, Err: err})
			return err
		}
		a.engine.logger.Debugf("regenerated %s", slot.name)
	}
	return nil
}

// header is the comment block written at the top of the parsed slot.
func (a *Asset) header() string {
	modified := epoch
	if t, ok := a.ModifiedAt(a.ActiveStage()).Get(); ok {
		modified = t
	}
	const rule = "|--------------------------------------------------------------------------"
	return fmt.Sprintf("/*\n%s\n| %s\n%s\n| Last Modified : %s\n*/\n",
		rule, a.name, rule, modified.In(a.engine.cfg.Location()).Format("2006 01 02"))
}

// CachedContent returns the content of a cache slot, regenerating it first if
// it is stale. If the slot cannot be written or read, the live parsed content
// is returned instead; a failed fetch is returned as an error.
func (a *Asset) CachedContent(minified bool) ([]byte, error) {
	if !a.valid {
		return nil, ErrInvalidAsset
	}
	if !a.cacheable {
		return a.Fetch()
	}

	if err := a.ensureCache(); err != nil {
		if a.cache.fetchFailed {
			return nil, err
		}
		if data, ok := a.cache.produced[minified]; ok {
			return data, nil
		}
		return a.Fetch()
	}

	slot := a.slot(minified)
	data, err := afero.ReadFile(a.engine.fs, slot.path)
	if err != nil {
		a.engine.report(Failure{Op: "read", Asset: a.name, Ref: slot.path, Err: err})
		return a.Fetch()
	}
	return data, nil
}

// writeCacheFile writes data to path and makes it world-readable.
func (e *Engine) writeCacheFile(path string, data []byte) error {
	if err := afero.WriteFile(e.fs, path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := e.fs.Chmod(path, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func withNewline(b []byte) []byte {
	out := make([]byte, 0, len(b)+1)
	out = append(out, b...)
	return append(out, '\n')
}
