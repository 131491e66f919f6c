package assetpack

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// CacheEntry describes one file found in the cache directory.
type CacheEntry struct {
	Name       string
	Path       string
	ModifiedAt time.Time
	Size       int64
}

// Index is a snapshot of the cache directory taken once per session. It is
// never updated after the scan.
type Index struct {
	styles  map[string]CacheEntry
	scripts map[string]CacheEntry
}

// ScanIndex lists the *.css and *.js files directly inside dir.
func ScanIndex(fs afero.Fs, dir string) (*Index, error) {
	styles, err := scanExt(fs, dir, StyleExt)
	if err != nil {
		return nil, err
	}
	scripts, err := scanExt(fs, dir, ScriptExt)
	if err != nil {
		return nil, err
	}
	return &Index{styles: styles, scripts: scripts}, nil
}

func scanExt(fs afero.Fs, dir, ext string) (map[string]CacheEntry, error) {
	matches, err := afero.Glob(fs, filepath.Join(dir, "*."+ext))
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache directory %s: %w", dir, err)
	}

	entries := make(map[string]CacheEntry, len(matches))
	for _, path := range matches {
		info, err := fs.Stat(path)
		if err != nil {
			// Removed between glob and stat.
			continue
		}
		if info.IsDir() {
			continue
		}
		name := filepath.Base(path)
		entries[name] = CacheEntry{
			Name:       name,
			Path:       path,
			ModifiedAt: info.ModTime(),
			Size:       info.Size(),
		}
	}
	return entries, nil
}

// Lookup finds a cache file by name. ext restricts the search to styles
// ("css") or scripts ("js"); an empty ext searches both.
func (i *Index) Lookup(name, ext string) (CacheEntry, bool) {
	switch ext {
	case StyleExt:
		e, ok := i.styles[name]
		return e, ok
	case ScriptExt:
		e, ok := i.scripts[name]
		return e, ok
	case "":
		if e, ok := i.styles[name]; ok {
			return e, true
		}
		e, ok := i.scripts[name]
		return e, ok
	}
	return CacheEntry{}, false
}

// Styles returns the style entries sorted by name.
func (i *Index) Styles() []CacheEntry { return sortedEntries(i.styles) }

// Scripts returns the script entries sorted by name.
func (i *Index) Scripts() []CacheEntry { return sortedEntries(i.scripts) }

// All returns every entry sorted by name.
func (i *Index) All() []CacheEntry {
	all := make(map[string]CacheEntry, len(i.styles)+len(i.scripts))
	for k, v := range i.styles {
		all[k] = v
	}
	for k, v := range i.scripts {
		all[k] = v
	}
	return sortedEntries(all)
}

// Len returns the number of indexed files.
func (i *Index) Len() int {
	return len(i.styles) + len(i.scripts)
}

func sortedEntries(m map[string]CacheEntry) []CacheEntry {
	out := make([]CacheEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
