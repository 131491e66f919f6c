package assetpack

import (
	"fmt"
	"time"
)

// Stats represents cache directory statistics.
type Stats struct {
	Entries     int           // Total number of cache files
	Styles      int           // Number of *.css cache files
	Scripts     int           // Number of *.js cache files
	TotalSize   int64         // Total size of all cache files in bytes
	OldestEntry time.Duration // Age of the oldest file
	NewestEntry time.Duration // Age of the newest file
}

// Stats returns statistics about the cache directory.
func (e *Engine) Stats() (Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, err := ScanIndex(e.fs, e.cfg.CachePath)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Styles:  len(idx.styles),
		Scripts: len(idx.scripts),
	}
	var oldest, newest time.Time

	for _, entry := range idx.All() {
		stats.Entries++
		stats.TotalSize += entry.Size

		if oldest.IsZero() || entry.ModifiedAt.Before(oldest) {
			oldest = entry.ModifiedAt
		}
		if newest.IsZero() || entry.ModifiedAt.After(newest) {
			newest = entry.ModifiedAt
		}
	}

	now := e.now()
	if !oldest.IsZero() {
		stats.OldestEntry = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestEntry = now.Sub(newest)
	}

	return stats, nil
}

// Entries returns every cache file, sorted by name.
func (e *Engine) Entries() ([]CacheEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, err := ScanIndex(e.fs, e.cfg.CachePath)
	if err != nil {
		return nil, err
	}
	return idx.All(), nil
}

// Prune removes cache files not modified within the given duration.
// Returns the number of files removed.
func (e *Engine) Prune(olderThan time.Duration) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-olderThan)
	return e.removeEntries(func(entry CacheEntry) bool {
		return entry.ModifiedAt.Before(cutoff)
	})
}

// Clear removes every style and script file from the cache directory. Other
// files are left alone.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.removeEntries(func(CacheEntry) bool { return true })
	return err
}

func (e *Engine) removeEntries(match func(CacheEntry) bool) (int, error) {
	idx, err := ScanIndex(e.fs, e.cfg.CachePath)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range idx.All() {
		if !match(entry) {
			continue
		}
		if err := e.fs.Remove(entry.Path); err != nil {
			return count, fmt.Errorf("failed to remove cache file %s: %w", entry.Name, err)
		}
		e.logger.Debugf("removed %s", entry.Name)
		count++
	}
	return count, nil
}
