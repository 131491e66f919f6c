package assetpack

import (
	"path/filepath"
	"testing"
	"time"
)

func seedCache(t *testing.T) (*Engine, *failureRecorder) {
	t.Helper()

	engine, fs, rec := setupTestEngine(t, testConfig())
	createTestFile(t, fs, filepath.Join(testCachePath, "old.css"), []byte("old"), fixedNowFunc().Add(-48*time.Hour))
	createTestFile(t, fs, filepath.Join(testCachePath, "new.css"), []byte("newer"), fixedNowFunc().Add(-time.Hour))
	createTestFile(t, fs, filepath.Join(testCachePath, "app.js"), []byte("app()"), fixedNowFunc().Add(-24*time.Hour))
	createTestFile(t, fs, filepath.Join(testCachePath, "README"), []byte("keep me"), fixedNowFunc().Add(-72*time.Hour))
	return engine, rec
}

func TestStats(t *testing.T) {
	engine, _ := seedCache(t)

	stats, err := engine.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Entries != 3 || stats.Styles != 2 || stats.Scripts != 1 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.TotalSize != int64(len("old")+len("newer")+len("app()")) {
		t.Errorf("unexpected size %d", stats.TotalSize)
	}
	if stats.OldestEntry != 48*time.Hour {
		t.Errorf("expected oldest entry 48h, got %v", stats.OldestEntry)
	}
	if stats.NewestEntry != time.Hour {
		t.Errorf("expected newest entry 1h, got %v", stats.NewestEntry)
	}
}

func TestStatsEmptyCache(t *testing.T) {
	engine, _, _ := setupTestEngine(t, testConfig())

	stats, err := engine.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestEntries(t *testing.T) {
	engine, _ := seedCache(t)

	entries, err := engine.Entries()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app.js", "new.css", "old.css"}
	if len(entries) != len(want) {
		t.Fatalf("expected %v, got %+v", want, entries)
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].Name, name)
		}
	}
}

func TestPrune(t *testing.T) {
	engine, _ := seedCache(t)

	removed, err := engine.Prune(12 * time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed files, got %d", removed)
	}

	entries, _ := engine.Entries()
	if len(entries) != 1 || entries[0].Name != "new.css" {
		t.Errorf("expected only new.css to remain, got %+v", entries)
	}
	assertFileContent(t, engine.fs, filepath.Join(testCachePath, "README"), []byte("keep me"))
}

func TestClear(t *testing.T) {
	engine, _ := seedCache(t)

	if err := engine.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ := engine.Stats()
	if stats.Entries != 0 {
		t.Errorf("expected an empty cache, got %+v", stats)
	}
	assertFileContent(t, engine.fs, filepath.Join(testCachePath, "README"), []byte("keep me"))
}
