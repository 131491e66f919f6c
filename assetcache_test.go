package assetpack

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestCacheSlotNames(t *testing.T) {
	cfg := testConfig()
	cfg.FilePrefix = "ap-"
	engine, fs, _ := setupTestEngine(t, cfg)
	createTestFile(t, fs, stylePath("site.css"), []byte("body{}"), t1)

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})

	if got := a.CachePath(false); got != testCachePath+"/ap-site.css.parsed.css" {
		t.Errorf("parsed path: got %s", got)
	}
	if got := a.CachePath(true); got != testCachePath+"/ap-site.css.parsed.min.css" {
		t.Errorf("minified path: got %s", got)
	}
	if got := a.CacheURL(true); got != "/cache/ap-site.css.parsed.min.css" {
		t.Errorf("minified url: got %s", got)
	}
}

func TestCachedContentWritesBothSlots(t *testing.T) {
	engine, fs, rec := setupTestEngine(t, testConfig())
	source := []byte("body { color: red; }")
	createTestFile(t, fs, stylePath("site.css"), source, t1)

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})

	content, err := a.Content()
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	assertBytesEqual(t, content, []byte("body{color:red;}\n"), "minified content")

	header := "/*\n" +
		"|--------------------------------------------------------------------------\n" +
		"| site.css\n" +
		"|--------------------------------------------------------------------------\n" +
		"| Last Modified : 2020 01 01\n" +
		"*/\n"
	assertFileContent(t, fs, a.CachePath(false), []byte(header+string(source)+"\n"))
	assertFileContent(t, fs, a.CachePath(true), []byte("body{color:red;}\n"))

	info, err := fs.Stat(a.CachePath(true))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("expected mode 0644, got %o", perm)
	}
	if ops := rec.ops(); len(ops) != 0 {
		t.Errorf("unexpected failures: %v", ops)
	}
}

func TestSlotStaleness(t *testing.T) {
	engine, fs, _ := setupTestEngine(t, testConfig())
	createTestFile(t, fs, stylePath("site.css"), []byte("body{}"), t2)

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})
	if !a.SlotStale(false) || !a.SlotStale(true) {
		t.Fatal("missing slots must be stale")
	}

	if _, err := a.Content(); err != nil {
		t.Fatal(err)
	}

	setModTime(t, fs, a.CachePath(false), t3)
	if a.SlotStale(false) {
		t.Error("slot newer than its source must be fresh")
	}

	setModTime(t, fs, a.CachePath(false), t2)
	if !a.SlotStale(false) {
		t.Error("slot as old as its source must be stale")
	}

	setModTime(t, fs, a.CachePath(false), t1)
	if !a.SlotStale(false) {
		t.Error("slot older than its source must be stale")
	}
}

func TestCacheRegenerationIsIdempotent(t *testing.T) {
	memFs := afero.NewMemMapFs()
	counter := &countingFetcher{next: NewFetcher(memFs, nil, 0)}
	engine, fs, _ := setupTestEngineOn(t, memFs, testConfig(), WithFetcher(counter))
	createTestFile(t, fs, stylePath("site.css"), []byte("body { }"), t1)

	first := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})
	if _, err := first.Content(); err != nil {
		t.Fatal(err)
	}
	// Slots are checked once per asset.
	if _, err := first.CachedContent(false); err != nil {
		t.Fatal(err)
	}
	if counter.local != 1 {
		t.Fatalf("expected 1 fetch, got %d", counter.local)
	}

	parsedAt := modTimeOf(t, fs, first.CachePath(false))

	second := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})
	if _, err := second.Content(); err != nil {
		t.Fatal(err)
	}
	if counter.local != 1 {
		t.Errorf("fresh slots must not be regenerated, got %d fetches", counter.local)
	}
	if got := modTimeOf(t, fs, first.CachePath(false)); !got.Equal(parsedAt) {
		t.Errorf("parsed slot was rewritten")
	}

	// Touching the source makes both slots stale again.
	setModTime(t, fs, stylePath("site.css"), fixedNowFunc().AddDate(10, 0, 0))
	third := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "site.css"})
	if _, err := third.Content(); err != nil {
		t.Fatal(err)
	}
	if counter.local != 2 {
		t.Errorf("expected a regeneration after the source changed, got %d fetches", counter.local)
	}
}

func TestRemoteCacheIsNotRefetched(t *testing.T) {
	memFs := afero.NewMemMapFs()
	remote := &countingFetcher{next: FetcherFunc(func(ref string, _ bool) ([]byte, error) {
		return []byte("remote { }"), nil
	})}
	decl := Declaration{ProdFile: "https://cdn.example.com/lib.css"}

	engine, fs, _ := setupTestEngineOn(t, memFs, testConfig(), WithFetcher(remote))
	a := newTestAsset(t, engine, testStyles(), decl)
	if _, err := a.Content(); err != nil {
		t.Fatal(err)
	}
	if remote.remote != 1 {
		t.Fatalf("expected 1 remote fetch, got %d", remote.remote)
	}

	// Remote sources report the epoch, so their slots stay fresh.
	setModTime(t, fs, a.CachePath(true), t1)
	b := newTestAsset(t, engine, testStyles(), decl)
	if _, err := b.Content(); err != nil {
		t.Fatal(err)
	}
	if remote.remote != 1 {
		t.Errorf("remote cache was refetched without force, got %d fetches", remote.remote)
	}

	cfg := testConfig()
	cfg.ForceRemoteFetch = true
	forced, _, _ := setupTestEngineOn(t, memFs, cfg, WithFetcher(remote))
	c := newTestAsset(t, forced, testStyles(), decl)
	if _, err := c.Content(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Content(); err != nil {
		t.Fatal(err)
	}
	if remote.remote != 2 {
		t.Errorf("forced remote fetch must refetch once per asset, got %d fetches", remote.remote)
	}
}

func TestForceRemoteFetchUsesURL(t *testing.T) {
	var refs []string
	fetcher := FetcherFunc(func(ref string, remote bool) ([]byte, error) {
		if !remote {
			t.Errorf("expected a remote fetch for %s", ref)
		}
		refs = append(refs, ref)
		return []byte("a{}"), nil
	})

	cfg := testConfig()
	cfg.ForceRemoteFetch = true
	engine, fs, _ := setupTestEngine(t, cfg, WithFetcher(fetcher))
	createTestFile(t, fs, stylePath("a.css"), []byte("a{}"), t1)

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "a.css", Cacheable: Bool(false)})
	if _, err := a.Content(); err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != "http://www.example.com/assets/css/a.css" {
		t.Errorf("expected the asset URL to be fetched, got %v", refs)
	}
}

func TestNonCacheableAsset(t *testing.T) {
	upper := func(b []byte) []byte { return bytes.ToUpper(b) }
	engine, fs, _ := setupTestEngine(t, testConfig())
	createTestFile(t, fs, scriptPath("app.js"), []byte("run()"), t1)

	a := newTestAsset(t, engine, Scripts(upper, compact), Declaration{
		ProdFile:  "app.js",
		Cacheable: Bool(false),
	})

	content, err := a.Content()
	if err != nil {
		t.Fatal(err)
	}
	assertBytesEqual(t, content, []byte("RUN()"), "parsed live content")
	assertFileMissing(t, fs, a.CachePath(false))
	assertFileMissing(t, fs, a.CachePath(true))
}

func TestDevModeServesParsedSlot(t *testing.T) {
	cfg := testConfig()
	cfg.Dev = true
	engine, fs, _ := setupTestEngine(t, cfg)
	createTestFile(t, fs, scriptPath("app.js"), []byte("run( )"), t1)

	a := newTestAsset(t, engine, testScripts(), Declaration{DevFile: "app.js"})
	content, err := a.Content()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "/*\n") || !strings.HasSuffix(string(content), "run( )\n") {
		t.Errorf("expected the parsed slot with its header, got %q", content)
	}
}

func TestMinifyFailureFallsBack(t *testing.T) {
	broken := func([]byte) ([]byte, error) { return nil, errors.New("minifier crashed") }
	engine, fs, rec := setupTestEngine(t, testConfig())
	createTestFile(t, fs, stylePath("a.css"), []byte("a { }"), t1)

	a := newTestAsset(t, engine, Styles(nil, broken), Declaration{ProdFile: "a.css"})
	content, err := a.Content()
	if err != nil {
		t.Fatal(err)
	}
	assertBytesEqual(t, content, []byte("a { }\n"), "unminified content")
	if rec.count("minify") != 1 {
		t.Errorf("expected a minify failure, got %v", rec.ops())
	}
}

func TestCacheWriteFailureFallsBack(t *testing.T) {
	memFs := &failingFs{
		Fs:   afero.NewMemMapFs(),
		fail: func(name string) bool { return strings.HasPrefix(name, testCachePath+"/") },
	}
	engine, fs, rec := setupTestEngineOn(t, memFs, testConfig())
	createTestFile(t, fs, stylePath("a.css"), []byte("a { }"), t1)

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "a.css"})
	content, err := a.Content()
	if err != nil {
		t.Fatalf("expected content despite the write failure, got %v", err)
	}
	assertBytesEqual(t, content, []byte("a{}\n"), "produced content")

	var we *WriteError
	if len(rec.failures) != 1 || !errors.As(rec.failures[0].Err, &we) {
		t.Errorf("expected one write failure, got %v", rec.ops())
	}

	// The parsed slot was never written; its content is fetched live.
	parsed, err := a.CachedContent(false)
	if err != nil {
		t.Fatal(err)
	}
	assertBytesEqual(t, parsed, []byte("a { }"), "live content")
}

func TestFetchFailureIsReturned(t *testing.T) {
	fetcher := FetcherFunc(func(ref string, remote bool) ([]byte, error) {
		return nil, &FetchError{Ref: ref, Remote: remote, Status: 503, Err: ErrBadStatus}
	})
	engine, fs, rec := setupTestEngine(t, testConfig(), WithFetcher(fetcher))

	a := newTestAsset(t, engine, testStyles(), Declaration{ProdFile: "https://cdn.example.com/down.css"})
	if _, err := a.Content(); !errors.Is(err, ErrBadStatus) {
		t.Fatalf("expected ErrBadStatus, got %v", err)
	}
	if rec.count("fetch") != 1 {
		t.Errorf("expected one fetch failure, got %v", rec.ops())
	}
	assertFileMissing(t, fs, a.CachePath(true))
	assertFileMissing(t, fs, a.CachePath(false))
}

func TestDevSlotsDoNotLeakIntoProd(t *testing.T) {
	memFs := afero.NewMemMapFs()
	decl := Declaration{DevFile: "app.js", ProdFile: "app.min.js"}

	devCfg := testConfig()
	devCfg.Dev = true
	devEngine, fs, _ := setupTestEngineOn(t, memFs, devCfg)
	createTestFile(t, fs, scriptPath("app.js"), []byte("var dev = 1;"), t1)
	createTestFile(t, fs, scriptPath("app.min.js"), []byte("var prod = 1;"), t1)

	dev := newTestAsset(t, devEngine, testScripts(), decl)
	if got := dev.CachePath(false); got != testCachePath+"/app.min.js.dev.parsed.js" {
		t.Errorf("dev parsed path: got %s", got)
	}
	content, err := dev.Content()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(content), "var dev = 1;\n") {
		t.Errorf("dev session served %q", content)
	}

	prodEngine, _, _ := setupTestEngineOn(t, memFs, testConfig())
	prod := newTestAsset(t, prodEngine, testScripts(), decl)
	if got := prod.CachePath(true); got != testCachePath+"/app.min.js.parsed.min.js" {
		t.Errorf("prod minified path: got %s", got)
	}
	content, err = prod.Content()
	if err != nil {
		t.Fatal(err)
	}
	assertBytesEqual(t, content, []byte("varprod=1;\n"), "prod content after a dev build")

	// A dev-only asset has a single source and keeps the plain slot names.
	only := newTestAsset(t, devEngine, testScripts(), Declaration{DevFile: "app.js"})
	if got := only.CachePath(false); got != testCachePath+"/app.js.parsed.js" {
		t.Errorf("dev-only parsed path: got %s", got)
	}
}
