package assetpack

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Stage selects one of the two source variants of an asset.
type Stage int

const (
	Dev Stage = iota
	Prod
)

func (s Stage) String() string {
	if s == Dev {
		return "dev"
	}
	return "prod"
}

// remotePattern matches "scheme://..." and protocol-relative "//..." references.
var remotePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*:)?//`)

// IsRemote reports whether ref points to a remote resource.
func IsRemote(ref string) bool {
	return remotePattern.MatchString(ref)
}

// Variant is one resolved source file of an asset.
type Variant struct {
	File   string // as declared
	Path   string // local path, or the reference itself when remote
	URL    string
	Remote bool

	modified ModTime
}

// Declared reports whether the variant was declared at all.
func (v *Variant) Declared() bool {
	return v.File != ""
}

// Asset is one logical style or script with dev and prod variants. Assets are
// built fresh for every session and are not safe for concurrent use.
type Asset struct {
	engine *Engine
	kind   Kind

	name       string
	dev        Variant
	prod       Variant
	media      string
	groups     []string
	requires   []string
	cacheable  bool
	minifyAble bool

	valid bool
	err   error

	cache slotState
}

// NewAsset builds an asset of the given kind from decl and validates it.
// Validation failures are reported and returned; the returned asset is then
// marked invalid and takes part in no further processing.
func (e *Engine) NewAsset(kind Kind, decl Declaration) (*Asset, error) {
	a := &Asset{
		engine:     e,
		kind:       kind,
		name:       decl.Name,
		dev:        Variant{File: strings.TrimSpace(decl.DevFile)},
		prod:       Variant{File: strings.TrimSpace(decl.ProdFile)},
		requires:   append([]string(nil), decl.Requires...),
		cacheable:  boolOr(decl.Cacheable, true),
		minifyAble: boolOr(decl.MinifyAble, true),
	}
	if a.name == "" {
		a.name = fileName(a.prod.File)
		if a.name == "" {
			a.name = fileName(a.dev.File)
		}
	}
	if isStyle(kind) {
		a.media = decl.Media
		if a.media == "" {
			a.media = DefaultMedia
		}
	}
	a.AddGroups(decl.Groups...)
	a.AddGroups(decl.Group...)

	if err := a.validate(); err != nil {
		a.err = err
		e.report(Failure{Op: "validate", Asset: a.name, Err: err})
		return a, err
	}
	a.valid = true
	return a, nil
}

// validate resolves both variants. It stops at the first problem.
func (a *Asset) validate() error {
	if !a.dev.Declared() && !a.prod.Declared() {
		return newValidationError(a.name, []error{ErrNoSource})
	}
	for _, v := range []*Variant{&a.dev, &a.prod} {
		if !v.Declared() {
			continue
		}
		if err := a.resolve(v); err != nil {
			return newValidationError(a.name, []error{err})
		}
	}
	return nil
}

// resolve fills in the path and URL of a declared variant, checking that a
// local file exists and can be read.
func (a *Asset) resolve(v *Variant) error {
	if IsRemote(v.File) {
		v.Remote = true
		v.Path = v.File
		v.URL = v.File
		return nil
	}

	cfg := &a.engine.cfg
	path := a.kind.ResolvePath(cfg, v.File)

	info, err := a.engine.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("could not find file at %s: %w", path, err)
		}
		return fmt.Errorf("could not stat file at %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}
	f, err := a.engine.fs.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	_ = f.Close()

	v.Path = path
	v.URL = a.kind.ResolveURL(cfg, v.File)
	return nil
}

// Name returns the asset name, derived from its file name when not declared.
func (a *Asset) Name() string { return a.name }

// Kind returns the kind the asset was built with.
func (a *Asset) Kind() Kind { return a.kind }

// Media returns the media attribute of a style; empty for scripts.
func (a *Asset) Media() string { return a.media }

// Valid reports whether the asset passed validation.
func (a *Asset) Valid() bool { return a.valid }

// Err returns the validation error of an invalid asset.
func (a *Asset) Err() error { return a.err }

// Cacheable reports whether single-asset cache files are kept for the asset.
func (a *Asset) Cacheable() bool { return a.cacheable }

// MinifyAble reports whether the asset may be served minified.
func (a *Asset) MinifyAble() bool { return a.minifyAble }

// Requires returns the declared, unresolved dependency names.
func (a *Asset) Requires() []string {
	return append([]string(nil), a.requires...)
}

// Groups returns the group labels of the asset.
func (a *Asset) Groups() []string {
	return append([]string(nil), a.groups...)
}

// InGroup reports whether the asset carries the label group.
func (a *Asset) InGroup(group string) bool {
	for _, g := range a.groups {
		if g == group {
			return true
		}
	}
	return false
}

// AddGroups adds labels to the asset, ignoring empty and duplicate ones.
func (a *Asset) AddGroups(groups ...string) {
	for _, g := range groups {
		if g == "" || a.InGroup(g) {
			continue
		}
		a.groups = append(a.groups, g)
	}
}

// Variant returns the resolved variant for stage.
func (a *Asset) Variant(stage Stage) Variant {
	return *a.variant(stage)
}

func (a *Asset) variant(stage Stage) *Variant {
	if stage == Dev {
		return &a.dev
	}
	return &a.prod
}

// ActiveStage returns the variant used in the configured mode, falling back
// to the other one when it is not declared.
func (a *Asset) ActiveStage() Stage {
	if a.engine.cfg.Dev {
		if a.dev.Declared() {
			return Dev
		}
		return Prod
	}
	if a.prod.Declared() {
		return Prod
	}
	return Dev
}

func (a *Asset) active() *Variant {
	return a.variant(a.ActiveStage())
}

// ModifiedAt returns the modification time of a variant: the file mtime for
// local files, the epoch for remote ones and Unavailable when the variant is
// not declared or cannot be stat'ed. The value is computed once.
func (a *Asset) ModifiedAt(stage Stage) ModTime {
	v := a.variant(stage)
	return v.modified.memo(func() ModTime {
		switch {
		case !v.Declared() || v.Path == "":
			return Unavailable()
		case v.Remote:
			return At(epoch)
		}
		info, err := a.engine.fs.Stat(v.Path)
		if err != nil {
			return Unavailable()
		}
		return At(info.ModTime())
	})
}

// Version returns the YYYYMMDD cache-bust token of the active variant.
// Remote variants always report 19700101.
func (a *Asset) Version() string {
	t, ok := a.ModifiedAt(a.ActiveStage()).Get()
	if !ok {
		t = epoch
	}
	return dateToken(t, a.engine.cfg.Location())
}

// Fetch returns the parsed content of the active variant, bypassing the
// single-asset cache. Failures are reported and returned as *FetchError.
func (a *Asset) Fetch() ([]byte, error) {
	if !a.valid {
		return nil, ErrInvalidAsset
	}

	ref, remote := a.source()
	raw, err := a.engine.fetcher.Fetch(ref, remote)
	if err != nil {
		a.engine.report(Failure{Op: "fetch", Asset: a.name, Ref: ref, Err: err})
		return nil, err
	}
	return a.kind.Parse(raw), nil
}

// source returns the reference to fetch the active variant from and whether
// it has to go over HTTP. Forcing remote fetches requests local files by URL.
func (a *Asset) source() (string, bool) {
	v := a.active()
	switch {
	case v.Remote:
		return v.Path, true
	case a.engine.cfg.ForceRemoteFetch:
		return v.URL, true
	}
	return v.Path, false
}

// Src returns the URL consumers should reference: the cached parsed (or
// minified) file when the asset is cacheable and its cache is usable, the
// active variant URL otherwise.
func (a *Asset) Src() string {
	if a.valid && a.cacheable {
		if err := a.ensureCache(); err == nil {
			slot := a.slot(a.wantMinified())
			if exists, _ := afero.Exists(a.engine.fs, slot.path); exists {
				return slot.url
			}
		}
	}
	return a.active().URL
}

// Content returns the content used when the asset is combined into a bundle:
// the cached variant when cacheable, the live parsed content otherwise.
func (a *Asset) Content() ([]byte, error) {
	if !a.valid {
		return nil, ErrInvalidAsset
	}
	if !a.cacheable {
		return a.Fetch()
	}
	return a.CachedContent(a.wantMinified())
}

// wantMinified reports whether the minified slot is the one served.
func (a *Asset) wantMinified() bool {
	return !a.engine.cfg.Dev && a.minifyAble
}

// fileName returns the last path segment of a declared file or URL.
func fileName(file string) string {
	if file == "" {
		return ""
	}
	if i := strings.IndexAny(file, "?#"); i >= 0 {
		file = file[:i]
	}
	file = strings.TrimRight(file, "/")
	if i := strings.LastIndex(file, "/"); i >= 0 {
		return file[i+1:]
	}
	return file
}
