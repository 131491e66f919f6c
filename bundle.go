package assetpack

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Bundle describes a combined cache file built from several assets.
type Bundle struct {
	Name           string // file name inside the cache directory
	Path           string
	URL            string
	Ext            string
	Media          string    // media group of a style bundle; empty for scripts
	Members        []string  // member names, in combination order
	NewestModified time.Time // newest member modification time

	// Digest is the xxHash of the combined bytes. It is only known when the
	// bundle was written this session or is content-addressed.
	Digest      string
	Regenerated bool
}

// Reference returns the reference consumers embed for the bundle.
func (b Bundle) Reference(loc *time.Location) Reference {
	return Reference{
		URL:       b.URL,
		CacheBust: dateToken(b.NewestModified, loc),
		Media:     b.Media,
	}
}

// BundleName returns the name of the bundle combining members in the given
// order: the hex hash of the concatenated member names plus the extension.
// Reordering the same members yields a different name.
func (e *Engine) BundleName(ext string, members []string) string {
	return memberHash(e.newHash(), members) + "." + ext
}

// group is an ordered set of assets keyed by name. Adding an asset whose name
// is already present replaces it in place.
type group struct {
	media   string
	members []*Asset
	pos     map[string]int
}

func newGroup(media string) *group {
	return &group{media: media, pos: make(map[string]int)}
}

func (g *group) add(a *Asset) {
	if i, ok := g.pos[a.Name()]; ok {
		g.members[i] = a
		return
	}
	g.pos[a.Name()] = len(g.members)
	g.members = append(g.members, a)
}

func (g *group) names() []string {
	names := make([]string, len(g.members))
	for i, m := range g.members {
		names[i] = m.Name()
	}
	return names
}

// groupByMedia partitions valid styles by media, in order of first appearance.
func groupByMedia(assets []*Asset) []*group {
	var groups []*group
	byMedia := make(map[string]*group)
	for _, a := range assets {
		if a == nil || !a.Valid() {
			continue
		}
		media := a.Media()
		if media == "" {
			media = DefaultMedia
		}
		g, ok := byMedia[media]
		if !ok {
			g = newGroup(media)
			byMedia[media] = g
			groups = append(groups, g)
		}
		g.add(a)
	}
	return groups
}

// BuildStyles builds one bundle per media group. A group whose bundle cannot
// be written is dropped and its error returned; with legacy poisoning the
// whole style output is dropped for the rest of the session instead.
func (s *Session) BuildStyles(assets []*Asset) ([]Bundle, error) {
	return s.buildGroups(StyleExt, groupByMedia(assets))
}

// BuildScripts builds a single bundle from all valid scripts.
func (s *Session) BuildScripts(assets []*Asset) ([]Bundle, error) {
	g := newGroup("")
	for _, a := range assets {
		if a == nil || !a.Valid() {
			continue
		}
		g.add(a)
	}
	return s.buildGroups(ScriptExt, []*group{g})
}

func (s *Session) buildGroups(ext string, groups []*group) ([]Bundle, error) {
	var (
		bundles []Bundle
		errs    []error
	)
	for _, g := range groups {
		if len(g.members) == 0 {
			continue
		}
		b, err := s.buildGroup(ext, g)
		if err != nil {
			errs = append(errs, err)
			if s.engine.legacyPoisoning {
				s.poison(ext)
			}
			continue
		}
		bundles = append(bundles, *b)
	}

	err := errors.Join(errs...)
	if s.poisoned[ext] {
		if err == nil {
			err = fmt.Errorf("%s bundles disabled by an earlier write failure", ext)
		}
		return nil, err
	}
	return bundles, err
}

func (s *Session) poison(ext string) {
	if s.poisoned == nil {
		s.poisoned = make(map[string]bool)
	}
	s.poisoned[ext] = true
}

// buildGroup returns the bundle for g, writing it when it is missing or older
// than its newest member.
func (s *Session) buildGroup(ext string, g *group) (*Bundle, error) {
	e := s.engine
	b := &Bundle{
		Ext:            ext,
		Media:          g.media,
		Members:        g.names(),
		NewestModified: newestModified(g.members),
	}

	if e.contentAddressed {
		return s.buildContentAddressed(b, g)
	}

	b.Name = e.BundleName(ext, b.Members)
	if built, ok := s.bundles[b.Name]; ok {
		return built, nil
	}
	b.Path = e.cfg.cacheFile(b.Name)
	b.URL = e.cfg.cacheFileURL(b.Name)

	if !s.bundleStale(b, g) {
		e.logger.Debugf("bundle %s is fresh", b.Name)
		s.bundles[b.Name] = b
		return b, nil
	}

	data := combine(s.gather(g.members))
	if err := s.writeBundle(b, data); err != nil {
		return nil, err
	}
	s.bundles[b.Name] = b
	return b, nil
}

// buildContentAddressed gathers the member contents first and names the
// bundle after them. An existing file with that name already holds the same
// bytes and is kept.
func (s *Session) buildContentAddressed(b *Bundle, g *group) (*Bundle, error) {
	e := s.engine
	data := combine(s.gather(g.members))
	sum, err := digest(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b.Digest = sum
	b.Name = sum + "." + b.Ext
	b.Path = e.cfg.cacheFile(b.Name)
	b.URL = e.cfg.cacheFileURL(b.Name)

	if built, ok := s.bundles[b.Name]; ok {
		return built, nil
	}
	if _, ok := s.index.Lookup(b.Name, b.Ext); ok {
		s.bundles[b.Name] = b
		return b, nil
	}
	if err := s.writeBundle(b, data); err != nil {
		return nil, err
	}
	s.bundles[b.Name] = b
	return b, nil
}

// bundleStale reports whether the bundle file is absent from the index or
// older than its newest member. Forced remote fetches make bundles with a
// remote member stale.
func (s *Session) bundleStale(b *Bundle, g *group) bool {
	entry, ok := s.index.Lookup(b.Name, b.Ext)
	if !ok {
		return true
	}
	if s.engine.cfg.ForceRemoteFetch {
		for _, m := range g.members {
			if m.active().Remote {
				return true
			}
		}
	}
	return b.NewestModified.After(entry.ModifiedAt)
}

func (s *Session) writeBundle(b *Bundle, data []byte) error {
	e := s.engine
	if err := e.writeCacheFile(b.Path, data); err != nil {
		e.report(Failure{Op: "write", Asset: b.Name, Ref: b.Path, Err: err})
		return err
	}
	if b.Digest == "" {
		if sum, err := digest(bytes.NewReader(data)); err == nil {
			b.Digest = sum
		}
	}
	b.Regenerated = true
	e.logger.Debugf("regenerated bundle %s from %d members", b.Name, len(b.Members))
	return nil
}

// gather fetches the content of every member, a bounded number at a time.
// Members that fail are left nil; the failure has already been reported.
func (s *Session) gather(members []*Asset) [][]byte {
	contents := make([][]byte, len(members))

	var g errgroup.Group
	g.SetLimit(s.engine.cfg.FetchConcurrency)
	for i, m := range members {
		g.Go(func() error {
			data, err := m.Content()
			if err != nil {
				return nil
			}
			contents[i] = data
			return nil
		})
	}
	_ = g.Wait()
	return contents
}

// combine concatenates contents in order, skipping missing ones.
func combine(contents [][]byte) []byte {
	var buf bytes.Buffer
	for _, c := range contents {
		if c == nil {
			continue
		}
		buf.Write(c)
	}
	return buf.Bytes()
}

// newestModified returns the newest active-variant modification time of the
// members, starting from the epoch. Members without one are ignored.
func newestModified(members []*Asset) time.Time {
	newest := epoch
	for _, m := range members {
		t, ok := m.ModifiedAt(m.ActiveStage()).Get()
		if !ok {
			continue
		}
		if t.After(newest) {
			newest = t
		}
	}
	return newest
}
