package assetpack

import (
	"time"
)

// Session is one build pass over the cache directory. It holds the directory
// index scanned at its start and guarantees every bundle is regenerated at
// most once. A Session is not safe for concurrent use.
type Session struct {
	engine  *Engine
	index   *Index
	started time.Time

	bundles  map[string]*Bundle // bundles already built, by file name
	poisoned map[string]bool    // asset types disabled by a failed write, by extension
}

// Index returns the cache directory snapshot of the session.
func (s *Session) Index() *Index {
	return s.index
}

// Started returns the time the session was opened.
func (s *Session) Started() time.Time {
	return s.started
}

// NewAsset is a shortcut for Engine.NewAsset.
func (s *Session) NewAsset(kind Kind, decl Declaration) (*Asset, error) {
	return s.engine.NewAsset(kind, decl)
}

// Output is the result of building the style and script bundles of a session.
type Output struct {
	Styles  []Bundle
	Scripts []Bundle

	// StyleErr and ScriptErr hold the bundle failures of each type. With
	// legacy poisoning a non-nil error means the whole type is unavailable.
	StyleErr  error
	ScriptErr error
}

// StyleRefs returns the references to the style bundles.
func (o Output) StyleRefs(loc *time.Location) []Reference {
	return bundleRefs(o.Styles, loc)
}

// ScriptRefs returns the references to the script bundles.
func (o Output) ScriptRefs(loc *time.Location) []Reference {
	return bundleRefs(o.Scripts, loc)
}

func bundleRefs(bundles []Bundle, loc *time.Location) []Reference {
	refs := make([]Reference, 0, len(bundles))
	for _, b := range bundles {
		refs = append(refs, b.Reference(loc))
	}
	return refs
}

// Build combines styles and scripts into bundles. Failures are reported and
// recorded on the output; they never abort the other type.
func (s *Session) Build(styles, scripts []*Asset) Output {
	var out Output
	if len(styles) > 0 {
		out.Styles, out.StyleErr = s.BuildStyles(styles)
	}
	if len(scripts) > 0 {
		out.Scripts, out.ScriptErr = s.BuildScripts(scripts)
	}
	return out
}

// References returns one reference per valid asset, without combining them.
func (s *Session) References(assets []*Asset) []Reference {
	refs := make([]Reference, 0, len(assets))
	for _, a := range assets {
		if a == nil || !a.Valid() {
			continue
		}
		refs = append(refs, Reference{
			URL:       a.Src(),
			CacheBust: a.Version(),
			Media:     a.Media(),
		})
	}
	return refs
}
