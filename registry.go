package assetpack

import "errors"

// Registry keeps the declared styles and scripts of a build in declaration
// order. Invalid declarations are reported and kept out of the registry.
type Registry struct {
	engine  *Engine
	styles  Kind
	scripts Kind

	styleAssets  []*Asset
	scriptAssets []*Asset
}

// NewRegistry returns an empty registry building styles and scripts with the
// given kinds.
func (e *Engine) NewRegistry(styles, scripts Kind) *Registry {
	return &Registry{engine: e, styles: styles, scripts: scripts}
}

// AddStyle declares a style.
func (r *Registry) AddStyle(decl Declaration) (*Asset, error) {
	a, err := r.engine.NewAsset(r.styles, decl)
	if err != nil {
		return nil, err
	}
	r.styleAssets = append(r.styleAssets, a)
	return a, nil
}

// AddScript declares a script.
func (r *Registry) AddScript(decl Declaration) (*Asset, error) {
	a, err := r.engine.NewAsset(r.scripts, decl)
	if err != nil {
		return nil, err
	}
	r.scriptAssets = append(r.scriptAssets, a)
	return a, nil
}

// Add declares every style and script of m. Invalid declarations are skipped;
// their errors are joined into the returned error.
func (r *Registry) Add(m *Manifest) error {
	var errs []error
	for _, decl := range m.Styles {
		if _, err := r.AddStyle(decl); err != nil {
			errs = append(errs, err)
		}
	}
	for _, decl := range m.Scripts {
		if _, err := r.AddScript(decl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Styles returns the registered styles.
func (r *Registry) Styles() []*Asset {
	return append([]*Asset(nil), r.styleAssets...)
}

// Scripts returns the registered scripts.
func (r *Registry) Scripts() []*Asset {
	return append([]*Asset(nil), r.scriptAssets...)
}

// Group returns the styles and scripts labeled with group, in order. An empty
// group selects everything.
func (r *Registry) Group(group string) (styles, scripts []*Asset) {
	return inGroup(r.styleAssets, group), inGroup(r.scriptAssets, group)
}

func inGroup(assets []*Asset, group string) []*Asset {
	var out []*Asset
	for _, a := range assets {
		if group == "" || a.InGroup(group) {
			out = append(out, a)
		}
	}
	return out
}
