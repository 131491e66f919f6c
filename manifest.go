package assetpack

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest lists the asset declarations of a site.
//
//	styles:
//	  - prod_file: site.css
//	    media: screen
//	    group: [base]
//	scripts:
//	  - dev_file: app.js
//	    prod_file: app.min.js
type Manifest struct {
	Styles  []Declaration `yaml:"styles"`
	Scripts []Declaration `yaml:"scripts"`
}

// LoadManifest reads a YAML asset manifest from fs.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML asset manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
