package assetpack

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Declaration describes one asset as the caller registers it.
// At least one of DevFile and ProdFile must be set.
type Declaration struct {
	Name       string     `yaml:"name"`
	DevFile    string     `yaml:"dev_file"`
	ProdFile   string     `yaml:"prod_file"`
	Media      string     `yaml:"media"` // styles only
	Groups     StringList `yaml:"groups"`
	Group      StringList `yaml:"group"` // alias of Groups
	Requires   StringList `yaml:"requires"`
	Cacheable  *bool      `yaml:"cacheable"`   // defaults to true
	MinifyAble *bool      `yaml:"minify_able"` // defaults to true
}

// StringList is a list of strings that may also be written as a single
// scalar in YAML.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Bool returns a pointer to b, for the optional flags of a Declaration.
func Bool(b bool) *bool {
	return &b
}
