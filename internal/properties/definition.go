// Package properties resolves user-authored property definitions against a
// page context into concrete graph values.
package properties

import (
	"gopkg.in/yaml.v3"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Definition is one node of a property template. Which fields are set
// decides how it resolves: versioned, looped, nested or leaf.
type Definition struct {
	Source          string       `yaml:"source,omitempty" json:"source,omitempty"`
	Value           string       `yaml:"value,omitempty" json:"value,omitempty"`
	Type            string       `yaml:"type,omitempty" json:"type,omitempty"`
	Properties      *Definitions `yaml:"properties,omitempty" json:"properties,omitempty"`
	ActiveVersion   string       `yaml:"active_version,omitempty" json:"activeVersion,omitempty"`
	Loop            string       `yaml:"loop,omitempty" json:"loop,omitempty"`
	RequiredInBlock bool         `yaml:"required_in_block,omitempty" json:"requiredInBlock,omitempty"`
}

// Definitions maps property keys to definitions in authored order.
type Definitions struct {
	m *orderedmap.OrderedMap[string, *Definition]
}

func NewDefinitions() *Definitions {
	return &Definitions{m: orderedmap.New[string, *Definition]()}
}

// Set adds def under key and returns d for chaining.
func (d *Definitions) Set(key string, def *Definition) *Definitions {
	d.init()
	d.m.Set(key, def)
	return d
}

func (d *Definitions) Get(key string) (*Definition, bool) {
	if d == nil || d.m == nil {
		return nil, false
	}
	return d.m.Get(key)
}

func (d *Definitions) Len() int {
	if d == nil || d.m == nil {
		return 0
	}
	return d.m.Len()
}

// Each calls fn for every entry in order.
func (d *Definitions) Each(fn func(key string, def *Definition)) {
	if d == nil || d.m == nil {
		return
	}
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (d *Definitions) init() {
	if d.m == nil {
		d.m = orderedmap.New[string, *Definition]()
	}
}

func (d *Definitions) UnmarshalYAML(n *yaml.Node) error {
	d.init()
	return d.m.UnmarshalYAML(n)
}

func (d *Definitions) MarshalYAML() (interface{}, error) {
	d.init()
	return d.m.MarshalYAML()
}

func (d *Definitions) UnmarshalJSON(b []byte) error {
	d.init()
	return d.m.UnmarshalJSON(b)
}

func (d *Definitions) MarshalJSON() ([]byte, error) {
	d.init()
	return d.m.MarshalJSON()
}

// Simple types name scalar formats rather than schema.org classes. A nested
// block declared with one of them gets no @type.
var simpleTypes = map[string]bool{
	"DateTime":    true,
	"Email":       true,
	"ImageObject": true,
	"ImageURL":    true,
	"Phone":       true,
	"Text":        true,
	"TextFull":    true,
	"URL":         true,
	"Dynamic":     true,
}

// IsSimpleType reports whether typ is one of the reserved scalar tags.
func IsSimpleType(typ string) bool {
	return simpleTypes[typ]
}
