// Package customtype wraps user-authored schema types: a declared
// schema.org type, the conditions under which it joins a page's graph, and
// the property template that fills it in.
package customtype

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/schemagraph/internal/conditions"
	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/properties"
)

// File is the on-disk list of custom types.
type File struct {
	Version int          `yaml:"version" json:"version"`
	Types   []Definition `yaml:"types" json:"types" validate:"dive"`
}

// Definition is one authored custom type.
type Definition struct {
	ID         string                  `yaml:"id" json:"id" validate:"required"`
	Name       string                  `yaml:"name" json:"name"`
	Type       string                  `yaml:"type" json:"type" validate:"required"`
	Active     bool                    `yaml:"active" json:"active"`
	Conditions conditions.RuleSet      `yaml:"conditions" json:"conditions" validate:"dive,dive"`
	Properties *properties.Definitions `yaml:"properties" json:"properties"`
}

// LoadDefinitions reads and validates a YAML custom type file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom types file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse custom types YAML: %w", err)
	}

	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported custom types version: %d", f.Version)
	}

	if err := config.ValidateStruct(&f); err != nil {
		return nil, err
	}

	return f.Types, nil
}

// ParseJSON decodes and validates a single definition stored as JSON.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse custom type JSON: %w", err)
	}
	if err := config.ValidateStruct(&def); err != nil {
		return nil, err
	}
	return &def, nil
}
