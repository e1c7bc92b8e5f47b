// Package config compiles the YAML patch-config dialect into the
// normalized form the patch engine accepts, resolving the selector
// shorthands along the way. The normalized form round-trips through
// JSON.
package config

import (
	"encoding/json"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nordsil/libpatch/patch"
)

// CompilerError reports a malformed config: bad shorthand, conflicting
// aliases, an unparseable pattern.
type CompilerError struct {
	Message string
}

func (e CompilerError) Error() string {
	return "config: " + e.Message
}

// Compile parses the YAML dialect and normalizes it.
//
// Selector shorthands:
//   - "cell"                      -> {group: "cell"}
//   - {cell: "A*"}                -> {group: "cell", name: "A*"}
//   - {cell: {attributes: {...}}} -> {group: "cell", attributes: {...}}
//   - attrs is an alias for attributes (both present is an error)
//   - a scope given as a bare list is wrapped into {path: [...]}
//
// Pattern values follow the engine's dual semantics: a single string is
// a glob, a list is regex alternatives (validated here).
func Compile(yamlText []byte) (patch.Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(yamlText, &raw); err != nil {
		return patch.Config{}, CompilerError{Message: err.Error()}
	}
	config := patch.Config{
		ExpectedUnits: patch.ExpectedUnits{
			TimeUnit:         raw.ExpectedUnits.TimeUnit,
			VoltageUnit:      raw.ExpectedUnits.VoltageUnit,
			LeakagePowerUnit: raw.ExpectedUnits.LeakagePowerUnit,
		},
	}
	for i, modification := range raw.Modifications {
		compiled, err := compileModification(modification)
		if err != nil {
			return patch.Config{}, CompilerError{Message: fmt.Sprintf("modification %d: %s", i, err)}
		}
		config.Modifications = append(config.Modifications, compiled)
	}
	return config, nil
}

// CompileToJSON compiles and renders the normalized form as indented
// JSON, the exchange format of the compile-config subcommand.
func CompileToJSON(yamlText []byte) ([]byte, error) {
	config, err := Compile(yamlText)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(config, "", "  ")
}

// LoadNormalized parses an already-normalized JSON config.
func LoadNormalized(jsonText []byte) (patch.Config, error) {
	var config patch.Config
	if err := json.Unmarshal(jsonText, &config); err != nil {
		return patch.Config{}, CompilerError{Message: err.Error()}
	}
	return config, nil
}

type rawConfig struct {
	ExpectedUnits rawUnits          `yaml:"expected_units"`
	Modifications []rawModification `yaml:"modifications"`
}

type rawUnits struct {
	TimeUnit         string `yaml:"time_unit"`
	VoltageUnit      string `yaml:"voltage_unit"`
	LeakagePowerUnit string `yaml:"leakage_power_unit"`
}

type rawModification struct {
	Scope  yaml.Node `yaml:"scope"`
	Action rawAction `yaml:"action"`
}

type rawAction struct {
	Attribute string    `yaml:"attribute"`
	Operation string    `yaml:"operation"`
	Mode      string    `yaml:"mode"`
	Value     yaml.Node `yaml:"value"`
}

func compileModification(raw rawModification) (patch.Modification, error) {
	scope, err := compileScope(raw.Scope)
	if err != nil {
		return patch.Modification{}, err
	}
	action, err := compileAction(raw.Action)
	if err != nil {
		return patch.Modification{}, err
	}
	return patch.Modification{Scope: scope, Action: action}, nil
}

func compileScope(node yaml.Node) (patch.Scope, error) {
	switch node.Kind {
	case 0, yaml.ScalarNode:
		if node.Kind == 0 || node.Tag == "!!null" {
			return patch.Scope{}, nil
		}
		return patch.Scope{}, fmt.Errorf("scope must be a mapping or a path list")
	case yaml.SequenceNode:
		return compilePath(node.Content)
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			if node.Content[i].Value == "path" {
				value := node.Content[i+1]
				if value.Kind != yaml.SequenceNode {
					return patch.Scope{}, fmt.Errorf("scope path must be a list")
				}
				return compilePath(value.Content)
			}
		}
		return patch.Scope{}, fmt.Errorf("scope must include a path list")
	}
	return patch.Scope{}, fmt.Errorf("scope must be a mapping or a path list")
}

func compilePath(items []*yaml.Node) (patch.Scope, error) {
	var scope patch.Scope
	for i, item := range items {
		selector, err := compileSelector(item)
		if err != nil {
			return patch.Scope{}, fmt.Errorf("selector %d: %s", i, err)
		}
		scope.Path = append(scope.Path, selector)
	}
	return scope, nil
}

func compileSelector(node *yaml.Node) (patch.Selector, error) {
	if node.Kind == yaml.ScalarNode {
		pattern, err := compilePattern(node)
		if err != nil {
			return patch.Selector{}, err
		}
		return patch.Selector{Group: pattern}, nil
	}
	if node.Kind != yaml.MappingNode {
		return patch.Selector{}, fmt.Errorf("path selector must be a mapping or a string")
	}

	keys := mappingKeys(node)
	if !keys["group"] && len(node.Content) == 2 {
		// One-key shorthand: {cell: "A*"} or {cell: {attributes: ...}}.
		name := node.Content[0].Value
		value := node.Content[1]
		switch value.Kind {
		case yaml.MappingNode:
			selector, err := compileSelectorFields(value)
			if err != nil {
				return patch.Selector{}, err
			}
			selector.Group = &patch.Pattern{Glob: name}
			return selector, nil
		case yaml.ScalarNode:
			selector := patch.Selector{Group: &patch.Pattern{Glob: name}}
			if value.Tag != "!!null" {
				pattern, err := compilePattern(value)
				if err != nil {
					return patch.Selector{}, err
				}
				selector.Name = pattern
			}
			return selector, nil
		case yaml.SequenceNode:
			pattern, err := compilePattern(value)
			if err != nil {
				return patch.Selector{}, err
			}
			return patch.Selector{Group: &patch.Pattern{Glob: name}, Name: pattern}, nil
		}
		return patch.Selector{}, fmt.Errorf("bad selector shorthand for %q", name)
	}
	return compileSelectorFields(node)
}

func compileSelectorFields(node *yaml.Node) (patch.Selector, error) {
	keys := mappingKeys(node)
	if keys["attrs"] && keys["attributes"] {
		return patch.Selector{}, fmt.Errorf("selector cannot include both attrs and attributes")
	}
	var selector patch.Selector
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		switch key {
		case "group":
			pattern, err := compilePattern(value)
			if err != nil {
				return patch.Selector{}, err
			}
			selector.Group = pattern
		case "name":
			pattern, err := compilePattern(value)
			if err != nil {
				return patch.Selector{}, err
			}
			selector.Name = pattern
		case "args":
			pattern, err := compilePattern(value)
			if err != nil {
				return patch.Selector{}, err
			}
			selector.Args = pattern
		case "attributes", "attrs":
			attributes, err := compileAttributes(value)
			if err != nil {
				return patch.Selector{}, err
			}
			selector.Attributes = attributes
		default:
			return patch.Selector{}, fmt.Errorf("unknown selector key %q", key)
		}
	}
	return selector, nil
}

func compileAttributes(node *yaml.Node) (map[string]*patch.Pattern, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("attributes must be a mapping")
	}
	attributes := make(map[string]*patch.Pattern)
	for i := 0; i < len(node.Content); i += 2 {
		pattern, err := compilePattern(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		attributes[node.Content[i].Value] = pattern
	}
	return attributes, nil
}

func compilePattern(node *yaml.Node) (*patch.Pattern, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return &patch.Pattern{Glob: node.Value}, nil
	case yaml.SequenceNode:
		var alternatives []string
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("pattern list entries must be strings")
			}
			if _, err := regexp.Compile(item.Value); err != nil {
				return nil, fmt.Errorf("bad pattern %q: %s", item.Value, err)
			}
			alternatives = append(alternatives, item.Value)
		}
		return &patch.Pattern{Regexps: alternatives}, nil
	}
	return nil, fmt.Errorf("pattern must be a string or a list of strings")
}

func compileAction(raw rawAction) (patch.Action, error) {
	action := patch.Action{
		Attribute: raw.Attribute,
		Operation: raw.Operation,
		Mode:      raw.Mode,
	}
	if raw.Value.Kind == 0 {
		return action, nil
	}
	value, err := compileValue(&raw.Value)
	if err != nil {
		return patch.Action{}, err
	}
	action.Value = value
	return action, nil
}

func compileValue(node *yaml.Node) (*patch.ActionValue, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var scalar float64
		if err := node.Decode(&scalar); err != nil {
			return nil, fmt.Errorf("action value must be a number or a matrix")
		}
		return &patch.ActionValue{Scalar: &scalar}, nil
	case yaml.SequenceNode:
		var matrix [][]float64
		if err := node.Decode(&matrix); err != nil {
			return nil, fmt.Errorf("action value must be a number or a matrix")
		}
		return &patch.ActionValue{Matrix: matrix}, nil
	}
	return nil, fmt.Errorf("action value must be a number or a matrix")
}

func mappingKeys(node *yaml.Node) map[string]bool {
	keys := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}
	return keys
}
