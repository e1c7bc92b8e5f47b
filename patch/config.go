// Package patch applies path-scoped arithmetic transformations to the
// numeric lookup tables of a parsed Liberty tree. It consumes the
// normalized config form; the YAML dialect with its shorthands is
// compiled into this form by the config package.
package patch

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
)

// Pattern is either a single glob (fnmatch semantics: *, ?, [...]) or a
// list of regular expressions matched by unanchored search. The dual
// semantics is deliberate: single-pattern configs stay ergonomic, lists
// are the escape hatch for regex disjunctions.
type Pattern struct {
	Glob    string
	Regexps []string
}

func (p *Pattern) IsZero() bool {
	return p == nil || (p.Glob == "" && len(p.Regexps) == 0)
}

func (p *Pattern) Match(value string) (bool, error) {
	if p == nil {
		return true, nil
	}
	if len(p.Regexps) > 0 {
		for _, expr := range p.Regexps {
			matched, err := regexp.MatchString(expr, value)
			if err != nil {
				return false, fmt.Errorf("bad pattern %q: %w", expr, err)
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	}
	matched, err := path.Match(p.Glob, value)
	if err != nil {
		return false, fmt.Errorf("bad pattern %q: %w", p.Glob, err)
	}
	return matched, nil
}

func (p Pattern) String() string {
	if len(p.Regexps) > 0 {
		return fmt.Sprintf("%v", p.Regexps)
	}
	return p.Glob
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Pattern{Glob: single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*p = Pattern{Regexps: many}
		return nil
	}
	return fmt.Errorf("pattern must be a string or a list of strings: %s", data)
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	if len(p.Regexps) > 0 {
		return json.Marshal(p.Regexps)
	}
	return json.Marshal(p.Glob)
}

// Selector matches direct child groups during one step of a path walk.
// All provided clauses must hold.
type Selector struct {
	// Group matches the group keyword (cell, pin, timing, ...).
	Group *Pattern `json:"group,omitempty"`
	// Name matches the first header argument (the instance name).
	Name *Pattern `json:"name,omitempty"`
	// Args matches the flattened argument tuple.
	Args *Pattern `json:"args,omitempty"`
	// Attributes requires the group to directly contain each key with a
	// flattened value matching the pattern.
	Attributes map[string]*Pattern `json:"attributes,omitempty"`
}

// Scope is an ordered selector path anchored at the document root.
type Scope struct {
	Path []Selector `json:"path"`
}

// ActionValue is a scalar or a full matrix operand.
type ActionValue struct {
	Scalar *float64
	Matrix [][]float64
}

func (v *ActionValue) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*v = ActionValue{Scalar: &scalar}
		return nil
	}
	var matrix [][]float64
	if err := json.Unmarshal(data, &matrix); err == nil {
		*v = ActionValue{Matrix: matrix}
		return nil
	}
	return fmt.Errorf("action value must be a number or a matrix: %s", data)
}

func (v ActionValue) MarshalJSON() ([]byte, error) {
	if v.Scalar != nil {
		return json.Marshal(*v.Scalar)
	}
	return json.Marshal(v.Matrix)
}

type Action struct {
	// Attribute selects which attribute key to rewrite; empty means the
	// canonical "values".
	Attribute string       `json:"attribute,omitempty"`
	Operation string       `json:"operation,omitempty"`
	Mode      string       `json:"mode,omitempty"`
	Value     *ActionValue `json:"value,omitempty"`
}

func (a Action) AttributeKey() string {
	if a.Attribute == "" {
		return "values"
	}
	return a.Attribute
}

type Modification struct {
	Scope  Scope  `json:"scope"`
	Action Action `json:"action"`
}

type ExpectedUnits struct {
	TimeUnit         string `json:"time_unit,omitempty"`
	VoltageUnit      string `json:"voltage_unit,omitempty"`
	LeakagePowerUnit string `json:"leakage_power_unit,omitempty"`
}

// Config is the normalized form accepted by the patch engine.
type Config struct {
	ExpectedUnits ExpectedUnits  `json:"expected_units,omitempty"`
	Modifications []Modification `json:"modifications"`
}
