// Package schema declares, per source, the legal query parameters and their
// value domains, and validates caller-supplied parameters before any network
// access. Schemas are immutable once built and safe for concurrent reads.
package schema

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
)

// Param describes one query parameter accepted by a source.
type Param struct {
	// Name is the caller-facing parameter name, e.g. "start_period".
	Name string
	// Query is the provider's query-string key, e.g. "startPeriod".
	Query string
	// Required marks parameters that must be present on every request.
	Required bool
	// Allowed enumerates the legal values. Nil means unconstrained.
	Allowed []string
	// Pattern optionally constrains the value by regular expression. Ignored
	// when Allowed is set.
	Pattern string
	// Description is shown by parameter discovery.
	Description string
}

// Schema is an ordered set of parameter declarations for one source.
type Schema struct {
	params   []Param
	index    map[string]int
	patterns map[string]*regexp.Regexp
}

// New builds a schema from parameter declarations. Declaration order is
// preserved for discovery. Duplicate names, empty names, and invalid patterns
// are construction errors so a malformed source definition surfaces at
// registration time rather than on first use.
func New(params ...Param) (*Schema, error) {
	s := &Schema{
		index:    make(map[string]int, len(params)),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter name cannot be empty")
		}
		if _, ok := s.index[p.Name]; ok {
			return nil, fmt.Errorf("duplicate parameter: %s", p.Name)
		}
		if p.Query == "" {
			p.Query = p.Name
		}
		if p.Pattern != "" && p.Allowed == nil {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern for parameter %s: %w", p.Name, err)
			}
			s.patterns[p.Name] = re
		}
		s.index[p.Name] = len(s.params)
		s.params = append(s.params, p)
	}
	return s, nil
}

// Params returns the declarations in declaration order.
func (s *Schema) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Lookup returns the declaration for a parameter name.
func (s *Schema) Lookup(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// Validate checks a parameter mapping against the schema. It reports the
// first failure: an unknown name, a value outside its declared domain, or a
// missing required parameter. Unknown names are checked in sorted order and
// required parameters in declaration order so failures are deterministic.
func (s *Schema) Validate(values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		i, ok := s.index[name]
		if !ok {
			return &UnknownParameterError{Name: name}
		}
		p := s.params[i]
		value := values[name]
		if p.Allowed != nil {
			if !slices.Contains(p.Allowed, value) {
				return &InvalidValueError{Name: name, Value: value, Allowed: p.Allowed}
			}
			continue
		}
		if re, ok := s.patterns[name]; ok && !re.MatchString(value) {
			return &InvalidValueError{Name: name, Value: value, Reason: "does not match " + p.Pattern}
		}
	}

	for _, p := range s.params {
		if !p.Required {
			continue
		}
		if _, ok := values[p.Name]; !ok {
			return &MissingRequiredParameterError{Name: p.Name}
		}
	}
	return nil
}
