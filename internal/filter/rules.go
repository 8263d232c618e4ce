package filter

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/paulmach/osm"
	"gopkg.in/yaml.v3"
)

// Rules is the declarative form of a filter as written in YAML rule files.
// All present sections must hold for an element to match.
type Rules struct {
	// Kinds restricts element types: node, way, relation
	Kinds []string `yaml:"kinds,omitempty"`
	// RequireAny specifies that at least one of these tags must be present
	RequireAny []string `yaml:"require_any,omitempty"`
	// Include specifies tag keys/values of which at least one must match.
	// An empty value list or "*" accepts any value.
	Include map[string][]string `yaml:"include,omitempty"`
	// Exclude specifies tag keys/values that reject the element.
	// An empty value list or "*" rejects any value.
	Exclude map[string][]string `yaml:"exclude,omitempty"`
	// SplitMatch requires every semicolon separated value of the key to
	// match the regular expression
	SplitMatch map[string]string `yaml:"split_match,omitempty"`
	// Lua is the body of a function receiving the element as `object` and
	// returning whether it matches. It runs after every other section.
	Lua string `yaml:"lua,omitempty"`

	name string
}

// RuleSet is a named collection of rules, in file order.
type RuleSet struct {
	Names []string
	Rules map[string]*Rules
}

// LoadRuleSet loads named rules from a YAML file whose top level maps
// names to rules.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet parses named rules from YAML.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	set := &RuleSet{Rules: make(map[string]*Rules)}
	if len(doc.Content) == 0 {
		return set, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("rules file must map names to rules")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var r Rules
		if err := root.Content[i+1].Decode(&r); err != nil {
			return nil, fmt.Errorf("rules %q: %w", name, err)
		}
		if _, dup := set.Rules[name]; dup {
			return nil, fmt.Errorf("rules %q defined twice", name)
		}
		r.name = name
		set.Names = append(set.Names, name)
		set.Rules[name] = &r
	}
	return set, nil
}

// Filters compiles every rule set entry, in file order.
func (s *RuleSet) Filters() ([]Filter, error) {
	filters := make([]Filter, 0, len(s.Names))
	for _, name := range s.Names {
		f, err := s.Rules[name].Filter()
		if err != nil {
			return nil, fmt.Errorf("rules %q: %w", name, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// Filter compiles the rules.
func (r *Rules) Filter() (Filter, error) {
	var parts []Filter

	if len(r.Kinds) > 0 {
		var kinds Kinds
		for _, k := range r.Kinds {
			kind := KindOf(osm.Type(k))
			if kind == 0 {
				return Filter{}, fmt.Errorf("unknown element kind %q", k)
			}
			kinds |= kind
		}
		parts = append(parts, OfKinds(kinds))
	}

	if len(r.RequireAny) > 0 {
		parts = append(parts, HasAnyTag(r.RequireAny...))
	}

	if len(r.Include) > 0 {
		var include []Filter
		for _, key := range sortedKeys(r.Include) {
			include = append(include, tagRule(key, r.Include[key]))
		}
		parts = append(parts, Or(include...))
	}

	for _, key := range sortedKeys(r.Exclude) {
		parts = append(parts, Not(tagRule(key, r.Exclude[key])))
	}

	keys := make([]string, 0, len(r.SplitMatch))
	for k := range r.SplitMatch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		re, err := regexp.Compile(r.SplitMatch[key])
		if err != nil {
			return Filter{}, fmt.Errorf("split_match %q: %w", key, err)
		}
		parts = append(parts, SplitValuesMatch(key, re))
	}

	if r.Lua != "" {
		name := r.name
		if name == "" {
			name = "rule"
		}
		f, err := Lua(name, r.Lua)
		if err != nil {
			return Filter{}, err
		}
		parts = append(parts, f)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return And(parts...), nil
}

func tagRule(key string, values []string) Filter {
	if len(values) == 0 {
		return HasTag(key)
	}
	for _, v := range values {
		if v == "*" {
			return HasTag(key)
		}
	}
	return HasValue(key, values...)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
