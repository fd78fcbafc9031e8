package rules

import (
	"fmt"
	"sort"
)

type Type string

const (
	TypeGuardrail Type = "guardrail"
	TypeDomain    Type = "domain"
)

func (t Type) Valid() bool {
	switch t {
	case TypeGuardrail, TypeDomain:
		return true
	}
	return false
}

type Enforcement string

const (
	EnforcementBlock   Enforcement = "block"
	EnforcementSuggest Enforcement = "suggest"
	EnforcementWarn    Enforcement = "warn"
)

func (e Enforcement) Valid() bool {
	switch e {
	case EnforcementBlock, EnforcementSuggest, EnforcementWarn:
		return true
	}
	return false
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rule is a single skill declaration. Source is stamped by the merge step;
// whatever a file declares for it is discarded.
type Rule struct {
	Type           Type            `json:"type" yaml:"type"`
	Enforcement    Enforcement     `json:"enforcement" yaml:"enforcement"`
	Priority       Priority        `json:"priority" yaml:"priority"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	PromptTriggers *PromptTriggers `json:"promptTriggers,omitempty" yaml:"promptTriggers,omitempty"`
	Source         Tier            `json:"source,omitempty" yaml:"source,omitempty"`
}

type PromptTriggers struct {
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	IntentPatterns []string `json:"intentPatterns,omitempty" yaml:"intentPatterns,omitempty"`
}

// Document is the on-disk shape of a skill-rules.json file.
type Document struct {
	Version string          `json:"version" yaml:"version"`
	Skills  map[string]Rule `json:"skills" yaml:"skills"`
}

func (d *Document) validate() error {
	for name, r := range d.Skills {
		if !r.Type.Valid() {
			return fmt.Errorf("skill %q: unknown type %q", name, r.Type)
		}
		if !r.Enforcement.Valid() {
			return fmt.Errorf("skill %q: unknown enforcement %q", name, r.Enforcement)
		}
		if !r.Priority.Valid() {
			return fmt.Errorf("skill %q: unknown priority %q", name, r.Priority)
		}
	}
	return nil
}

// RuleSet is the merged view of every loaded document, keyed by skill name.
type RuleSet map[string]Rule

// Names returns the rule names in lexical order.
func (rs RuleSet) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
