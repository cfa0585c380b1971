package fileadapter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"archeli/contexts/routing-core/rule-engine/domain/entities"
	domainerrors "archeli/contexts/routing-core/rule-engine/domain/errors"
)

// Loader reads routing rules from a YAML file.
//
// On-disk schema:
//
//	rules:
//	  - id: route-text
//	    priority: 10
//	    enabled: true
//	    target: summarize        # or targets: [summarize, archive]
//	    when:
//	      all:
//	        - field: kind
//	          op: eq
//	          value: text
type Loader struct{}

type ruleFile struct {
	Rules []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	ID       string         `yaml:"id"`
	Priority int            `yaml:"priority"`
	Enabled  *bool          `yaml:"enabled"`
	Target   string         `yaml:"target"`
	Targets  []string       `yaml:"targets"`
	When     *predicateYAML `yaml:"when"`
}

type predicateYAML struct {
	All []predicateYAML `yaml:"all"`
	Any []predicateYAML `yaml:"any"`
	Not *predicateYAML  `yaml:"not"`

	Field string `yaml:"field"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

func (Loader) Load(path string) ([]entities.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domainerrors.ErrValidation, path, err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domainerrors.ErrValidation, path, err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("%w: %s declares no rules", domainerrors.ErrValidation, path)
	}

	seen := make(map[string]bool, len(file.Rules))
	rules := make([]entities.Rule, 0, len(file.Rules))
	for i, raw := range file.Rules {
		rule, err := raw.toEntity()
		if err != nil {
			return nil, fmt.Errorf("%w: rule[%d]: %v", domainerrors.ErrValidation, i, err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %q", domainerrors.ErrValidation, rule.ID)
		}
		seen[rule.ID] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r ruleYAML) toEntity() (entities.Rule, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return entities.Rule{}, fmt.Errorf("id is required")
	}

	targets := make([]string, 0, len(r.Targets)+1)
	if trimmed := strings.TrimSpace(r.Target); trimmed != "" {
		targets = append(targets, trimmed)
	}
	for _, target := range r.Targets {
		if trimmed := strings.TrimSpace(target); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	if len(targets) == 0 {
		return entities.Rule{}, fmt.Errorf("rule %q requires a target", id)
	}

	if r.When == nil {
		return entities.Rule{}, fmt.Errorf("rule %q requires a when predicate", id)
	}
	predicate := r.When.toEntity()
	if err := predicate.Validate(); err != nil {
		return entities.Rule{}, fmt.Errorf("rule %q: %v", id, err)
	}

	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	return entities.Rule{
		ID:        id,
		Priority:  r.Priority,
		Targets:   targets,
		Enabled:   enabled,
		Predicate: predicate,
	}, nil
}

func (p predicateYAML) toEntity() entities.Predicate {
	out := entities.Predicate{
		Field: strings.TrimSpace(p.Field),
		Op:    strings.TrimSpace(p.Op),
		Value: p.Value,
	}
	for _, child := range p.All {
		out.All = append(out.All, child.toEntity())
	}
	for _, child := range p.Any {
		out.Any = append(out.Any, child.toEntity())
	}
	if p.Not != nil {
		not := p.Not.toEntity()
		out.Not = &not
	}
	return out
}
