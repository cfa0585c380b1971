package entities

import (
	"fmt"
	"strings"
)

const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpLt       = "lt"
	OpLte      = "lte"
	OpGt       = "gt"
	OpGte      = "gte"
	OpIn       = "in"
	OpContains = "contains"
	OpPrefix   = "prefix"
	OpExists   = "exists"
)

// Predicate is a tagged expression tree over work item fields.
// Exactly one of All / Any / Not / leaf (Field+Op) is set per node.
type Predicate struct {
	All []Predicate
	Any []Predicate
	Not *Predicate

	Field string
	Op    string
	Value any
}

func (p Predicate) Validate() error {
	forms := 0
	if len(p.All) > 0 {
		forms++
	}
	if len(p.Any) > 0 {
		forms++
	}
	if p.Not != nil {
		forms++
	}
	if p.Field != "" || p.Op != "" {
		forms++
	}
	if forms != 1 {
		return fmt.Errorf("predicate node must be exactly one of all/any/not/leaf")
	}

	switch {
	case len(p.All) > 0:
		for i, child := range p.All {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("all[%d]: %w", i, err)
			}
		}
	case len(p.Any) > 0:
		for i, child := range p.Any {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("any[%d]: %w", i, err)
			}
		}
	case p.Not != nil:
		if err := p.Not.Validate(); err != nil {
			return fmt.Errorf("not: %w", err)
		}
	default:
		if strings.TrimSpace(p.Field) == "" {
			return fmt.Errorf("leaf predicate requires a field")
		}
		switch p.Op {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpContains, OpPrefix:
			if p.Value == nil {
				return fmt.Errorf("op %q on field %q requires a value", p.Op, p.Field)
			}
		case OpIn:
			if _, ok := p.Value.([]any); !ok {
				return fmt.Errorf("op in on field %q requires a list value", p.Field)
			}
		case OpExists:
		default:
			return fmt.Errorf("unknown op %q on field %q", p.Op, p.Field)
		}
	}
	return nil
}

// LeafCount is the predicate's specificity, used as the match score.
func (p Predicate) LeafCount() int {
	switch {
	case len(p.All) > 0:
		total := 0
		for _, child := range p.All {
			total += child.LeafCount()
		}
		return total
	case len(p.Any) > 0:
		total := 0
		for _, child := range p.Any {
			total += child.LeafCount()
		}
		return total
	case p.Not != nil:
		return p.Not.LeafCount()
	default:
		return 1
	}
}

// Eval interprets the predicate against a work item document.
// Evaluation is pure: absent fields resolve to a sentinel that satisfies no
// comparison, so unknown field references never fire and never fail.
func (p Predicate) Eval(doc map[string]any) bool {
	switch {
	case len(p.All) > 0:
		for _, child := range p.All {
			if !child.Eval(doc) {
				return false
			}
		}
		return true
	case len(p.Any) > 0:
		for _, child := range p.Any {
			if child.Eval(doc) {
				return true
			}
		}
		return false
	case p.Not != nil:
		return !p.Not.Eval(doc)
	}

	value, ok := resolvePath(doc, p.Field)
	if p.Op == OpExists {
		return ok
	}
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return equalValues(value, p.Value)
	case OpNe:
		return !equalValues(value, p.Value)
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(value, p.Value, p.Op)
	case OpIn:
		list, ok := p.Value.([]any)
		if !ok {
			return false
		}
		for _, candidate := range list {
			if equalValues(value, candidate) {
				return true
			}
		}
		return false
	case OpContains:
		return containsValue(value, p.Value)
	case OpPrefix:
		field, fok := asString(value)
		prefix, pok := asString(p.Value)
		return fok && pok && strings.HasPrefix(field, prefix)
	default:
		return false
	}
}

func resolvePath(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func equalValues(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
		return false
	}
	if sa, ok := asString(a); ok {
		sb, ok := asString(b)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return false
}

func compareOrdered(a, b any, op string) bool {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return false
		}
		return orderedHolds(fa < fb, fa == fb, op)
	}
	sa, ok := asString(a)
	if !ok {
		return false
	}
	sb, ok := asString(b)
	if !ok {
		return false
	}
	return orderedHolds(sa < sb, sa == sb, op)
}

func orderedHolds(less, equal bool, op string) bool {
	switch op {
	case OpLt:
		return less
	case OpLte:
		return less || equal
	case OpGt:
		return !less && !equal
	case OpGte:
		return !less
	default:
		return false
	}
}

func containsValue(field, value any) bool {
	if s, ok := asString(field); ok {
		sub, ok := asString(value)
		return ok && strings.Contains(s, sub)
	}
	if list, ok := field.([]any); ok {
		for _, element := range list {
			if equalValues(element, value) {
				return true
			}
		}
	}
	return false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
