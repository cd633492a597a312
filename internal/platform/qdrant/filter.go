package qdrant

import (
	"fmt"
	"strings"
)

// Filter mirrors the Qdrant boolean filter object. Empty clauses are omitted on the wire.
type Filter struct {
	Must    []Condition `json:"must,omitempty"`
	Should  []Condition `json:"should,omitempty"`
	MustNot []Condition `json:"must_not,omitempty"`
}

// Condition is a payload field condition. Exactly one of Match or MatchAny is set.
type Condition struct {
	Key   string `json:"key"`
	Match *Match `json:"match,omitempty"`
}

type Match struct {
	Value any   `json:"value,omitempty"`
	Any   []any `json:"any,omitempty"`
}

// MatchValue builds an exact keyword/integer/bool match on a payload key.
func MatchValue(key string, value any) Condition {
	return Condition{Key: key, Match: &Match{Value: value}}
}

// MatchAny builds a match against any of the given values.
func MatchAny(key string, values ...any) Condition {
	return Condition{Key: key, Match: &Match{Any: values}}
}

func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.Should) == 0 && len(f.MustNot) == 0)
}

func (f *Filter) validate() error {
	if f == nil {
		return nil
	}
	for _, group := range [][]Condition{f.Must, f.Should, f.MustNot} {
		for _, c := range group {
			if strings.TrimSpace(c.Key) == "" {
				return fmt.Errorf("filter condition key is required")
			}
			if c.Match == nil {
				return fmt.Errorf("filter condition %q has no match", c.Key)
			}
			if c.Match.Value == nil && len(c.Match.Any) == 0 {
				return fmt.Errorf("filter condition %q has empty match", c.Key)
			}
		}
	}
	return nil
}
