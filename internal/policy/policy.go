// Package policy maps routes to the roles allowed to call them.
//
// A Policy is plain data: a list of rules. Evaluate is a pure function of the
// policy, the request method and path, and the caller's roles.
package policy

import (
	"net/http"
	"strings"
)

type Decision int

const (
	// Open means no rule restricts the route; any authenticated caller passes.
	Open Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "open"
	}
}

// Writes lists the mutating HTTP methods.
var Writes = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// Rule restricts requests matching Pattern (and Methods, when set) to Roles.
// Pattern segments are literals, "*" for one segment or a trailing "**" for
// any remainder. A rule with no roles admits every authenticated caller.
type Rule struct {
	Methods []string
	Pattern string
	Roles   []string
}

type Policy struct {
	Rules []Rule
}

func New(rules ...Rule) Policy {
	return Policy{Rules: rules}
}

// Evaluate picks the most specific matching rule: more literal segments
// first, then method-scoped rules over any-method rules, then declaration
// order.
func (p Policy) Evaluate(method, path string, roles []string) Decision {
	reqSegs := splitPath(path)

	best := -1
	bestScore := score{}
	for i, rule := range p.Rules {
		if !rule.matchesMethod(method) {
			continue
		}
		literals, ok := matchPattern(splitPath(rule.Pattern), reqSegs)
		if !ok {
			continue
		}
		s := score{literals: literals, methodScoped: len(rule.Methods) > 0}
		if best == -1 || s.beats(bestScore) {
			best = i
			bestScore = s
		}
	}

	if best == -1 {
		return Open
	}
	rule := p.Rules[best]
	if len(rule.Roles) == 0 {
		return Allow
	}
	for _, want := range rule.Roles {
		for _, have := range roles {
			if strings.EqualFold(strings.TrimSpace(have), want) {
				return Allow
			}
		}
	}
	return Deny
}

type score struct {
	literals     int
	methodScoped bool
}

func (s score) beats(other score) bool {
	if s.literals != other.literals {
		return s.literals > other.literals
	}
	return s.methodScoped && !other.methodScoped
}

func (r Rule) matchesMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path []string) (int, bool) {
	literals := 0
	for i, seg := range pattern {
		if seg == "**" {
			return literals, true
		}
		if i >= len(path) {
			return 0, false
		}
		if seg == "*" {
			continue
		}
		if seg != path[i] {
			return 0, false
		}
		literals++
	}
	if len(pattern) != len(path) {
		return 0, false
	}
	return literals, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
