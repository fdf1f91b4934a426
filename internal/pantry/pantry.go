package pantry

import (
	"sort"
	"strings"
)

// DefaultOwner is the pantry owner used by the single-user CLI.
const DefaultOwner = "default"

// Staples are treated as always available regardless of pantry contents.
var Staples = []string{
	"salt", "pepper", "black pepper", "olive oil", "vegetable oil",
	"water", "sugar", "flour", "butter",
}

// Pantry is an immutable set of owned ingredient names combined with the
// staples set. Names are lower-cased and trimmed.
type Pantry struct {
	owned   map[string]struct{}
	staples map[string]struct{}
}

// New builds a Pantry from the user's ingredient names.
func New(items []string) *Pantry {
	p := &Pantry{
		owned:   toSet(items),
		staples: toSet(Staples),
	}
	return p
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if name := Clean(item); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Clean lower-cases and trims an ingredient name.
func Clean(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseList splits a comma-separated ingredient list into cleaned,
// de-duplicated names in input order.
func ParseList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := Clean(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Contains reports whether name is owned or a staple.
func (p *Pantry) Contains(name string) bool {
	if p == nil {
		return false
	}
	name = Clean(name)
	if _, ok := p.owned[name]; ok {
		return true
	}
	_, ok := p.staples[name]
	return ok
}

// Owns reports whether name was entered by the user. Staples do not count.
func (p *Pantry) Owns(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.owned[Clean(name)]
	return ok
}

// Items returns the user's entries, sorted.
func (p *Pantry) Items() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.owned)
}

// All returns owned entries and staples combined, sorted.
func (p *Pantry) All() []string {
	if p == nil {
		return nil
	}
	union := make(map[string]struct{}, len(p.owned)+len(p.staples))
	for k := range p.owned {
		union[k] = struct{}{}
	}
	for k := range p.staples {
		union[k] = struct{}{}
	}
	return sortedKeys(union)
}

// Len returns the number of user entries.
func (p *Pantry) Len() int {
	if p == nil {
		return 0
	}
	return len(p.owned)
}

// IsEmpty reports whether the user has entered nothing.
func (p *Pantry) IsEmpty() bool {
	return p.Len() == 0
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
