package hierarchy

import (
	"github.com/cleared-dev/acctsplit/internal/model"
)

// GroupLookup finds the triplicate group for an id+modifiers key.
type GroupLookup interface {
	Group(groupKey string) (model.TriplicateGroup, bool)
}

// Membership is the set of account keys placed in the hierarchy, closed under
// triplicate groups: when one member of a group is placed, every member counts
// as placed.
type Membership struct {
	keys map[string]struct{}
}

// NewMembership builds the membership set from a parsed hierarchy.
func NewMembership(t *Tree, groups GroupLookup) *Membership {
	m := &Membership{keys: make(map[string]struct{}, t.Len())}
	for _, n := range t.nodes {
		m.Add(n.Def.Key())

		g, ok := groups.Group(n.Def.GroupKey())
		if !ok {
			continue
		}
		for _, member := range g {
			m.Add(member.Key())
		}
	}
	return m
}

// Add inserts key.
func (m *Membership) Add(key string) {
	m.keys[model.NormalizeKey(key)] = struct{}{}
}

// Contains reports whether key is placed in the hierarchy.
func (m *Membership) Contains(key string) bool {
	_, ok := m.keys[model.NormalizeKey(key)]
	return ok
}

// Len returns the number of keys.
func (m *Membership) Len() int {
	return len(m.keys)
}
