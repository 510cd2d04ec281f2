package usage

import (
	"strings"

	"github.com/cleared-dev/acctsplit/internal/model"
)

// Definitions looks up account definitions by key.
type Definitions interface {
	Get(key string) (model.Definition, bool)
}

// Placement reports whether a key is placed in the hierarchy.
type Placement interface {
	Contains(key string) bool
}

// Resolver folds raw account references onto canonical keys.
type Resolver struct {
	defs   Definitions
	placed Placement
}

// NewResolver creates a Resolver over the definitions and hierarchy membership.
func NewResolver(defs Definitions, placed Placement) *Resolver {
	return &Resolver{defs: defs, placed: placed}
}

// ResolveKey returns the canonical key for a reference. A Cf reference folds
// onto its owning sibling (Co, then Rv) when that sibling is defined and
// placed in the hierarchy, so conflicts are detected against the group
// member that owns the Cf leaf. Anything else resolves to itself.
func (r *Resolver) ResolveKey(ref string) string {
	ref = strings.TrimSpace(ref)
	typ, id := model.SplitKey(ref)
	if id == "" {
		return ref
	}
	for _, sibling := range typ.AliasTargets() {
		key := string(sibling) + id
		def, ok := r.defs.Get(key)
		if ok && r.placed.Contains(key) {
			return def.Key()
		}
	}
	return ref
}

// Placed reports whether key is placed in the hierarchy.
func (r *Resolver) Placed(key string) bool {
	return r.placed.Contains(key)
}
