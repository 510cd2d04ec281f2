package model

// Triplicate groups link a cost item's Control/Accrual/Cashflow entries
// (Co/Ap/Cf) or a revenue item's Revenue/Accrued/Cashflow entries (Rv/Ar/Cf).
// Members share one id and modifier set.

// TriplicateTypes lists every type that can belong to a triplicate group.
var TriplicateTypes = []AccountType{
	AccountTypeCashflow,
	AccountTypeControl,
	AccountTypeAccrual,
	AccountTypeRevenue,
	AccountTypeAccrued,
}

// aliasTargets is the ordered list of owning siblings a Cf reference folds onto.
var aliasTargets = map[AccountType][]AccountType{
	AccountTypeCashflow: {AccountTypeControl, AccountTypeRevenue},
}

// attachParents lists, per clone source type, the extra group members the
// clone is attached under.
var attachParents = map[AccountType][]AccountType{
	AccountTypeCashflow: {AccountTypeControl, AccountTypeRevenue},
	AccountTypeControl:  {AccountTypeCashflow},
	AccountTypeRevenue:  {AccountTypeCashflow},
}

// IsTriplicate reports whether t can be part of a triplicate group.
func (t AccountType) IsTriplicate() bool {
	for _, tt := range TriplicateTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// AliasTargets returns the sibling types a reference of type t resolves to,
// in preference order. Nil when t never aliases.
func (t AccountType) AliasTargets() []AccountType {
	return aliasTargets[t]
}

// AttachParents returns the sibling types a clone of a t account must also be
// attached under.
func (t AccountType) AttachParents() []AccountType {
	return attachParents[t]
}

// TriplicateGroup maps each member type to its definition.
type TriplicateGroup map[AccountType]Definition

// Member returns the group's definition for type t.
func (g TriplicateGroup) Member(t AccountType) (Definition, bool) {
	d, ok := g[t]
	return d, ok
}

// Types returns the member types in TriplicateTypes order.
func (g TriplicateGroup) Types() []AccountType {
	var types []AccountType
	for _, t := range TriplicateTypes {
		if _, ok := g[t]; ok {
			types = append(types, t)
		}
	}
	return types
}
