package model

import "strings"

// AccountType is the two-letter type code that prefixes every account key.
type AccountType string

const (
	AccountTypeCashflow AccountType = "Cf"
	AccountTypeControl  AccountType = "Co"
	AccountTypeAccrual  AccountType = "Ap"
	AccountTypeRevenue  AccountType = "Rv"
	AccountTypeAccrued  AccountType = "Ar"
	AccountTypeClone    AccountType = "Ac"
)

var knownTypes = []AccountType{
	AccountTypeCashflow,
	AccountTypeControl,
	AccountTypeAccrual,
	AccountTypeRevenue,
	AccountTypeAccrued,
	AccountTypeClone,
}

// ParseAccountType normalises the case of known type codes ("CF" -> "Cf").
// Unknown codes are returned verbatim.
func ParseAccountType(code string) AccountType {
	for _, t := range knownTypes {
		if strings.EqualFold(code, string(t)) {
			return t
		}
	}
	return AccountType(code)
}

// Direction is the leading sign of a definition line.
type Direction byte

const (
	DirectionDebit  Direction = '+'
	DirectionCredit Direction = '-'
)

// ModifierSymbols are the characters allowed in the modifier run after an id.
const ModifierSymbols = "$%#*"

// IsModifier reports whether c is one of ModifierSymbols.
func IsModifier(c byte) bool {
	return strings.IndexByte(ModifierSymbols, c) >= 0
}

// Definition is one parsed line of the definitions file.
type Definition struct {
	Direction Direction
	Type      AccountType
	ID        string
	Modifiers string
	Caption   string
	RawLine   string
}

// Key returns the account key, type followed by id ("Cf100").
func (d Definition) Key() string {
	return string(d.Type) + d.ID
}

// GroupKey returns the triplicate group key, id followed by modifiers ("100$").
func (d Definition) GroupKey() string {
	return d.ID + d.Modifiers
}

// Suffix returns the raw line text that follows the key: modifiers, spacing
// and caption exactly as written.
func (d Definition) Suffix() string {
	n := 3 + len(d.ID)
	if n > len(d.RawLine) {
		return ""
	}
	return d.RawLine[n:]
}

// NormalizeKey folds a key for case-insensitive comparison.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// SplitKey splits a key into its type and id. Keys shorter than three
// characters have no id.
func SplitKey(key string) (AccountType, string) {
	key = strings.TrimSpace(key)
	if len(key) < 2 {
		return AccountType(key), ""
	}
	return ParseAccountType(key[:2]), key[2:]
}

// Relation is one parent/child pair emitted to the tree output.
type Relation struct {
	Parent string
	Child  string
}
