package id

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cleared-dev/acctsplit/internal/model"
)

// Initials derives the clone prefix from an object name.
// "Accounts-Receivable System" -> "ARS", "J. Smith" -> "JS"
func Initials(name string) string {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})

	var b strings.Builder
	for _, tok := range tokens {
		tok = strings.ReplaceAll(tok, ".", "")
		if tok == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// FormatCloneID returns the private account id for a consumer, like
// "AcAP_100" for initials "AP" and account id "100".
func FormatCloneID(initials, accountID string) string {
	return string(model.AccountTypeClone) + initials + "_" + accountID
}

// FormatCloneLine returns the definition line of a clone. suffix is the text
// that followed the original key, so the clone keeps its modifiers and caption.
func FormatCloneLine(cloneID, suffix string) string {
	return string(model.DirectionDebit) + cloneID + suffix
}

// ParseCloneID splits "AcAP_100" into its initials and original account id.
func ParseCloneID(cloneID string) (initials, accountID string, ok bool) {
	prefix := string(model.AccountTypeClone)
	if len(cloneID) < len(prefix) || !strings.EqualFold(cloneID[:len(prefix)], prefix) {
		return "", "", false
	}
	initials, accountID, found := strings.Cut(cloneID[len(prefix):], "_")
	if !found || accountID == "" {
		return "", "", false
	}
	return initials, accountID, true
}

// IsClone reports whether key has the shape of a minted private account.
func IsClone(key string) bool {
	_, _, ok := ParseCloneID(strings.TrimSpace(key))
	return ok
}
