package grammar

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility characters (full-width digits, ligatures),
// upper-cases the text and collapses runs of whitespace to single spaces.
func Normalize(text string) string {
	folded := norm.NFKC.String(text)
	// Casers keep per-call state, so one is built for each use.
	upper := cases.Upper(language.Und).String(folded)
	return strings.Join(strings.Fields(upper), " ")
}
