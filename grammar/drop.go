package grammar

import (
	"regexp"

	"github.com/tsawler/takeoff/model"
)

// DropRule maps a label pattern to a drop type and its default cable
// allowance in metres.
type DropRule struct {
	Type       model.DropType
	AllowanceM float64
	pattern    *regexp.Regexp

	// requireDrop is set for words such as COLUMN that only denote a drop
	// when the label also says DROP.
	requireDrop bool
}

var dropWordRe = regexp.MustCompile(`\bDROP(?:PER)?S?\b`)

// DropRules lists the drop label rules in priority order.
var DropRules = []DropRule{
	{Type: model.DropCCTV, AllowanceM: 3, pattern: regexp.MustCompile(`\bCCTV\b`)},
	{Type: model.DropAccessControl, AllowanceM: 3, pattern: regexp.MustCompile(`\b(?:ACCESS\s+CONTROL|ACS|DOOR\s+CONTROL(?:LER)?)\b`)},
	{Type: model.DropCabinet, AllowanceM: 2, pattern: regexp.MustCompile(`\b(?:CABINET|CAB|RACK)S?\b`)},
	{Type: model.DropColumn, AllowanceM: 4, pattern: regexp.MustCompile(`\b(?:COLUMN|COL)\b`), requireDrop: true},
	{Type: model.DropGeneral, AllowanceM: 2, pattern: dropWordRe},
}

// DropMatch is the drop type read from a label.
type DropMatch struct {
	DropType          model.DropType
	DefaultAllowanceM float64
}

// ParseDrop reads a drop label. Text that parses as a tray annotation is
// never a drop.
func (g *Grammar) ParseDrop(raw string) (DropMatch, bool) {
	text := Normalize(raw)
	if text == "" {
		return DropMatch{}, false
	}
	if g.Match(text).Matched() {
		return DropMatch{}, false
	}

	hasDropWord := dropWordRe.MatchString(text)
	for _, rule := range DropRules {
		if rule.requireDrop && !hasDropWord {
			continue
		}
		if rule.pattern.MatchString(text) {
			return DropMatch{DropType: rule.Type, DefaultAllowanceM: rule.AllowanceM}, true
		}
	}
	return DropMatch{}, false
}
