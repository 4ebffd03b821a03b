package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/takeoff/model"
)

// Pattern names the matcher that produced a Match.
type Pattern string

const (
	PatternNone     Pattern = ""
	PatternCombined Pattern = "combined"
	PatternEquals   Pattern = "equals"
	PatternLadder   Pattern = "ladder"
)

// Candidate is a size and type read by a matcher, before height and status
// are applied.
type Candidate struct {
	SizeMm   int
	TrayType model.TrayType
}

// Match is the tagged result of a Matcher. The zero value is NoMatch.
type Match struct {
	Pattern Pattern
	Entries []Candidate
}

// NoMatch is returned by matchers that do not recognise the text.
var NoMatch = Match{}

// Matched reports whether the match carries any entries.
func (m Match) Matched() bool {
	return len(m.Entries) > 0
}

// Matcher recognises one annotation form. Text passed to Match is already
// normalised.
type Matcher interface {
	Pattern() Pattern
	Match(text string) Match
}

var (
	combinedEntryRe = regexp.MustCompile(`\b(\d+)\s+(ELV|LV|FA|SUB)\b`)
	containmentRe   = regexp.MustCompile(`TRAY|LADDER|BASKET`)
	equalsRe        = regexp.MustCompile(`\b(ELV|LV|FA|SUB)\s+(?:CABLE\s+)?(?:TRAY|LADDER|BASKET)\s*=\s*(\d+)\s*MM`)
	ladderRe        = regexp.MustCompile(`\b(?:SUB\s+)?LADDER\s*=\s*(\d+)\s*MM`)

	heightMmRe = regexp.MustCompile(`@\s*(\d{3,6})(?:[^\d.]|$)`)
	heightMRe  = regexp.MustCompile(`@\s*(\d+(?:\.\d+)?)\s*M\b`)

	existingRe = regexp.MustCompile(`\b(?:EX|EXISTING)\b`)
	newRe      = regexp.MustCompile(`\bNEW\b`)
)

// candidate builds a Candidate when size is one of the enumerated widths.
func candidate(size string, trayType string) (Candidate, bool) {
	mm, err := strconv.Atoi(size)
	if err != nil || !model.IsTraySize(mm) {
		return Candidate{}, false
	}
	t, ok := model.ParseTrayType(trayType)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{SizeMm: mm, TrayType: t}, true
}

// CombinedMatcher reads every "<size> <type>" pair in a phrase that also
// names a containment product. Sizes outside the enumeration are skipped.
type CombinedMatcher struct{}

func (CombinedMatcher) Pattern() Pattern { return PatternCombined }

func (CombinedMatcher) Match(text string) Match {
	if !containmentRe.MatchString(text) {
		return NoMatch
	}
	var entries []Candidate
	for _, m := range combinedEntryRe.FindAllStringSubmatch(text, -1) {
		if c, ok := candidate(m[1], m[2]); ok {
			entries = append(entries, c)
		}
	}
	if len(entries) == 0 {
		return NoMatch
	}
	return Match{Pattern: PatternCombined, Entries: entries}
}

// EqualsMatcher reads "LV CABLE TRAY = 150MM" style labels.
type EqualsMatcher struct{}

func (EqualsMatcher) Pattern() Pattern { return PatternEquals }

func (EqualsMatcher) Match(text string) Match {
	m := equalsRe.FindStringSubmatch(text)
	if m == nil {
		return NoMatch
	}
	c, ok := candidate(m[2], m[1])
	if !ok {
		return NoMatch
	}
	return Match{Pattern: PatternEquals, Entries: []Candidate{c}}
}

// LadderMatcher reads "LADDER = 300MM" labels, which always denote
// sub-main ladder.
type LadderMatcher struct{}

func (LadderMatcher) Pattern() Pattern { return PatternLadder }

func (LadderMatcher) Match(text string) Match {
	m := ladderRe.FindStringSubmatch(text)
	if m == nil {
		return NoMatch
	}
	c, ok := candidate(m[1], string(model.TraySUB))
	if !ok {
		return NoMatch
	}
	return Match{Pattern: PatternLadder, Entries: []Candidate{c}}
}

// DefaultMatchers returns the matchers in priority order.
func DefaultMatchers() []Matcher {
	return []Matcher{CombinedMatcher{}, EqualsMatcher{}, LadderMatcher{}}
}

// ParseHeight reads the installation height of a normalised phrase. A 3 to
// 6 digit "@" value is millimetres; "@<n>M" is metres.
func ParseHeight(text string) (float64, bool) {
	if m := heightMmRe.FindStringSubmatch(text); m != nil {
		mm, err := strconv.Atoi(m[1])
		if err == nil {
			return float64(mm) / 1000, true
		}
	}
	if m := heightMRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return v, true
		}
	}
	return 0, false
}

// StatusPolicy decides the status of annotations that carry neither a NEW
// nor an EX/EXISTING marker.
type StatusPolicy string

const (
	// AssumeNew treats unmarked annotations as new work.
	AssumeNew StatusPolicy = "new"
	// AssumeExisting treats unmarked annotations as existing containment.
	AssumeExisting StatusPolicy = "existing"
)

// DefaultStatusPolicy is the policy used when none is configured.
const DefaultStatusPolicy = AssumeNew

// ParseStatusPolicy converts a configuration value into a StatusPolicy.
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch StatusPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case AssumeNew, "":
		return AssumeNew, nil
	case AssumeExisting:
		return AssumeExisting, nil
	}
	return "", fmt.Errorf("unknown status policy %q", s)
}

// Status is the new/existing classification of a phrase.
type Status struct {
	IsNew      bool
	IsExisting bool
	Defaulted  bool
}

// ClassifyStatus classifies a normalised phrase. A phrase is existing when
// it names EX or EXISTING and does not name NEW. A phrase with no marker
// takes the policy's status and is flagged as defaulted.
func ClassifyStatus(text string, policy StatusPolicy) Status {
	hasNew := newRe.MatchString(text)
	hasExisting := existingRe.MatchString(text)

	switch {
	case hasExisting && !hasNew:
		return Status{IsExisting: true}
	case hasNew:
		return Status{IsNew: true}
	case policy == AssumeExisting:
		return Status{IsExisting: true, Defaulted: true}
	default:
		return Status{IsNew: true, Defaulted: true}
	}
}

// Parse is the outcome of reading one phrase.
type Parse struct {
	Pattern Pattern
	Entries []model.TrayEntry
}

// Combined reports whether the phrase expanded into more than one entry.
func (p Parse) Combined() bool {
	return len(p.Entries) > 1
}

// Grammar parses tray and drop annotations. It is immutable and safe for
// concurrent use.
type Grammar struct {
	matchers []Matcher
	policy   StatusPolicy
}

// New creates a grammar with the default matchers.
func New(policy StatusPolicy) *Grammar {
	return NewWithMatchers(policy, DefaultMatchers()...)
}

// NewWithMatchers creates a grammar that tries matchers in the given order.
func NewWithMatchers(policy StatusPolicy, matchers ...Matcher) *Grammar {
	if policy == "" {
		policy = DefaultStatusPolicy
	}
	ms := make([]Matcher, len(matchers))
	copy(ms, matchers)
	return &Grammar{matchers: ms, policy: policy}
}

// Policy returns the grammar's status policy.
func (g *Grammar) Policy() StatusPolicy {
	return g.policy
}

// Match runs the matchers over normalised text and returns the first match.
func (g *Grammar) Match(text string) Match {
	for _, m := range g.matchers {
		if res := m.Match(text); res.Matched() {
			return res
		}
	}
	return NoMatch
}

// ParseTray reads tray entries from raw phrase text. It returns an empty
// Parse when the text is not a tray annotation.
func (g *Grammar) ParseTray(raw string) Parse {
	text := Normalize(raw)
	if text == "" {
		return Parse{}
	}

	match := g.Match(text)
	if !match.Matched() {
		return Parse{}
	}

	status := ClassifyStatus(text, g.policy)
	height, hasHeight := ParseHeight(text)
	rawText := strings.TrimSpace(raw)

	entries := make([]model.TrayEntry, len(match.Entries))
	for i, c := range match.Entries {
		e := model.TrayEntry{
			SizeMm:          c.SizeMm,
			TrayType:        c.TrayType,
			IsNew:           status.IsNew,
			IsExisting:      status.IsExisting,
			StatusDefaulted: status.Defaulted,
			RawText:         rawText,
		}
		if hasHeight {
			h := height
			e.HeightM = &h
		}
		entries[i] = e
	}
	return Parse{Pattern: match.Pattern, Entries: entries}
}
