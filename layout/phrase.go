package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/takeoff/model"
)

// Default phrase clustering tolerances, in page units.
const (
	// DefaultLineTolerance is the largest Y difference between a token and
	// the phrase anchor for the token to count as the same printed line.
	DefaultLineTolerance = 5.0

	// DefaultGapTolerance is the largest horizontal gap between the end of a
	// phrase and the start of the next token for both to belong to one label.
	DefaultGapTolerance = 30.0
)

// PhraseConfig holds configuration for phrase clustering
type PhraseConfig struct {
	LineTolerance float64
	GapTolerance  float64
}

// DefaultPhraseConfig returns the clustering tolerances used for drawing
// annotations.
func DefaultPhraseConfig() PhraseConfig {
	return PhraseConfig{
		LineTolerance: DefaultLineTolerance,
		GapTolerance:  DefaultGapTolerance,
	}
}

// PhraseDetector groups positioned word tokens into same-line phrases.
// It holds no state between calls and is safe for concurrent use.
type PhraseDetector struct {
	config PhraseConfig
}

// NewPhraseDetector creates a phrase detector with default configuration
func NewPhraseDetector() *PhraseDetector {
	return &PhraseDetector{config: DefaultPhraseConfig()}
}

// NewPhraseDetectorWithConfig creates a phrase detector with custom configuration
func NewPhraseDetectorWithConfig(config PhraseConfig) *PhraseDetector {
	return &PhraseDetector{config: config}
}

// Config returns the detector's configuration
func (d *PhraseDetector) Config() PhraseConfig {
	return d.config
}

// phraseState is the phrase being folded; it is only extended through
// extend, which returns a new value.
type phraseState struct {
	anchor model.PositionedToken
	tokens []model.PositionedToken
	endX   float64
}

func (s phraseState) accepts(tok model.PositionedToken, cfg PhraseConfig) bool {
	dy := tok.Y - s.anchor.Y
	if dy < 0 {
		dy = -dy
	}
	return dy < cfg.LineTolerance && tok.X-s.endX < cfg.GapTolerance
}

func (s phraseState) extend(tok model.PositionedToken) phraseState {
	tokens := make([]model.PositionedToken, len(s.tokens), len(s.tokens)+1)
	copy(tokens, s.tokens)
	return phraseState{
		anchor: s.anchor,
		tokens: append(tokens, tok),
		endX:   max(s.endX, tok.Right()),
	}
}

func newPhraseState(tok model.PositionedToken) phraseState {
	return phraseState{
		anchor: tok,
		tokens: []model.PositionedToken{tok},
		endX:   tok.Right(),
	}
}

// phrase renders the folded tokens. Words are joined left to right so that
// a token on a slightly higher baseline still reads in print order.
func (s phraseState) phrase() model.Phrase {
	ordered := make([]model.PositionedToken, len(s.tokens))
	copy(ordered, s.tokens)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].X < ordered[j].X })

	words := make([]string, 0, len(ordered))
	for _, tok := range ordered {
		if w := strings.TrimSpace(tok.Text); w != "" {
			words = append(words, w)
		}
	}

	return model.Phrase{
		Text:   strings.Join(words, " "),
		X:      min(s.anchor.X, ordered[0].X),
		Y:      s.anchor.Y,
		EndX:   s.endX,
		Tokens: len(s.tokens),
	}
}

// SortTokens returns a copy of tokens ordered by (y, x).
func SortTokens(tokens []model.PositionedToken) []model.PositionedToken {
	sorted := make([]model.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted
}

// Detect clusters tokens into phrases. Tokens are taken in (y, x) order; a
// token extends the current phrase when it lies within LineTolerance of the
// phrase anchor's Y and starts less than GapTolerance past the phrase's
// current end. Otherwise it starts a new phrase. The input is not modified.
func (d *PhraseDetector) Detect(tokens []model.PositionedToken) []model.Phrase {
	sorted := SortTokens(tokens)

	var done []phraseState
	var current *phraseState
	for _, tok := range sorted {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		if current != nil && current.accepts(tok, d.config) {
			next := current.extend(tok)
			current = &next
			continue
		}
		if current != nil {
			done = append(done, *current)
		}
		next := newPhraseState(tok)
		current = &next
	}
	if current != nil {
		done = append(done, *current)
	}

	phrases := make([]model.Phrase, len(done))
	for i, s := range done {
		phrases[i] = s.phrase()
	}
	return phrases
}

// PageText joins every token's text in reading order, one line per phrase.
// It is the input to scale and paper-size detection.
func (d *PhraseDetector) PageText(tokens []model.PositionedToken) string {
	phrases := d.Detect(tokens)
	lines := make([]string, len(phrases))
	for i, p := range phrases {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}
