package pdfsource

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/tabula/text"

	"github.com/tsawler/takeoff/model"
)

// Tokens extracts the word tokens of a page from its text layer. A page
// without text yields an empty token list and no error.
func (d *Document) Tokens(page int) (model.TokenPage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(page)
	if err != nil {
		return model.TokenPage{}, err
	}
	box := mediaBox(p)

	parseMu.Lock()
	fragments, err := d.r.ExtractTextFragments(p)
	parseMu.Unlock()
	if err != nil {
		return model.TokenPage{}, fmt.Errorf("failed to extract text: %w", err)
	}

	return TokensFromFragments(fragments, box), nil
}

// TokensFromFragments converts text fragments, positioned bottom-up on
// their baseline, into top-down word tokens. Fragments holding several
// words are split, sharing the fragment width in proportion to character
// count.
func TokensFromFragments(fragments []text.TextFragment, mediaBox []float64) model.TokenPage {
	llx, lly, urx, ury := mediaBox[0], mediaBox[1], mediaBox[2], mediaBox[3]
	tp := model.TokenPage{
		PageWidth:  urx - llx,
		PageHeight: ury - lly,
	}

	for _, f := range fragments {
		height := f.Height
		if height <= 0 {
			height = f.FontSize
		}
		top := tp.PageHeight - (f.Y - lly) - height
		left := f.X - llx

		n := utf8.RuneCountInString(f.Text)
		if n == 0 {
			continue
		}
		charWidth := f.Width / float64(n)

		for _, w := range splitWords(f.Text) {
			tp.Tokens = append(tp.Tokens, model.PositionedToken{
				Text:   w.text,
				X:      left + float64(w.start)*charWidth,
				Y:      top,
				Width:  float64(w.runes) * charWidth,
				Height: height,
			})
		}
	}
	return tp
}

type word struct {
	text  string
	start int
	runes int
}

// splitWords splits s on white space, recording each word's rune offset.
func splitWords(s string) []word {
	var words []word
	var b strings.Builder
	start, i := 0, 0
	flush := func() {
		if b.Len() > 0 {
			words = append(words, word{text: b.String(), start: start, runes: i - start})
			b.Reset()
		}
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			start = i + 1
		} else {
			if b.Len() == 0 {
				start = i
			}
			b.WriteRune(r)
		}
		i++
	}
	flush()
	return words
}
