package model

// PositionedToken is one word of drawing text with its bounding box in
// top-down page coordinates. Tokens are produced by a text-layer extractor
// and never modified afterwards.
type PositionedToken struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the X coordinate of the token's right edge
func (t PositionedToken) Right() float64 {
	return t.X + t.Width
}

// TokenPage is the output of a page word-token extractor.
type TokenPage struct {
	Tokens     []PositionedToken `json:"tokens"`
	PageWidth  float64           `json:"pageWidth"`
	PageHeight float64           `json:"pageHeight"`
}

// Phrase is a run of tokens printed on the same visual line. X and Y anchor
// the phrase at its first token; EndX is the right edge of its last token.
type Phrase struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	EndX   float64 `json:"endX"`
	Tokens int     `json:"tokens"`
}
