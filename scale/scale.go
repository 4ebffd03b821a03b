// Package scale resolves a drawing's scale ratio and paper size from its text
// and converts page units to metres.
//
// The factor is an estimate. It assumes the PDF page spans the full paper
// width, so lengths derived from it should be presented as approximate.
package scale

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Defaults used when the drawing states no scale or paper size.
const (
	DefaultRatio = 100
	DefaultPaper = "A0"
)

// PaperWidthsMm holds the long-edge width of each ISO A sheet in
// millimetres, as printed in landscape.
var PaperWidthsMm = map[string]float64{
	"A0": 1189,
	"A1": 841,
	"A2": 594,
	"A3": 420,
	"A4": 297,
}

var (
	ratioRe = regexp.MustCompile(`1\s*:\s*(\d+)`)
	paperRe = regexp.MustCompile(`(?i)\bA[0-4]\b`)
)

// Overrides are caller-supplied values that take precedence over anything
// read from the drawing. Zero values mean "not set".
type Overrides struct {
	Ratio     int
	PaperSize string
}

// Scale is a resolved drawing scale.
type Scale struct {
	Ratio         int
	PaperSize     string
	RatioDetected bool
	PaperDetected bool
	MetresPerUnit float64
}

// String formats the ratio as "1:100".
func (s Scale) String() string {
	return fmt.Sprintf("1:%d", s.Ratio)
}

// Length converts a page-unit distance into metres.
func (s Scale) Length(units float64) float64 {
	return units * s.MetresPerUnit
}

// DetectRatio returns the first "1:<n>" ratio in text.
func DetectRatio(text string) (int, bool) {
	m := ratioRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// DetectPaper returns the first standalone A0 to A4 token in text.
func DetectPaper(text string) (string, bool) {
	m := paperRe.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}

// ValidPaper reports whether size names a supported sheet.
func ValidPaper(size string) bool {
	_, ok := PaperWidthsMm[strings.ToUpper(size)]
	return ok
}

// MetresPerUnit returns the metres represented by one page unit on a page
// pageWidth units wide. It returns 0 for a non-positive page width or an
// unknown paper size.
func MetresPerUnit(paper string, pageWidth float64, ratio int) float64 {
	widthMm, ok := PaperWidthsMm[strings.ToUpper(paper)]
	if !ok || pageWidth <= 0 {
		return 0
	}
	return widthMm / pageWidth * float64(ratio) / 1000
}

// Resolve detects the scale and paper size in page text, applies overrides
// and defaults, and computes the conversion factor.
func Resolve(text string, pageWidth float64, o Overrides) Scale {
	s := Scale{Ratio: DefaultRatio, PaperSize: DefaultPaper}

	if r, ok := DetectRatio(text); ok {
		s.Ratio = r
		s.RatioDetected = true
	}
	if p, ok := DetectPaper(text); ok {
		s.PaperSize = p
		s.PaperDetected = true
	}

	if o.Ratio > 0 {
		s.Ratio = o.Ratio
		s.RatioDetected = true
	}
	if ValidPaper(o.PaperSize) {
		s.PaperSize = strings.ToUpper(o.PaperSize)
		s.PaperDetected = true
	}

	s.MetresPerUnit = MetresPerUnit(s.PaperSize, pageWidth, s.Ratio)
	return s
}
