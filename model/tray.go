package model

import (
	"fmt"
	"math"
	"strings"
)

// TrayType is the service a run of containment carries.
type TrayType string

const (
	TrayLV  TrayType = "LV"
	TrayFA  TrayType = "FA"
	TrayELV TrayType = "ELV"
	TraySUB TrayType = "SUB"
)

// TrayTypes lists every tray type in presentation order.
var TrayTypes = []TrayType{TrayLV, TrayFA, TrayELV, TraySUB}

// ParseTrayType converts a label such as "lv" into a TrayType.
func ParseTrayType(s string) (TrayType, bool) {
	t := TrayType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range TrayTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Order returns the presentation index of the tray type, or len(TrayTypes)
// for unknown types.
func (t TrayType) Order() int {
	for i, known := range TrayTypes {
		if t == known {
			return i
		}
	}
	return len(TrayTypes)
}

// TraySizes is the fixed enumeration of tray widths in millimetres.
var TraySizes = []int{50, 75, 100, 150, 225, 300, 450, 600}

// IsTraySize reports whether mm is one of the enumerated tray widths.
func IsTraySize(mm int) bool {
	for _, s := range TraySizes {
		if s == mm {
			return true
		}
	}
	return false
}

// SizeKey returns the fitting-summary key for a tray width, e.g. "100mm".
func SizeKey(mm int) string {
	return fmt.Sprintf("%dmm", mm)
}

// WholesalerLengthM is the stock length tray is purchased in.
const WholesalerLengthM = 3.0

// WholesalerLengths returns the number of stock lengths needed for a run.
func WholesalerLengths(lengthM float64) int {
	if lengthM <= 0 {
		return 0
	}
	return int(math.Ceil(lengthM / WholesalerLengthM))
}

// Couplers returns the joints needed between consecutive stock lengths.
func Couplers(wholesalerLengths int) int {
	return max(0, wholesalerLengths-1)
}

// TrayEntry is one tray size and type read from an annotation.
type TrayEntry struct {
	SizeMm     int      `json:"sizeMm"`
	TrayType   TrayType `json:"trayType"`
	HeightM    *float64 `json:"heightM,omitempty"`
	IsNew      bool     `json:"isNew"`
	IsExisting bool     `json:"isExisting"`

	// StatusDefaulted is set when the annotation carried no NEW or
	// EX/EXISTING marker and the status came from the status policy.
	StatusDefaulted bool   `json:"statusDefaulted"`
	RawText         string `json:"rawText"`
}

// Height returns the installation height and whether one was given.
func (e TrayEntry) Height() (float64, bool) {
	if e.HeightM == nil {
		return 0, false
	}
	return *e.HeightM, true
}

// TrayAnnotation is a parsed tray entry at the position of the phrase it
// came from.
type TrayAnnotation struct {
	TrayEntry
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	EndX float64 `json:"endX"`

	// Combined is set when the phrase expanded into more than one entry.
	Combined bool `json:"combined"`
}

// Anchor returns the annotation's anchor point.
func (a TrayAnnotation) Anchor() Point {
	return Point{X: a.X, Y: a.Y}
}

// DropType classifies a vertical cable drop.
type DropType string

const (
	DropColumn        DropType = "column"
	DropCabinet       DropType = "cabinet"
	DropCCTV          DropType = "cctv"
	DropAccessControl DropType = "access_control"
	DropGeneral       DropType = "general"
)

// DropAnnotation is a drop label found on the drawing.
type DropAnnotation struct {
	X                 float64  `json:"x"`
	Y                 float64  `json:"y"`
	Text              string   `json:"text"`
	DropType          DropType `json:"dropType"`
	DefaultAllowanceM float64  `json:"defaultAllowanceM"`
}

// Key returns the rounded position key used to de-duplicate drops.
func (d DropAnnotation) Key() string {
	return fmt.Sprintf("%d,%d", int(math.Round(d.X)), int(math.Round(d.Y)))
}

// ColouredLine is the midpoint of a coloured stroke, top-down.
type ColouredLine struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ColourHex string  `json:"colourHex"`
}

// TraySegment is one straight section inferred between two consecutive
// annotations of the same run.
type TraySegment struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	LengthM float64 `json:"lengthM"`
}

// Colour sources for TrayRun.ColourSource.
const (
	ColourFromDrawing = "drawing"
	ColourFromPalette = "palette"
)

// TrayRun is the takeoff line for one (size, type) group on a drawing.
type TrayRun struct {
	ID                int           `json:"id"`
	SizeMm            int           `json:"sizeMm"`
	TrayType          TrayType      `json:"trayType"`
	LengthM           float64       `json:"lengthM"`
	HeightM           *float64      `json:"heightM,omitempty"`
	WholesalerLengths int           `json:"wholesalerLengths"`
	TPieces           int           `json:"tPieces"`
	CrossPieces       int           `json:"crossPieces"`
	Bends90           int           `json:"bends90"`
	Drops             int           `json:"drops"`
	Segments          []TraySegment `json:"segments"`
	ColourHex         string        `json:"colourHex"`
	ColourSource      string        `json:"colourSource"`

	AnnotationCount int      `json:"annotationCount"`
	Annotations     []string `json:"annotations"`

	// EstimatedLength is set when LengthM is the single-annotation minimum
	// rather than a sum of segments.
	EstimatedLength bool `json:"estimatedLength"`

	// StatusDefaulted is set when no annotation in the run was explicitly
	// marked NEW.
	StatusDefaulted bool `json:"statusDefaulted"`
}

// Label returns a short description such as "100mm LV".
func (r TrayRun) Label() string {
	return fmt.Sprintf("%dmm %s", r.SizeMm, r.TrayType)
}

// FittingCounts holds the per-size fitting totals.
type FittingCounts struct {
	TPieces     int `json:"tPieces"`
	CrossPieces int `json:"crossPieces"`
	Bends90     int `json:"bends90"`
	Drops       int `json:"drops"`
	Couplers    int `json:"couplers"`
}

// FittingSummary maps a size key ("100mm") to its fitting totals.
type FittingSummary map[string]FittingCounts
