package runs

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tsawler/takeoff/model"
)

// Default assembly tolerances, in page units unless noted.
const (
	DefaultAxisTolerance    = 20.0
	DefaultDropRadius       = 100.0
	DefaultColourRadius     = 80.0
	DefaultMinimumRunM      = 10.0
	DefaultBendThresholdDeg = 45.0
)

// DefaultPalette colours runs by tray size when no coloured stroke is found
// near their labels.
var DefaultPalette = map[int]string{
	50:  "#22c55e",
	75:  "#14b8a6",
	100: "#3b82f6",
	150: "#8b5cf6",
	225: "#f59e0b",
	300: "#ef4444",
	450: "#ec4899",
	600: "#6366f1",
}

// FallbackColour is used for sizes missing from the palette.
const FallbackColour = "#6b7280"

// Config holds the run assembly tolerances.
type Config struct {
	// AxisTolerance is the largest |dx| or |dy| for a pair of annotations
	// to count as one straight horizontal or vertical section.
	AxisTolerance float64

	// DropRadius is the per-axis distance within which a drop label
	// belongs to a run.
	DropRadius float64

	// ColourRadius is the search radius for coloured strokes around each
	// label sample point.
	ColourRadius float64

	// MinimumRunM is the length given to a run with a single annotation.
	MinimumRunM float64

	// BendThresholdDeg is the smallest direction change counted as a bend.
	BendThresholdDeg float64

	Palette map[int]string

	// FirstID is the id of the first run produced by each Assemble call.
	FirstID int
}

// DefaultConfig returns the default assembly configuration.
func DefaultConfig() Config {
	palette := make(map[int]string, len(DefaultPalette))
	for k, v := range DefaultPalette {
		palette[k] = v
	}
	return Config{
		AxisTolerance:    DefaultAxisTolerance,
		DropRadius:       DefaultDropRadius,
		ColourRadius:     DefaultColourRadius,
		MinimumRunM:      DefaultMinimumRunM,
		BendThresholdDeg: DefaultBendThresholdDeg,
		Palette:          palette,
		FirstID:          1,
	}
}

// Assembler builds tray runs. It holds only configuration and is safe for
// concurrent use.
type Assembler struct {
	config Config
}

// NewAssembler creates an assembler with default configuration
func NewAssembler() *Assembler {
	return &Assembler{config: DefaultConfig()}
}

// NewAssemblerWithConfig creates an assembler with custom configuration
func NewAssemblerWithConfig(config Config) *Assembler {
	return &Assembler{config: config}
}

// Config returns the assembler's configuration
func (a *Assembler) Config() Config {
	return a.config
}

type groupKey struct {
	size     int
	trayType model.TrayType
}

// Group splits annotations by (size, type). Groups are ordered by size and
// then tray type; annotations within a group are sorted by (y, x).
func Group(annotations []model.TrayAnnotation) [][]model.TrayAnnotation {
	byKey := make(map[groupKey][]model.TrayAnnotation)
	var keys []groupKey
	for _, a := range annotations {
		k := groupKey{a.SizeMm, a.TrayType}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], a)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].size != keys[j].size {
			return keys[i].size < keys[j].size
		}
		return keys[i].trayType.Order() < keys[j].trayType.Order()
	})

	groups := make([][]model.TrayAnnotation, len(keys))
	for i, k := range keys {
		g := byKey[k]
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].Y != g[j].Y {
				return g[i].Y < g[j].Y
			}
			return g[i].X < g[j].X
		})
		groups[i] = g
	}
	return groups
}

// Assemble builds one run per (size, type) group of new annotations.
// metresPerUnit converts page units to metres. The inputs are not modified
// and equal inputs always produce equal output.
func (a *Assembler) Assemble(annotations []model.TrayAnnotation, drops []model.DropAnnotation, lines []model.ColouredLine, metresPerUnit float64) []model.TrayRun {
	groups := Group(annotations)
	runs := make([]model.TrayRun, 0, len(groups))
	for i, g := range groups {
		runs = append(runs, a.assembleGroup(a.config.FirstID+i, g, drops, lines, metresPerUnit))
	}
	return runs
}

func (a *Assembler) assembleGroup(id int, group []model.TrayAnnotation, drops []model.DropAnnotation, lines []model.ColouredLine, metresPerUnit float64) model.TrayRun {
	first := group[0]
	segments := a.Segments(group, metresPerUnit)

	total := 0.0
	for _, s := range segments {
		total += s.LengthM
	}
	length := model.Round(total, 1)

	estimated := false
	if len(group) == 1 && len(segments) == 0 {
		length = a.config.MinimumRunM
		estimated = true
	}

	colour, source := a.Colour(group, lines)

	return model.TrayRun{
		ID:                id,
		SizeMm:            first.SizeMm,
		TrayType:          first.TrayType,
		LengthM:           length,
		HeightM:           firstHeight(group),
		WholesalerLengths: model.WholesalerLengths(length),
		Bends90:           a.Bends(group),
		Drops:             a.Drops(group, drops),
		Segments:          segments,
		ColourHex:         colour,
		ColourSource:      source,
		AnnotationCount:   len(group),
		Annotations:       rawTexts(group),
		EstimatedLength:   estimated,
		StatusDefaulted:   allDefaulted(group),
	}
}

// Segments returns the straight sections between consecutive annotations
// of a sorted group. Pairs that are neither horizontal nor vertical within
// the axis tolerance are skipped.
func (a *Assembler) Segments(group []model.TrayAnnotation, metresPerUnit float64) []model.TraySegment {
	segments := make([]model.TraySegment, 0, len(group))
	for i := 1; i < len(group); i++ {
		p, q := group[i-1], group[i]
		dx := math.Abs(q.X - p.X)
		dy := math.Abs(q.Y - p.Y)
		if dx > a.config.AxisTolerance && dy > a.config.AxisTolerance {
			continue
		}
		units := r2.Norm(r2.Sub(vec(q.Anchor()), vec(p.Anchor())))
		segments = append(segments, model.TraySegment{
			X1:      p.X,
			Y1:      p.Y,
			X2:      q.X,
			Y2:      q.Y,
			LengthM: model.Round(units*metresPerUnit, 2),
		})
	}
	return segments
}

// Bends counts interior annotations where the direction of travel turns by
// more than the bend threshold. Consecutive annotations at the same
// position count as one.
func (a *Assembler) Bends(group []model.TrayAnnotation) int {
	var pts []r2.Vec
	for _, ann := range group {
		v := vec(ann.Anchor())
		if len(pts) > 0 && pts[len(pts)-1] == v {
			continue
		}
		pts = append(pts, v)
	}

	bends := 0
	for i := 1; i+1 < len(pts); i++ {
		in := r2.Sub(pts[i], pts[i-1])
		out := r2.Sub(pts[i+1], pts[i])
		if turn(in, out) > a.config.BendThresholdDeg {
			bends++
		}
	}
	return bends
}

// turn returns the absolute direction change from in to out in degrees,
// in the range 0..180.
func turn(in, out r2.Vec) float64 {
	diff := math.Abs(math.Atan2(out.Y, out.X)-math.Atan2(in.Y, in.X)) * 180 / math.Pi
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// Drops counts drop labels within DropRadius (per axis) of any annotation
// in the group.
func (a *Assembler) Drops(group []model.TrayAnnotation, drops []model.DropAnnotation) int {
	count := 0
	for _, d := range drops {
		for _, ann := range group {
			if math.Abs(d.X-ann.X) <= a.config.DropRadius && math.Abs(d.Y-ann.Y) <= a.config.DropRadius {
				count++
				break
			}
		}
	}
	return count
}

// Colour picks the run colour by majority vote of coloured strokes near
// each annotation's start, middle and end. Ties go to the lowest hex
// string. Without nearby strokes the size palette is used.
func (a *Assembler) Colour(group []model.TrayAnnotation, lines []model.ColouredLine) (string, string) {
	votes := make(map[string]int)
	for _, ann := range group {
		endX := math.Max(ann.EndX, ann.X)
		samples := []model.Point{
			{X: ann.X, Y: ann.Y},
			{X: (ann.X + endX) / 2, Y: ann.Y},
			{X: endX, Y: ann.Y},
		}
		for _, s := range samples {
			for _, l := range lines {
				if s.Distance(model.Point{X: l.X, Y: l.Y}) <= a.config.ColourRadius {
					votes[l.ColourHex]++
				}
			}
		}
	}

	best, bestCount := "", 0
	for colour, n := range votes {
		if n > bestCount || (n == bestCount && colour < best) {
			best, bestCount = colour, n
		}
	}
	if bestCount > 0 {
		return best, model.ColourFromDrawing
	}

	if c, ok := a.config.Palette[group[0].SizeMm]; ok {
		return c, model.ColourFromPalette
	}
	return FallbackColour, model.ColourFromPalette
}

func vec(p model.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func firstHeight(group []model.TrayAnnotation) *float64 {
	for _, a := range group {
		if h, ok := a.Height(); ok {
			return &h
		}
	}
	return nil
}

func rawTexts(group []model.TrayAnnotation) []string {
	texts := make([]string, 0, len(group))
	seen := make(map[string]bool)
	for _, a := range group {
		if !seen[a.RawText] {
			seen[a.RawText] = true
			texts = append(texts, a.RawText)
		}
	}
	return texts
}

func allDefaulted(group []model.TrayAnnotation) bool {
	for _, a := range group {
		if !a.StatusDefaulted {
			return false
		}
	}
	return true
}
