package vector

import (
	"github.com/tsawler/takeoff/model"
)

// Path is one kept stroke: its colour and points in top-down page units.
type Path struct {
	Colour string
	Points []model.Point
}

// Length returns the polyline length of the path in page units.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i-1].Distance(p.Points[i])
	}
	return total
}

// Start returns the first point.
func (p Path) Start() model.Point { return p.Points[0] }

// End returns the last point.
func (p Path) End() model.Point { return p.Points[len(p.Points)-1] }

// Extraction is the coloured content of one page.
type Extraction struct {
	Lines []model.ColouredLine
	Paths []Path

	// Strokes counts every stroke seen, kept or not.
	Strokes int
}

// ColourExtractor walks drawing commands and keeps coloured strokes. It
// holds no per-page state and is safe for concurrent use.
type ColourExtractor struct {
	filter ColourFilter
}

// NewColourExtractor creates an extractor with the given filter.
func NewColourExtractor(filter ColourFilter) *ColourExtractor {
	return &ColourExtractor{filter: filter}
}

// Filter returns the extractor's colour filter.
func (e *ColourExtractor) Filter() ColourFilter {
	return e.filter
}

// pathState is the walk state between strokes.
type pathState struct {
	r, g, b float64
	points  []model.Point
}

// Extract walks cmds (bottom-up coordinates) and returns the coloured
// strokes with Y flipped against pageHeight. A stroke is kept when its
// colour passes the filter and its path has at least two points.
// Rectangles contribute no points: frames, swatches and hatch boxes are
// not tray linework. ClosePath adds no closing edge.
func (e *ColourExtractor) Extract(cmds []Command, pageHeight float64) Extraction {
	var out Extraction
	st := pathState{}

	for _, cmd := range Flatten(cmds) {
		switch c := cmd.(type) {
		case SetStrokeColour:
			st.r, st.g, st.b = c.R, c.G, c.B
		case MoveTo:
			st.points = append(st.points, model.Point{X: c.X, Y: c.Y})
		case LineTo:
			st.points = append(st.points, model.Point{X: c.X, Y: c.Y})
		case CurveTo:
			if n := len(c.Points); n > 0 {
				st.points = append(st.points, c.Points[n-1])
			}
		case ClosePath, Rectangle:
		case Stroke:
			out.Strokes++
			if len(st.points) >= 2 && e.filter.Accepts(st.r, st.g, st.b) {
				path := flip(st.points, pageHeight, Hex(st.r, st.g, st.b))
				out.Paths = append(out.Paths, path)
				out.Lines = append(out.Lines, centroid(path))
			}
			st.points = nil
		case EndPath:
			st.points = nil
		}
	}
	return out
}

func flip(points []model.Point, pageHeight float64, colour string) Path {
	flipped := make([]model.Point, len(points))
	for i, p := range points {
		flipped[i] = model.Point{X: p.X, Y: pageHeight - p.Y}
	}
	return Path{Colour: colour, Points: flipped}
}

func centroid(p Path) model.ColouredLine {
	var sx, sy float64
	for _, pt := range p.Points {
		sx += pt.X
		sy += pt.Y
	}
	n := float64(len(p.Points))
	return model.ColouredLine{X: sx / n, Y: sy / n, ColourHex: p.Colour}
}
