package graphicsstate

import (
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/vector"
)

// SegmentKind identifies a path construction operator.
type SegmentKind int

const (
	SegMove SegmentKind = iota
	SegLine
	SegCurve // three points: two controls and the end
	SegClose
	SegRect // four corners
)

// Segment is one recorded operator with its points in default user space.
type Segment struct {
	Kind   SegmentKind
	Points []model.Point
}

// Path is the path under construction. Operands are given in user space
// and stored in default user space, mapped through the CTM in force when
// each segment was added.
type Path struct {
	Segments []Segment

	// current and start are kept in user space so that v, y and h
	// operands resolve against the operator's own coordinates.
	current  model.Point
	start    model.Point
	hasPoint bool

	gs *GraphicsState
}

// NewPath creates an empty path that maps points through gs.
func NewPath(gs *GraphicsState) *Path {
	return &Path{gs: gs}
}

// MoveTo begins a subpath (m).
func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{
		Kind:   SegMove,
		Points: []model.Point{p.gs.Apply(x, y)},
	})
	p.current = model.Point{X: x, Y: y}
	p.start = p.current
	p.hasPoint = true
}

// LineTo adds a straight segment (l). Without a current point it acts as
// MoveTo.
func (p *Path) LineTo(x, y float64) {
	if !p.hasPoint {
		p.MoveTo(x, y)
		return
	}

	p.Segments = append(p.Segments, Segment{
		Kind:   SegLine,
		Points: []model.Point{p.gs.Apply(x, y)},
	})
	p.current = model.Point{X: x, Y: y}
}

// CurveTo adds a cubic Bézier segment (c).
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.hasPoint {
		p.MoveTo(x1, y1)
	}

	p.Segments = append(p.Segments, Segment{
		Kind: SegCurve,
		Points: []model.Point{
			p.gs.Apply(x1, y1),
			p.gs.Apply(x2, y2),
			p.gs.Apply(x3, y3),
		},
	})
	p.current = model.Point{X: x3, Y: y3}
}

// CurveToV handles v, whose first control point is the current point.
func (p *Path) CurveToV(x2, y2, x3, y3 float64) {
	if !p.hasPoint {
		return
	}
	p.CurveTo(p.current.X, p.current.Y, x2, y2, x3, y3)
}

// CurveToY handles y, whose second control point is the end point.
func (p *Path) CurveToY(x1, y1, x3, y3 float64) {
	if !p.hasPoint {
		return
	}
	p.CurveTo(x1, y1, x3, y3, x3, y3)
}

// ClosePath closes the subpath (h).
func (p *Path) ClosePath() {
	if !p.hasPoint {
		return
	}
	p.Segments = append(p.Segments, Segment{Kind: SegClose})
	p.current = p.start
}

// Rectangle records re as a single closed subpath. The current point is
// left at (x, y).
func (p *Path) Rectangle(x, y, width, height float64) {
	p.Segments = append(p.Segments, Segment{
		Kind: SegRect,
		Points: []model.Point{
			p.gs.Apply(x, y),
			p.gs.Apply(x+width, y),
			p.gs.Apply(x+width, y+height),
			p.gs.Apply(x, y+height),
		},
	})
	p.current = model.Point{X: x, Y: y}
	p.start = p.current
	p.hasPoint = true
}

// Clear discards the path after a painting operator.
func (p *Path) Clear() {
	p.Segments = nil
	p.hasPoint = false
}

// IsEmpty reports whether no segments have been recorded.
func (p *Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Commands converts the path into drawing commands.
func (p *Path) Commands() []vector.Command {
	cmds := make([]vector.Command, 0, len(p.Segments))
	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegMove:
			cmds = append(cmds, vector.MoveTo{X: seg.Points[0].X, Y: seg.Points[0].Y})
		case SegLine:
			cmds = append(cmds, vector.LineTo{X: seg.Points[0].X, Y: seg.Points[0].Y})
		case SegCurve:
			pts := make([]model.Point, len(seg.Points))
			copy(pts, seg.Points)
			cmds = append(cmds, vector.CurveTo{Points: pts})
		case SegClose:
			cmds = append(cmds, vector.ClosePath{})
		case SegRect:
			pts := make([]model.Point, len(seg.Points))
			copy(pts, seg.Points)
			cmds = append(cmds, vector.Rectangle{Points: pts})
		}
	}
	return cmds
}
