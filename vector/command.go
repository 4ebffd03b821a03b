package vector

import "github.com/tsawler/takeoff/model"

// Command is one drawing instruction in default user space (PDF bottom-up
// coordinates). The set of implementations is closed.
type Command interface {
	isCommand()
}

// SetStrokeColour sets the stroke colour. Components are in 0..1.
type SetStrokeColour struct {
	R, G, B float64
}

// MoveTo starts a new subpath.
type MoveTo struct {
	X, Y float64
}

// LineTo appends a straight segment.
type LineTo struct {
	X, Y float64
}

// CurveTo appends a Bézier curve. The last point is the curve's end point;
// any others are control points.
type CurveTo struct {
	Points []model.Point
}

// ClosePath closes the current subpath.
type ClosePath struct{}

// Rectangle is a closed four-sided subpath drawn with re. Points holds the
// corners in drawing order.
type Rectangle struct {
	Points []model.Point
}

// Stroke paints the current path and starts a new one.
type Stroke struct{}

// EndPath discards the current path without stroking it (fills, clips).
type EndPath struct{}

// Batch groups several commands, as produced by backends that emit a path's
// construction in one block.
type Batch struct {
	Commands []Command
}

func (SetStrokeColour) isCommand() {}
func (MoveTo) isCommand()          {}
func (LineTo) isCommand()          {}
func (CurveTo) isCommand()         {}
func (ClosePath) isCommand()       {}
func (Rectangle) isCommand()       {}
func (Stroke) isCommand()          {}
func (EndPath) isCommand()         {}
func (Batch) isCommand()           {}

// Flatten expands nested batches into a single command list.
func Flatten(cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if b, ok := c.(Batch); ok {
			out = append(out, Flatten(b.Commands)...)
			continue
		}
		out = append(out, c)
	}
	return out
}
