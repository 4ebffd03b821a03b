package graphicsstate

import (
	"fmt"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/vector"
)

// ColourSpace is a stroke colour space the walker understands.
type ColourSpace int

const (
	SpaceGray ColourSpace = iota
	SpaceRGB
	SpaceCMYK
	// SpaceOther covers named, pattern and ICC spaces. Components set in it
	// are read by count.
	SpaceOther
)

// ParseColourSpace maps a CS operand to a ColourSpace.
func ParseColourSpace(name string) ColourSpace {
	switch name {
	case "DeviceGray", "G", "CalGray":
		return SpaceGray
	case "DeviceRGB", "RGB", "CalRGB":
		return SpaceRGB
	case "DeviceCMYK", "CMYK":
		return SpaceCMYK
	}
	return SpaceOther
}

// GraphicsState is the subset of the PDF graphics state that affects
// stroked geometry.
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	// Stroke colour as RGB in 0..1, whatever space it was set in
	StrokeColour [3]float64
	StrokeSpace  ColourSpace

	// Graphics state stack (for q/Q operators)
	stack []GraphicsState
}

// NewGraphicsState creates a graphics state with the given initial CTM and
// a black stroke.
func NewGraphicsState(ctm model.Matrix) *GraphicsState {
	return &GraphicsState{
		CTM:         ctm,
		StrokeSpace: SpaceGray,
	}
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	saved := *gs
	saved.stack = nil
	gs.stack = append(gs.stack, saved)
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}

	saved := gs.stack[len(gs.stack)-1]
	stack := gs.stack[:len(gs.stack)-1]
	*gs = saved
	gs.stack = stack
	return nil
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform concatenates m onto the CTM (cm operator). Points are mapped
// through m first and then through the previous CTM.
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// Apply maps a user-space point into default user space.
func (gs *GraphicsState) Apply(x, y float64) model.Point {
	return gs.CTM.Transform(model.Point{X: x, Y: y})
}

// SetStrokeRGB sets the stroke color (RG operator)
func (gs *GraphicsState) SetStrokeRGB(r, g, b float64) {
	gs.StrokeSpace = SpaceRGB
	gs.StrokeColour = [3]float64{r, g, b}
}

// SetStrokeGray sets a gray stroke (G operator)
func (gs *GraphicsState) SetStrokeGray(level float64) {
	gs.StrokeSpace = SpaceGray
	r, g, b := vector.GrayToRGB(level)
	gs.StrokeColour = [3]float64{r, g, b}
}

// SetStrokeCMYK sets a CMYK stroke (K operator)
func (gs *GraphicsState) SetStrokeCMYK(c, m, y, k float64) {
	gs.StrokeSpace = SpaceCMYK
	r, g, b := vector.CMYKToRGB(c, m, y, k)
	gs.StrokeColour = [3]float64{r, g, b}
}

// SetStrokeSpace selects a stroke colour space (CS operator) and resets the
// colour to the space's initial value, which is black for every device
// space.
func (gs *GraphicsState) SetStrokeSpace(space ColourSpace) {
	gs.StrokeSpace = space
	gs.StrokeColour = [3]float64{0, 0, 0}
}

// SetStrokeComponents sets the stroke colour from SC/SCN operands. One,
// three and four components are read as gray, RGB and CMYK; other counts
// (patterns, DeviceN) leave the colour unchanged.
func (gs *GraphicsState) SetStrokeComponents(vals []float64) {
	space := gs.StrokeSpace
	switch len(vals) {
	case 1:
		gs.SetStrokeGray(vals[0])
	case 3:
		gs.SetStrokeRGB(vals[0], vals[1], vals[2])
	case 4:
		gs.SetStrokeCMYK(vals[0], vals[1], vals[2], vals[3])
	default:
		return
	}
	if space == SpaceOther {
		gs.StrokeSpace = SpaceOther
	}
}
