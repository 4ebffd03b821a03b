package graphicsstate

import (
	"fmt"

	"github.com/tsawler/tabula/contentstream"
	"github.com/tsawler/tabula/core"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/vector"
)

// MaxFormDepth limits how deeply nested form XObjects are followed.
const MaxFormDepth = 8

// Form is a resolved form XObject.
type Form struct {
	Operations []contentstream.Operation
	Matrix     model.Matrix

	// Resources of the form; nil means the form uses its caller's.
	Resources core.Dict
}

// FormResolver looks up form XObjects by resource name.
type FormResolver interface {
	// ResolveForm returns the form called name in resources. It returns
	// nil and no error when the XObject exists but is not a form.
	ResolveForm(resources core.Dict, name string) (*Form, error)
}

// FormResolverFunc adapts a function to FormResolver.
type FormResolverFunc func(resources core.Dict, name string) (*Form, error)

// ResolveForm calls f.
func (f FormResolverFunc) ResolveForm(resources core.Dict, name string) (*Form, error) {
	return f(resources, name)
}

// PageMatrix returns the initial CTM for a page, moving the MediaBox origin
// to (0, 0).
func PageMatrix(mediaBox []float64) model.Matrix {
	if len(mediaBox) < 4 {
		return model.Identity()
	}
	return model.Translate(-mediaBox[0], -mediaBox[1])
}

// Walker converts content stream operations into drawing commands. It
// keeps no state between walks and is safe for concurrent use.
type Walker struct {
	forms    FormResolver
	maxDepth int
}

// NewWalker creates a walker. forms may be nil, in which case Do
// operators are ignored.
func NewWalker(forms FormResolver) *Walker {
	return &Walker{forms: forms, maxDepth: MaxFormDepth}
}

// WalkResult holds the commands of one walk.
type WalkResult struct {
	Commands []vector.Command

	// Strokes counts the stroking operators seen.
	Strokes int

	// FormErrors holds resolution failures of forms that were skipped.
	FormErrors []error
}

// walk is the state of a single Walk call.
type walk struct {
	w    *Walker
	gs   *GraphicsState
	path *Path
	res  WalkResult

	lastColour [3]float64
	hasColour  bool

	// floor is the stack depth at which the current stream started.
	floor int
}

// Walk interprets ops against resources, starting from the CTM ctm.
func (w *Walker) Walk(ops []contentstream.Operation, resources core.Dict, ctm model.Matrix) WalkResult {
	gs := NewGraphicsState(ctm)
	st := &walk{w: w, gs: gs, path: NewPath(gs)}
	st.run(ops, resources, 0)
	return st.res
}

func (st *walk) run(ops []contentstream.Operation, resources core.Dict, depth int) {
	for _, op := range ops {
		st.processOperation(op, resources, depth)
	}
}

func (st *walk) emit(cmds ...vector.Command) {
	st.res.Commands = append(st.res.Commands, cmds...)
}

// paint flushes the current path. Stroked paths are preceded by the stroke
// colour when it changed since the last stroke.
func (st *walk) paint(stroke bool) {
	if st.path.IsEmpty() {
		return
	}
	st.emit(st.path.Commands()...)
	if stroke {
		st.res.Strokes++
		if !st.hasColour || st.lastColour != st.gs.StrokeColour {
			c := st.gs.StrokeColour
			// The colour applies to the whole path, so it may follow the
			// construction commands.
			st.emit(vector.SetStrokeColour{R: c[0], G: c[1], B: c[2]})
			st.lastColour = c
			st.hasColour = true
		}
		st.emit(vector.Stroke{})
	} else {
		st.emit(vector.EndPath{})
	}
	st.path.Clear()
}

func (st *walk) processOperation(op contentstream.Operation, resources core.Dict, depth int) {
	gs := st.gs
	switch op.Operator {
	// Graphics state operators
	case "q":
		gs.Save()
	case "Q":
		// A Q without a matching q in the same stream is ignored.
		if gs.Depth() > st.floor {
			_ = gs.Restore()
		}
	case "cm":
		if m, ok := operandsToMatrix(op.Operands); ok {
			gs.Transform(m)
		}

	// Stroke colour operators
	case "RG":
		if vals, ok := floats(op.Operands, 3); ok {
			gs.SetStrokeRGB(vals[0], vals[1], vals[2])
		}
	case "G":
		if vals, ok := floats(op.Operands, 1); ok {
			gs.SetStrokeGray(vals[0])
		}
	case "K":
		if vals, ok := floats(op.Operands, 4); ok {
			gs.SetStrokeCMYK(vals[0], vals[1], vals[2], vals[3])
		}
	case "CS":
		if len(op.Operands) == 1 {
			if name, ok := op.Operands[0].(core.Name); ok {
				gs.SetStrokeSpace(ParseColourSpace(string(name)))
			}
		}
	case "SC", "SCN":
		// A trailing pattern name is not a colour component.
		var vals []float64
		for _, o := range op.Operands {
			if v, ok := toFloat(o); ok {
				vals = append(vals, v)
			}
		}
		gs.SetStrokeComponents(vals)

	// Path construction operators
	case "m":
		if vals, ok := floats(op.Operands, 2); ok {
			st.path.MoveTo(vals[0], vals[1])
		}
	case "l":
		if vals, ok := floats(op.Operands, 2); ok {
			st.path.LineTo(vals[0], vals[1])
		}
	case "c":
		if v, ok := floats(op.Operands, 6); ok {
			st.path.CurveTo(v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case "v":
		if v, ok := floats(op.Operands, 4); ok {
			st.path.CurveToV(v[0], v[1], v[2], v[3])
		}
	case "y":
		if v, ok := floats(op.Operands, 4); ok {
			st.path.CurveToY(v[0], v[1], v[2], v[3])
		}
	case "h":
		st.path.ClosePath()
	case "re":
		if v, ok := floats(op.Operands, 4); ok {
			st.path.Rectangle(v[0], v[1], v[2], v[3])
		}

	// Path painting operators
	case "S", "B", "B*":
		st.paint(true)
	case "s", "b", "b*":
		st.path.ClosePath()
		st.paint(true)
	case "f", "F", "f*", "n":
		st.paint(false)

	// XObjects
	case "Do":
		if len(op.Operands) == 1 {
			if name, ok := op.Operands[0].(core.Name); ok {
				st.doForm(string(name), resources, depth)
			}
		}
	}
}

func (st *walk) doForm(name string, resources core.Dict, depth int) {
	if st.w.forms == nil || depth >= st.w.maxDepth {
		return
	}
	form, err := st.w.forms.ResolveForm(resources, name)
	if err != nil {
		st.res.FormErrors = append(st.res.FormErrors, fmt.Errorf("form %s: %w", name, err))
		return
	}
	if form == nil {
		return
	}

	formResources := form.Resources
	if formResources == nil {
		formResources = resources
	}

	outer, outerFloor := st.path, st.floor
	base := st.gs.Depth()
	st.path = NewPath(st.gs)
	st.gs.Save()
	st.floor = st.gs.Depth()
	st.gs.Transform(form.Matrix)

	st.run(form.Operations, formResources, depth+1)

	// Drop whatever the form left saved, then the state saved here.
	for st.gs.Depth() > base {
		_ = st.gs.Restore()
	}
	st.path, st.floor = outer, outerFloor
}

// Helper functions

func toFloat(obj core.Object) (float64, bool) {
	switch v := obj.(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// floats converts exactly n numeric operands.
func floats(operands []core.Object, n int) ([]float64, bool) {
	if len(operands) != n {
		return nil, false
	}
	vals := make([]float64, n)
	for i, op := range operands {
		v, ok := toFloat(op)
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func operandsToMatrix(operands []core.Object) (model.Matrix, bool) {
	vals, ok := floats(operands, 6)
	if !ok {
		return model.Identity(), false
	}
	return model.Matrix(vals), true
}
