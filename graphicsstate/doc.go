// Package graphicsstate walks PDF content streams and reports the stroked
// geometry they draw.
//
// The [Walker] interprets the path construction and painting operators of a
// parsed content stream, tracking the graphics state stack (q/Q), the
// current transformation matrix (cm) and the stroke colour in the Gray, RGB
// and CMYK device spaces. Paths are emitted as [vector.Command] values in
// default user space, so a consumer never sees library-specific operators.
//
// Example usage:
//
//	ops, _ := contentstream.NewParser(data).Parse()
//	w := graphicsstate.NewWalker(resolver)
//	cmds := w.Walk(ops, resources, graphicsstate.PageMatrix(mediaBox))
//
// # Painting
//
// Stroking operators (S, s, B, B*, b, b*) emit a Stroke, preceded by a
// SetStrokeColour whenever the colour differs from the one last emitted.
// Fill-only and no-op painting (f, F, f*, n) emit EndPath so filled shapes
// never join the next stroked path. Rectangles (re) are emitted as a
// single [vector.Rectangle] rather than as lines.
//
// # Forms
//
// Form XObjects invoked with Do are followed through a [FormResolver],
// with their /Matrix applied, up to [MaxFormDepth] levels deep.
package graphicsstate
