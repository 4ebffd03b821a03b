// Package vector recovers colour-coded strokes from a page's drawing
// commands.
//
// Drafters mark cable containment with coloured lines. A PDF backend
// translates the page's path operators into the neutral [Command] union
// (see package graphicsstate), and [ColourExtractor] walks that stream,
// recording each stroked path whose colour passes the [ColourFilter]. Black
// building lines, grey hatching and near-white fills are discarded.
//
// Two views of the kept strokes are produced. [ColouredLine] values (one per
// stroke, at the path centroid) are used to colour tray runs by proximity.
// Full [Path] values can be chained with [MergeConnected] and measured with
// [Measure] to give per-colour lengths taken directly from the drawing.
//
// Curves contribute only their end point; no tessellation is done.
//
// All coordinates in this package's output are top-down page units.
package vector
