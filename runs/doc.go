// Package runs assembles tray annotations into takeoff runs.
//
// Annotations are grouped by (size, type). Within a group they are sorted by
// position and consecutive, roughly axis-aligned pairs become straight
// segments whose lengths, converted to metres, make up the run length.
// Changes of direction between segments count as 90° bends, nearby drop
// labels count as drops, and the colour of the strokes drawn under the
// labels becomes the run colour.
//
// The lengths are estimates from annotation spacing, not traced
// centre-lines. T-pieces and crosses are not detected and stay zero.
package runs
