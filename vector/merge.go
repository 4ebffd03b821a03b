package vector

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/tsawler/takeoff/model"
)

// MergeConfig controls how coloured paths are chained and measured.
type MergeConfig struct {
	// MergeDistance is the largest endpoint gap, in page units, at which
	// two same-colour paths are joined.
	MergeDistance float64

	// MinPathLength drops paths shorter than this many page units before
	// merging.
	MinPathLength float64

	// MinRunM drops measured runs shorter than this many metres.
	MinRunM float64
}

// DefaultMergeConfig returns the merge settings used for CAD exports.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		MergeDistance: 5,
		MinPathLength: 5,
		MinRunM:       0.5,
	}
}

func vec(p model.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func gap(a, b model.Point) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

func reversed(points []model.Point) []model.Point {
	out := make([]model.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// join tries to attach next to the chain. It returns the joined chain and
// whether the endpoints were close enough.
func join(chain, next []model.Point, dist float64) ([]model.Point, bool) {
	start, end := chain[0], chain[len(chain)-1]
	nStart, nEnd := next[0], next[len(next)-1]

	joined := make([]model.Point, 0, len(chain)+len(next))
	switch {
	case gap(end, nStart) < dist:
		joined = append(append(joined, chain...), next[1:]...)
	case gap(end, nEnd) < dist:
		joined = append(append(joined, chain...), reversed(next[:len(next)-1])...)
	case gap(start, nStart) < dist:
		joined = append(append(joined, reversed(next[1:])...), chain...)
	case gap(start, nEnd) < dist:
		joined = append(append(joined, next...), chain[1:]...)
	default:
		return chain, false
	}
	return joined, true
}

// MergeConnected chains same-colour paths whose endpoints touch. Each chain
// is grown greedily until no remaining path attaches to either end. Colours
// are processed in order of first appearance.
func MergeConnected(paths []Path, cfg MergeConfig) []Path {
	var order []string
	groups := make(map[string][]Path)
	for _, p := range paths {
		if len(p.Points) < 2 || p.Length() < cfg.MinPathLength {
			continue
		}
		if _, ok := groups[p.Colour]; !ok {
			order = append(order, p.Colour)
		}
		groups[p.Colour] = append(groups[p.Colour], p)
	}

	var merged []Path
	for _, colour := range order {
		remaining := groups[colour]
		for len(remaining) > 0 {
			chain := remaining[0].Points
			remaining = remaining[1:]

			for changed := true; changed; {
				changed = false
				var rest []Path
				for _, cand := range remaining {
					next, ok := join(chain, cand.Points, cfg.MergeDistance)
					if ok {
						chain = next
						changed = true
						continue
					}
					rest = append(rest, cand)
				}
				remaining = rest
			}
			merged = append(merged, Path{Colour: colour, Points: chain})
		}
	}
	return merged
}

// Measure converts merged paths into vector runs using metresPerUnit. Runs
// shorter than cfg.MinRunM are dropped. The result is ordered by length,
// longest first.
func Measure(paths []Path, metresPerUnit float64, cfg MergeConfig) []model.VectorRun {
	var runs []model.VectorRun
	for _, p := range paths {
		if len(p.Points) < 2 {
			continue
		}

		lengths := make([]float64, len(p.Points)-1)
		segments := make([]model.VectorSegment, len(p.Points)-1)
		xs := make([]float64, len(p.Points))
		ys := make([]float64, len(p.Points))
		for i, pt := range p.Points {
			xs[i], ys[i] = pt.X, pt.Y
			if i == 0 {
				continue
			}
			prev := p.Points[i-1]
			lengths[i-1] = gap(prev, pt)
			segments[i-1] = model.VectorSegment{
				X1:      model.Round(prev.X, 1),
				Y1:      model.Round(prev.Y, 1),
				X2:      model.Round(pt.X, 1),
				Y2:      model.Round(pt.Y, 1),
				LengthM: model.Round(lengths[i-1]*metresPerUnit, 2),
			}
		}

		units := floats.Sum(lengths)
		lengthM := model.Round(units*metresPerUnit, 2)
		if lengthM < cfg.MinRunM {
			continue
		}

		runs = append(runs, model.VectorRun{
			Colour:       p.Colour,
			LengthM:      lengthM,
			LengthUnits:  model.Round(units, 2),
			SegmentCount: len(segments),
			BBox:         model.BBoxOf(p.Points),
			Midpoint: model.Point{
				X: model.Round(stat.Mean(xs, nil), 1),
				Y: model.Round(stat.Mean(ys, nil), 1),
			},
			Segments: segments,
		})
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].LengthM > runs[j].LengthM
	})
	return runs
}

// Summarize totals vector runs per colour.
func Summarize(runs []model.VectorRun) map[string]model.ColourTotals {
	summary := make(map[string]model.ColourTotals)
	for _, r := range runs {
		t := summary[r.Colour]
		t.RunCount++
		t.TotalLengthM = model.Round(t.TotalLengthM+r.LengthM, 2)
		summary[r.Colour] = t
	}
	return summary
}
