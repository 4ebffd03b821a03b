// Package overlay draws a takeoff's tray runs for visual checking.
//
// [RenderSVG] produces an SVG document sized to the page, with one coloured
// line and label per run segment and a legend totalling length and stock
// lengths per size and type. [RenderPNG] rasterises the same picture for
// previews. Both are pure functions of the result.
package overlay

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tsawler/takeoff/model"
)

// Style holds the drawing parameters shared by both renderers.
type Style struct {
	LineWidth  float64
	FontSize   float64
	Opacity    float64
	LegendX    float64
	LegendY    float64
	LegendRow  float64
	Background string
}

// DefaultStyle returns the default overlay style.
func DefaultStyle() Style {
	return Style{
		LineWidth:  4,
		FontSize:   12,
		Opacity:    0.85,
		LegendX:    20,
		LegendY:    20,
		LegendRow:  18,
		Background: "#ffffff",
	}
}

// LegendEntry totals the runs of one size and type.
type LegendEntry struct {
	SizeMm            int
	TrayType          model.TrayType
	ColourHex         string
	LengthM           float64
	WholesalerLengths int
	Runs              int
}

// Label returns the legend line text.
func (e LegendEntry) Label() string {
	return fmt.Sprintf("%dmm %s: %s m (%d x 3 m lengths)",
		e.SizeMm, e.TrayType, formatLength(e.LengthM), e.WholesalerLengths)
}

// Legend groups runs by size and type, ordered by size then type.
func Legend(runs []model.TrayRun) []LegendEntry {
	type key struct {
		size int
		tt   model.TrayType
	}
	index := make(map[key]int)
	var entries []LegendEntry
	for _, r := range runs {
		k := key{r.SizeMm, r.TrayType}
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, LegendEntry{SizeMm: r.SizeMm, TrayType: r.TrayType, ColourHex: r.ColourHex})
		}
		entries[i].LengthM = model.Round(entries[i].LengthM+r.LengthM, 1)
		entries[i].WholesalerLengths += r.WholesalerLengths
		entries[i].Runs++
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SizeMm != entries[j].SizeMm {
			return entries[i].SizeMm < entries[j].SizeMm
		}
		return entries[i].TrayType.Order() < entries[j].TrayType.Order()
	})
	return entries
}

// segmentLabel is the text drawn beside a segment.
func segmentLabel(r model.TrayRun, s model.TraySegment) string {
	return fmt.Sprintf("%s %s m", r.Label(), formatLength(s.LengthM))
}

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(model.Round(v, 2), 'f', -1, 64)
}
