package overlay

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/takeoff/model"
)

const svgNamespace = "http://www.w3.org/2000/svg"

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textElement(text string, attrs ...string) *html.Node {
	n := element("text", attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// RenderSVG draws the runs of r over a transparent page-sized canvas.
func RenderSVG(r *model.Result) (string, error) {
	return RenderSVGWithStyle(r, DefaultStyle())
}

// RenderSVGWithStyle is RenderSVG with a custom style.
func RenderSVGWithStyle(r *model.Result, style Style) (string, error) {
	width, height := canvasSize(r)

	svg := element("svg",
		"xmlns", svgNamespace,
		"width", formatCoord(width),
		"height", formatCoord(height),
		"viewBox", fmt.Sprintf("0 0 %s %s", formatCoord(width), formatCoord(height)),
	)

	for _, run := range r.TrayRuns {
		g := element("g",
			"class", "tray-run",
			"data-run-id", fmt.Sprint(run.ID),
			"data-label", run.Label(),
		)
		for _, s := range run.Segments {
			g.AppendChild(element("line",
				"x1", formatCoord(s.X1), "y1", formatCoord(s.Y1),
				"x2", formatCoord(s.X2), "y2", formatCoord(s.Y2),
				"stroke", run.ColourHex,
				"stroke-width", formatCoord(style.LineWidth),
				"stroke-linecap", "round",
				"stroke-opacity", formatCoord(style.Opacity),
			))
			mid := model.Point{X: s.X1, Y: s.Y1}.Midpoint(model.Point{X: s.X2, Y: s.Y2})
			g.AppendChild(textElement(segmentLabel(run, s),
				"x", formatCoord(mid.X),
				"y", formatCoord(mid.Y-style.LineWidth-2),
				"fill", run.ColourHex,
				"font-size", formatCoord(style.FontSize),
				"font-family", "sans-serif",
			))
		}
		svg.AppendChild(g)
	}

	svg.AppendChild(legendNode(Legend(r.TrayRuns), style))

	var buf bytes.Buffer
	if err := html.Render(&buf, svg); err != nil {
		return "", fmt.Errorf("failed to render overlay: %w", err)
	}
	return buf.String(), nil
}

func legendNode(entries []LegendEntry, style Style) *html.Node {
	g := element("g", "class", "legend",
		"transform", fmt.Sprintf("translate(%s,%s)", formatCoord(style.LegendX), formatCoord(style.LegendY)))

	boxHeight := style.LegendRow*float64(len(entries)+1) + 8
	g.AppendChild(element("rect",
		"x", "0", "y", "0",
		"width", "320", "height", formatCoord(boxHeight),
		"fill", style.Background, "fill-opacity", "0.9", "stroke", "#111827",
	))
	g.AppendChild(textElement("Containment takeoff",
		"x", "8", "y", formatCoord(style.LegendRow),
		"font-size", formatCoord(style.FontSize), "font-weight", "bold", "font-family", "sans-serif",
	))

	for i, e := range entries {
		y := style.LegendRow * float64(i+2)
		g.AppendChild(element("rect",
			"x", "8", "y", formatCoord(y-style.FontSize+2),
			"width", "12", "height", "10",
			"fill", e.ColourHex,
		))
		g.AppendChild(textElement(e.Label(),
			"x", "28", "y", formatCoord(y),
			"font-size", formatCoord(style.FontSize), "font-family", "sans-serif",
		))
	}
	return g
}

// canvasSize returns the page size, or the extent of the segments when the
// page size is unknown.
func canvasSize(r *model.Result) (float64, float64) {
	if r.PageWidth > 0 && r.PageHeight > 0 {
		return r.PageWidth, r.PageHeight
	}
	var pts []model.Point
	for _, run := range r.TrayRuns {
		for _, s := range run.Segments {
			pts = append(pts, model.Point{X: s.X1, Y: s.Y1}, model.Point{X: s.X2, Y: s.Y2})
		}
	}
	box := model.BBoxOf(pts)
	const margin = 50
	return max(box.X1+margin, 400), max(box.Y1+margin, 300)
}
