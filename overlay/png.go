package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"github.com/tsawler/takeoff/model"
)

// MaxPNGWidth and MaxPNGHeight bound the raster size.
const (
	MaxPNGWidth  = 8000
	MaxPNGHeight = 8000
)

// RenderPNG rasterises the overlay at the given pixel width on a white
// background and returns PNG bytes.
func RenderPNG(r *model.Result, width int) ([]byte, error) {
	img, err := Rasterize(r, width, DefaultStyle())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize draws the overlay into a new RGBA image width pixels wide.
func Rasterize(r *model.Result, width int, style Style) (*image.RGBA, error) {
	if width <= 0 || width > MaxPNGWidth {
		return nil, fmt.Errorf("invalid overlay width %d", width)
	}
	pageW, pageH := canvasSize(r)
	scale := float64(width) / pageW
	h := math.Round(pageH * scale)
	if !(h <= MaxPNGHeight) {
		return nil, fmt.Errorf("overlay height for width %d exceeds %d pixels", width, MaxPNGHeight)
	}
	height := max(1, int(h))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(ParseHex(style.Background)), image.Point{}, draw.Src)

	raster := xvector.NewRasterizer(width, height)
	half := math.Max(style.LineWidth*scale/2, 0.5)

	for _, run := range r.TrayRuns {
		c := ParseHex(run.ColourHex)
		for _, s := range run.Segments {
			strokeSegment(raster, s.X1*scale, s.Y1*scale, s.X2*scale, s.Y2*scale, half)
			raster.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
			raster.Reset(width, height)

			mid := model.Point{X: s.X1, Y: s.Y1}.Midpoint(model.Point{X: s.X2, Y: s.Y2})
			drawText(img, segmentLabel(run, s), mid.X*scale, mid.Y*scale-half-2, c)
		}
	}

	y := 16.0
	drawText(img, "Containment takeoff", 8, y, color.Black)
	for _, e := range Legend(r.TrayRuns) {
		y += 16
		swatch := image.Rect(8, int(y)-10, 20, int(y))
		draw.Draw(img, swatch, image.NewUniform(ParseHex(e.ColourHex)), image.Point{}, draw.Src)
		drawText(img, e.Label(), 26, y, color.Black)
	}
	return img, nil
}

// strokeSegment adds a segment as a filled quad of half-width half.
func strokeSegment(z *xvector.Rasterizer, x1, y1, x2, y2, half float64) {
	vx, vy := x2-x1, y2-y1
	l := math.Hypot(vx, vy)
	if l == 0 {
		// Zero-length segments become a square dot.
		z.MoveTo(float32(x1-half), float32(y1-half))
		z.LineTo(float32(x1+half), float32(y1-half))
		z.LineTo(float32(x1+half), float32(y1+half))
		z.LineTo(float32(x1-half), float32(y1+half))
		z.ClosePath()
		return
	}
	nx, ny := -vy/l*half, vx/l*half
	z.MoveTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x2+nx), float32(y2+ny))
	z.LineTo(float32(x2-nx), float32(y2-ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.ClosePath()
}

func drawText(dst draw.Image, text string, x, y float64, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(text)
}

// ParseHex parses "#rrggbb" into an opaque colour. Malformed input gives
// mid grey.
func ParseHex(hex string) color.RGBA {
	grey := color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
