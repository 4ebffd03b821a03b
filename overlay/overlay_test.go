package overlay

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/tsawler/takeoff/model"
)

func sampleResult() *model.Result {
	return &model.Result{
		PageWidth:  842,
		PageHeight: 595,
		TrayRuns: []model.TrayRun{
			{
				ID: 1, SizeMm: 100, TrayType: model.TrayLV, LengthM: 12.5, WholesalerLengths: 5,
				ColourHex: "#ef4444",
				Segments: []model.TraySegment{
					{X1: 100, Y1: 300, X2: 500, Y2: 300, LengthM: 10},
					{X1: 500, Y1: 300, X2: 500, Y2: 400, LengthM: 2.5},
				},
			},
			{
				ID: 2, SizeMm: 50, TrayType: model.TrayFA, LengthM: 10, WholesalerLengths: 4,
				ColourHex:       "#3b82f6",
				EstimatedLength: true,
			},
		},
	}
}

func TestLegend(t *testing.T) {
	runs := []model.TrayRun{
		{SizeMm: 100, TrayType: model.TrayLV, LengthM: 12.5, WholesalerLengths: 5, ColourHex: "#111111"},
		{SizeMm: 50, TrayType: model.TrayFA, LengthM: 10, WholesalerLengths: 4, ColourHex: "#222222"},
		{SizeMm: 100, TrayType: model.TrayLV, LengthM: 3.1, WholesalerLengths: 2, ColourHex: "#333333"},
		{SizeMm: 100, TrayType: model.TrayELV, LengthM: 1, WholesalerLengths: 1, ColourHex: "#444444"},
	}

	got := Legend(runs)
	if len(got) != 3 {
		t.Fatalf("expected 3 legend entries, got %d", len(got))
	}

	if got[0].SizeMm != 50 || got[0].TrayType != model.TrayFA {
		t.Errorf("first entry = %d %s, want 50 FA", got[0].SizeMm, got[0].TrayType)
	}
	if got[2].TrayType != model.TrayELV {
		t.Errorf("third entry type = %s, want ELV", got[2].TrayType)
	}

	lv := got[1]
	if lv.LengthM != 15.6 || lv.WholesalerLengths != 7 || lv.Runs != 2 {
		t.Errorf("LV entry = %+v", lv)
	}
	if lv.ColourHex != "#111111" {
		t.Errorf("LV colour = %s, want colour of first run", lv.ColourHex)
	}
	if want := "100mm LV: 15.6 m (7 x 3 m lengths)"; lv.Label() != want {
		t.Errorf("Label() = %q, want %q", lv.Label(), want)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(sampleResult())
	if err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"root", `<svg xmlns="http://www.w3.org/2000/svg"`},
		{"view box", `viewBox="0 0 842 595"`},
		{"run group", `data-label="100mm LV"`},
		{"first segment", `x1="100" y1="300" x2="500" y2="300" stroke="#ef4444"`},
		{"segment label", `100mm LV 10.0 m`},
		{"legend", `100mm LV: 12.5 m (5 x 3 m lengths)`},
		{"estimated run in legend", `50mm FA: 10.0 m (4 x 3 m lengths)`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(svg, tc.want) {
				t.Errorf("overlay missing %q", tc.want)
			}
		})
	}

	if n := strings.Count(svg, "<line "); n != 2 {
		t.Errorf("expected 2 lines, got %d", n)
	}
	if n := strings.Count(svg, `class="tray-run"`); n != 2 {
		t.Errorf("expected 2 run groups, got %d", n)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg, err := RenderSVG(&model.Result{PageWidth: 100, PageHeight: 50})
	if err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	if strings.Contains(svg, "<line") {
		t.Error("empty result should draw no lines")
	}
	if !strings.Contains(svg, `class="legend"`) {
		t.Error("legend block should always be present")
	}
}

func TestRenderSVGWithoutPageSize(t *testing.T) {
	r := sampleResult()
	r.PageWidth, r.PageHeight = 0, 0

	svg, err := RenderSVG(r)
	if err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	if !strings.Contains(svg, `viewBox="0 0 550 450"`) {
		t.Errorf("expected view box from segment extent, got %s", svg[:120])
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(sampleResult(), 842)
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 842 || b.Dy() != 595 {
		t.Fatalf("image size = %dx%d, want 842x595", b.Dx(), b.Dy())
	}

	on := color.RGBAModel.Convert(img.At(200, 300)).(color.RGBA)
	if on != (color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}) {
		t.Errorf("pixel on segment = %v, want run colour", on)
	}
	off := color.RGBAModel.Convert(img.At(700, 550)).(color.RGBA)
	if off != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("background pixel = %v, want white", off)
	}
}

func TestRenderPNGWidth(t *testing.T) {
	for _, w := range []int{0, -5, MaxPNGWidth + 1} {
		if _, err := RenderPNG(sampleResult(), w); err == nil {
			t.Errorf("width %d: expected error", w)
		}
	}

	data, err := RenderPNG(sampleResult(), 421)
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 421 || img.Bounds().Dy() != 298 {
		t.Errorf("scaled size = %v", img.Bounds())
	}
}

func TestRenderPNGHeightBounded(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		pixels        int
	}{
		{"tall page", 1, 1e6, 2000},
		{"narrow page", 1e-9, 595, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &model.Result{PageWidth: tt.width, PageHeight: tt.height}
			if _, err := RenderPNG(r, tt.pixels); err == nil {
				t.Error("expected error for oversized raster")
			}
		})
	}

	r := &model.Result{PageWidth: 1, PageHeight: MaxPNGHeight / 10}
	img, err := Rasterize(r, 10, DefaultStyle())
	if err != nil {
		t.Fatalf("Rasterize at the height limit failed: %v", err)
	}
	if img.Bounds().Dy() != MaxPNGHeight {
		t.Errorf("height = %d, want %d", img.Bounds().Dy(), MaxPNGHeight)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ef4444", color.RGBA{0xef, 0x44, 0x44, 0xff}},
		{"00ff80", color.RGBA{0x00, 0xff, 0x80, 0xff}},
		{"#fff", color.RGBA{0x6b, 0x72, 0x80, 0xff}},
		{"#zzzzzz", color.RGBA{0x6b, 0x72, 0x80, 0xff}},
	}
	for _, tc := range tests {
		if got := ParseHex(tc.in); got != tc.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
