package runs

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/takeoff/model"
)

func ann(size int, tt model.TrayType, x, y float64) model.TrayAnnotation {
	return model.TrayAnnotation{
		TrayEntry: model.TrayEntry{
			SizeMm:   size,
			TrayType: tt,
			IsNew:    true,
			RawText:  "label",
		},
		X:    x,
		Y:    y,
		EndX: x + 60,
	}
}

func withHeight(a model.TrayAnnotation, h float64) model.TrayAnnotation {
	a.HeightM = &h
	return a
}

func TestGroup_Order(t *testing.T) {
	groups := Group([]model.TrayAnnotation{
		ann(150, model.TrayFA, 0, 0),
		ann(100, model.TrayFA, 0, 0),
		ann(100, model.TrayLV, 50, 10),
		ann(100, model.TrayLV, 10, 10),
		ann(100, model.TrayLV, 99, 5),
	})

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if groups[0][0].TrayType != model.TrayLV || groups[1][0].TrayType != model.TrayFA || groups[2][0].SizeMm != 150 {
		t.Errorf("Unexpected group order")
	}

	lv := groups[0]
	if lv[0].X != 99 || lv[1].X != 10 || lv[2].X != 50 {
		t.Errorf("Expected (y, x) order, got %v %v %v", lv[0].Anchor(), lv[1].Anchor(), lv[2].Anchor())
	}
}

func TestAssemble_StraightRun(t *testing.T) {
	a := NewAssembler()
	runs := a.Assemble([]model.TrayAnnotation{
		ann(100, model.TrayLV, 100, 100),
		ann(100, model.TrayLV, 400, 100),
	}, nil, nil, 0.05)

	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.LengthM != 15 {
		t.Errorf("Expected 15 m, got %v", r.LengthM)
	}
	if r.WholesalerLengths != 5 {
		t.Errorf("Expected 5 wholesaler lengths, got %d", r.WholesalerLengths)
	}
	if len(r.Segments) != 1 || r.Segments[0].LengthM != 15 {
		t.Errorf("Unexpected segments %+v", r.Segments)
	}
	if r.EstimatedLength {
		t.Error("Measured run flagged as estimated")
	}
	if r.ID != 1 || r.AnnotationCount != 2 {
		t.Errorf("Unexpected id %d / count %d", r.ID, r.AnnotationCount)
	}
	if r.TPieces != 0 || r.CrossPieces != 0 {
		t.Error("T-pieces and crosses must stay zero")
	}
}

func TestAssemble_DiagonalPairSkipped(t *testing.T) {
	runs := NewAssembler().Assemble([]model.TrayAnnotation{
		ann(100, model.TrayLV, 0, 0),
		ann(100, model.TrayLV, 100, 100),
	}, nil, nil, 0.05)

	r := runs[0]
	if len(r.Segments) != 0 || r.LengthM != 0 || r.EstimatedLength {
		t.Errorf("Expected an unmeasured run, got %+v", r)
	}
	if r.WholesalerLengths != 0 {
		t.Errorf("Expected 0 wholesaler lengths, got %d", r.WholesalerLengths)
	}
}

func TestAssemble_SingleAnnotationMinimum(t *testing.T) {
	runs := NewAssembler().Assemble([]model.TrayAnnotation{
		withHeight(ann(225, model.TraySUB, 10, 10), 4.5),
	}, nil, nil, 0.05)

	r := runs[0]
	if r.LengthM != DefaultMinimumRunM || !r.EstimatedLength {
		t.Errorf("Expected estimated %v m, got %v (estimated=%v)", DefaultMinimumRunM, r.LengthM, r.EstimatedLength)
	}
	if r.WholesalerLengths != 4 {
		t.Errorf("Expected 4 wholesaler lengths, got %d", r.WholesalerLengths)
	}
	if r.HeightM == nil || *r.HeightM != 4.5 {
		t.Errorf("Expected height 4.5, got %v", r.HeightM)
	}
}

func TestBends(t *testing.T) {
	a := NewAssembler()

	tests := []struct {
		name string
		pts  [][2]float64
		want int
	}{
		{"straight", [][2]float64{{0, 0}, {100, 0}, {200, 0}}, 0},
		{"l shape", [][2]float64{{0, 0}, {200, 0}, {200, 200}}, 1},
		{"slight kink", [][2]float64{{0, 0}, {100, 0}, {200, 30}}, 0},
		{"two annotations", [][2]float64{{0, 0}, {0, 100}}, 0},
		{"repeated start", [][2]float64{{0, 0}, {0, 0}, {0, 100}}, 0},
		{"repeated end", [][2]float64{{0, 0}, {0, 100}, {0, 100}}, 0},
		{"repeated corner", [][2]float64{{0, 0}, {100, 0}, {100, 0}, {100, 100}}, 1},
		{"all same point", [][2]float64{{50, 50}, {50, 50}, {50, 50}}, 0},
	}

	for _, tt := range tests {
		var group []model.TrayAnnotation
		for _, p := range tt.pts {
			group = append(group, ann(100, model.TrayLV, p[0], p[1]))
		}
		if got := a.Bends(group); got != tt.want {
			t.Errorf("%s: expected %d bends, got %d", tt.name, tt.want, got)
		}
	}
}

func TestAssemble_LShapeRun(t *testing.T) {
	runs := NewAssembler().Assemble([]model.TrayAnnotation{
		ann(100, model.TrayLV, 200, 200),
		ann(100, model.TrayLV, 0, 0),
		ann(100, model.TrayLV, 200, 0),
	}, nil, nil, 0.05)

	r := runs[0]
	if r.Bends90 != 1 {
		t.Errorf("Expected 1 bend, got %d", r.Bends90)
	}
	if r.LengthM != 20 || len(r.Segments) != 2 {
		t.Errorf("Expected 20 m over 2 segments, got %v over %d", r.LengthM, len(r.Segments))
	}
}

func TestDrops(t *testing.T) {
	a := NewAssembler()
	group := []model.TrayAnnotation{
		ann(100, model.TrayLV, 0, 0),
		ann(100, model.TrayLV, 200, 0),
	}
	drops := []model.DropAnnotation{
		{X: 250, Y: 50},   // near the second label
		{X: 100, Y: -100}, // near both, counted once
		{X: 500, Y: 500},
		{X: 0, Y: 101},
	}
	if got := a.Drops(group, drops); got != 2 {
		t.Errorf("Expected 2 drops, got %d", got)
	}
}

func TestColour(t *testing.T) {
	a := NewAssembler()
	group := []model.TrayAnnotation{ann(100, model.TrayLV, 100, 100)}

	tests := []struct {
		name   string
		lines  []model.ColouredLine
		colour string
		source string
	}{
		{"palette fallback", nil, "#3b82f6", model.ColourFromPalette},
		{
			"majority",
			[]model.ColouredLine{
				{X: 110, Y: 110, ColourHex: "#ef4444"},
				{X: 160, Y: 100, ColourHex: "#ef4444"},
				{X: 500, Y: 500, ColourHex: "#22c55e"},
				{X: 180, Y: 130, ColourHex: "#14b8a6"},
			},
			"#ef4444", model.ColourFromDrawing,
		},
		{
			"tie goes to lowest hex",
			[]model.ColouredLine{
				{X: 130, Y: 100, ColourHex: "#ef4444"},
				{X: 130, Y: 100, ColourHex: "#14b8a6"},
			},
			"#14b8a6", model.ColourFromDrawing,
		},
	}

	for _, tt := range tests {
		colour, source := a.Colour(group, tt.lines)
		if colour != tt.colour || source != tt.source {
			t.Errorf("%s: expected %s/%s, got %s/%s", tt.name, tt.colour, tt.source, colour, source)
		}
	}

	colour, _ := a.Colour([]model.TrayAnnotation{ann(120, model.TrayLV, 0, 0)}, nil)
	if colour != FallbackColour {
		t.Errorf("Expected fallback colour, got %s", colour)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	annotations := []model.TrayAnnotation{
		ann(100, model.TrayLV, 0, 0),
		ann(100, model.TrayLV, 300, 0),
		ann(50, model.TrayFA, 40, 300),
		withHeight(ann(150, model.TrayELV, 0, 600), 3),
		ann(150, model.TrayELV, 0, 900),
	}
	drops := []model.DropAnnotation{{X: 310, Y: 20, DropType: model.DropCCTV}}
	lines := []model.ColouredLine{{X: 20, Y: 5, ColourHex: "#ef4444"}}

	before := make([]model.TrayAnnotation, len(annotations))
	copy(before, annotations)

	a := NewAssembler()
	first := a.Assemble(annotations, drops, lines, 0.04)
	second := a.Assemble(annotations, drops, lines, 0.04)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Assemble is not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, annotations); diff != "" {
		t.Errorf("Assemble modified its input:\n%s", diff)
	}
	for i, r := range first {
		if r.ID != i+1 {
			t.Errorf("Run %d: expected id %d, got %d", i, i+1, r.ID)
		}
	}
}

func TestAssemble_FirstID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstID = 100
	runs := NewAssemblerWithConfig(cfg).Assemble([]model.TrayAnnotation{
		ann(100, model.TrayLV, 0, 0),
		ann(50, model.TrayLV, 0, 0),
	}, nil, nil, 0.05)
	if runs[0].ID != 100 || runs[1].ID != 101 {
		t.Errorf("Expected ids 100, 101, got %d, %d", runs[0].ID, runs[1].ID)
	}
}

func TestSummarizeFittings(t *testing.T) {
	runs := []model.TrayRun{
		{SizeMm: 100, TrayType: model.TrayLV, WholesalerLengths: 5, Bends90: 1, Drops: 2},
		{SizeMm: 100, TrayType: model.TrayFA, WholesalerLengths: 3, Bends90: 2, Drops: 1},
		{SizeMm: 50, TrayType: model.TrayLV, WholesalerLengths: 0},
	}

	got := SummarizeFittings(runs)
	want := model.FittingSummary{
		"100mm": {Bends90: 3, Drops: 3, Couplers: 6},
		"50mm":  {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected summary (-want +got):\n%s", diff)
	}
}
