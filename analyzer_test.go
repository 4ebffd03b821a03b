package takeoff

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/questions"
	"github.com/tsawler/takeoff/scale"
	"github.com/tsawler/takeoff/trace"
	"github.com/tsawler/takeoff/vector"
)

// words lays out a label as word tokens starting at (x, y), six units per
// character with a one-character space.
func words(text string, x, y float64) []model.PositionedToken {
	var toks []model.PositionedToken
	for _, w := range strings.Fields(text) {
		width := float64(len(w)) * 6
		toks = append(toks, model.PositionedToken{Text: w, X: x, Y: y, Width: width, Height: 8})
		x += width + 6
	}
	return toks
}

func samplePage() PageInput {
	var toks []model.PositionedToken
	toks = append(toks, words("100 LV TRAY @3000", 100, 100)...)
	toks = append(toks, words("100 LV TRAY @3000", 500, 100)...)
	toks = append(toks, words("EX 150 LV TRAY", 100, 300)...)
	toks = append(toks, words("CCTV DROP", 520, 150)...)
	toks = append(toks, words("SCALE 1:100", 600, 500)...)
	toks = append(toks, words("A1", 700, 500)...)

	const pageHeight = 595
	blue := vector.SetStrokeColour{R: 59.0 / 255, G: 130.0 / 255, B: 246.0 / 255}
	cmds := []vector.Command{
		vector.MoveTo{X: 100, Y: pageHeight - 104},
		vector.LineTo{X: 160, Y: pageHeight - 104},
		blue,
		vector.Stroke{},
		vector.MoveTo{X: 0, Y: 0},
		vector.LineTo{X: 841, Y: 0},
		vector.SetStrokeColour{},
		vector.Stroke{},
	}

	return PageInput{
		DrawingRef: "E-101",
		Page:       1,
		Tokens:     model.TokenPage{Tokens: toks, PageWidth: 841, PageHeight: pageHeight},
		Commands:   cmds,
	}
}

func TestAnalyzePage(t *testing.T) {
	res := NewAnalyzer(DefaultConfig()).AnalyzePage(samplePage())

	if res.DrawingRef != "E-101" || !res.HasTextLayer || res.TokenSource != model.TokensFromText {
		t.Fatalf("unexpected header %+v", res)
	}
	if res.Scale != "1:100" || !res.ScaleDetected || res.PaperSize != "A1" || !res.PaperDetected {
		t.Errorf("scale = %s %s (%v, %v)", res.Scale, res.PaperSize, res.ScaleDetected, res.PaperDetected)
	}
	if res.MetresPerUnit != 0.1 {
		t.Errorf("MetresPerUnit = %v, want 0.1", res.MetresPerUnit)
	}

	if len(res.TrayRuns) != 1 {
		t.Fatalf("expected 1 run, got %d: %+v", len(res.TrayRuns), res.TrayRuns)
	}
	run := res.TrayRuns[0]
	if run.ID != 1 || run.SizeMm != 100 || run.TrayType != model.TrayLV {
		t.Errorf("run = %d %s", run.ID, run.Label())
	}
	if run.LengthM != 40 || run.WholesalerLengths != 14 {
		t.Errorf("length = %v m, %d lengths; want 40 m, 14", run.LengthM, run.WholesalerLengths)
	}
	if run.HeightM == nil || *run.HeightM != 3 {
		t.Errorf("height = %v, want 3", run.HeightM)
	}
	if run.Drops != 1 {
		t.Errorf("drops = %d, want 1", run.Drops)
	}
	if run.ColourHex != "#3b82f6" || run.ColourSource != model.ColourFromDrawing {
		t.Errorf("colour = %s from %s", run.ColourHex, run.ColourSource)
	}
	if !run.StatusDefaulted {
		t.Error("unmarked labels should be flagged as defaulted")
	}

	if len(res.ExistingAnnotations) != 1 || res.ExistingAnnotations[0].SizeMm != 150 {
		t.Errorf("existing = %+v", res.ExistingAnnotations)
	}
	if len(res.DropAnnotations) != 1 || res.DropAnnotations[0].DropType != model.DropCCTV {
		t.Errorf("drops = %+v", res.DropAnnotations)
	}
	if res.ColouredLineCount != 1 {
		t.Errorf("coloured lines = %d, want 1", res.ColouredLineCount)
	}
	if len(res.VectorRuns) != 1 || res.ColourSummary["#3b82f6"].RunCount != 1 {
		t.Errorf("vector runs = %+v, summary = %+v", res.VectorRuns, res.ColourSummary)
	}

	fit := res.FittingSummary["100mm"]
	if fit.Couplers != 13 || fit.Drops != 1 || fit.TPieces != 0 || fit.CrossPieces != 0 {
		t.Errorf("fittings = %+v", fit)
	}

	var ids []string
	for _, q := range res.Questions {
		ids = append(ids, q.ID)
	}
	want := []string{questions.IDExistingTray, questions.IDDropAllowance, questions.IDTrayDuty}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("question ids mismatch (-want +got):\n%s", diff)
	}

	if !contains(res.DrawingNotes, NoteJunctions) || !contains(res.DrawingNotes, NoteLengthEstimate) {
		t.Errorf("notes = %v", res.DrawingNotes)
	}
}

func TestAnalyzePage_Idempotent(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	in := samplePage()

	first := a.AnalyzePage(in)
	second := a.AnalyzePage(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated analysis differs (-first +second):\n%s", diff)
	}
}

func TestAnalyzePage_NoText(t *testing.T) {
	res := NewAnalyzer(DefaultConfig()).AnalyzePage(PageInput{
		DrawingRef: "scan",
		Tokens:     model.TokenPage{PageWidth: 842, PageHeight: 595},
	})

	if res.HasTextLayer || res.TokenSource != model.TokensNone {
		t.Errorf("HasTextLayer = %v, TokenSource = %q", res.HasTextLayer, res.TokenSource)
	}
	if len(res.TrayRuns) != 0 {
		t.Errorf("expected no runs, got %d", len(res.TrayRuns))
	}
	if len(res.Questions) != 1 || res.Questions[0].ID != questions.IDNoText {
		t.Fatalf("questions = %+v", res.Questions)
	}
	for _, o := range res.Questions[0].Options {
		if o.Value == "retry" {
			t.Error("no-text question must not offer retry")
		}
	}
	if res.Page != 1 || res.PageWidth != 842 {
		t.Errorf("page = %d, width = %v", res.Page, res.PageWidth)
	}
}

func TestAnalyzePage_NoTextMeasuresLinework(t *testing.T) {
	blue := vector.SetStrokeColour{R: 59.0 / 255, G: 130.0 / 255, B: 246.0 / 255}
	res := NewAnalyzer(DefaultConfig()).AnalyzePage(PageInput{
		DrawingRef: "scan",
		Tokens:     model.TokenPage{PageWidth: 841, PageHeight: 595},
		Commands: []vector.Command{
			blue,
			vector.MoveTo{X: 100, Y: 100},
			vector.LineTo{X: 500, Y: 100},
			vector.Stroke{},
		},
		Overrides: scale.Overrides{PaperSize: "A1"},
	})

	if len(res.Questions) != 1 || res.Questions[0].ID != questions.IDNoText {
		t.Fatalf("questions = %+v", res.Questions)
	}
	if len(res.VectorRuns) != 1 {
		t.Fatalf("expected 1 vector run, got %d", len(res.VectorRuns))
	}
	// A1 at 1:100 on an 841 unit page is 0.1 m per unit.
	if got := res.VectorRuns[0].LengthM; got != 40 {
		t.Errorf("LengthM = %v, want 40", got)
	}
	if res.Scale != "1:100" || res.PaperSize != "A1" {
		t.Errorf("scale = %q %q", res.Scale, res.PaperSize)
	}
	if len(res.TrayRuns) != 0 {
		t.Errorf("expected no tray runs, got %d", len(res.TrayRuns))
	}
}

func TestAnalyzePage_ColourFailure(t *testing.T) {
	in := samplePage()
	in.Commands = nil
	in.CommandsErr = errors.New("bad content stream")

	var warned bool
	tracer := trace.TracerFunc(func(e trace.Event) {
		if e.Stage == trace.StageColour && e.Err != nil {
			warned = true
		}
	})

	res := NewAnalyzer(DefaultConfig(), WithTracer(tracer)).AnalyzePage(in)
	if !warned {
		t.Error("expected a colour stage event carrying the error")
	}
	if len(res.TrayRuns) != 1 {
		t.Fatalf("expected 1 run, got %d", len(res.TrayRuns))
	}
	if res.TrayRuns[0].ColourSource != model.ColourFromPalette || res.TrayRuns[0].ColourHex != "#3b82f6" {
		t.Errorf("colour = %s from %s", res.TrayRuns[0].ColourHex, res.TrayRuns[0].ColourSource)
	}
	if !contains(res.DrawingNotes, NoteColourFailed) {
		t.Errorf("notes = %v", res.DrawingNotes)
	}
}

func TestAnalyzePage_Overrides(t *testing.T) {
	in := samplePage()
	in.Overrides.Ratio = 50
	in.Overrides.PaperSize = "a0"

	res := NewAnalyzer(DefaultConfig()).AnalyzePage(in)
	if res.Scale != "1:50" || res.PaperSize != "A0" {
		t.Errorf("scale = %s on %s, want 1:50 on A0", res.Scale, res.PaperSize)
	}
}

func TestAnalyzePage_CombinedAndFilter(t *testing.T) {
	toks := words("NEW 100 ELV, 100 LV AND 50 FA TRAY @12500", 100, 100)
	res := NewAnalyzer(DefaultConfig()).AnalyzePage(PageInput{
		DrawingRef: "E-102",
		Tokens:     model.TokenPage{Tokens: toks, PageWidth: 1189, PageHeight: 841},
	})

	if len(res.TrayRuns) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(res.TrayRuns))
	}
	for _, r := range res.TrayRuns {
		if !r.EstimatedLength || r.LengthM != 10 {
			t.Errorf("run %s: length %v estimated=%v", r.Label(), r.LengthM, r.EstimatedLength)
		}
		if r.HeightM == nil || *r.HeightM != 12.5 {
			t.Errorf("run %s: height %v", r.Label(), r.HeightM)
		}
		if r.StatusDefaulted {
			t.Errorf("run %s: NEW marker should not be defaulted", r.Label())
		}
	}

	q, ok := res.Question(questions.IDTrayFilter)
	if !ok || q.DefaultValue != "LV" {
		t.Errorf("tray filter question = %+v, %v", q, ok)
	}
	if _, ok := res.Question(questions.IDCombined); !ok {
		t.Error("expected combined-annotations question")
	}
	if res.ScaleDetected || res.PaperDetected {
		t.Error("scale and paper should be defaulted")
	}
}

func TestAnalyzePage_DropWordsInsideTrayLabels(t *testing.T) {
	tests := []struct {
		name  string
		label string
		runs  int
	}{
		{"cab suffix", "150 LV TRAY CAB", 1},
		{"cabinet destination", "300 SUB LADDER TO CABINET", 1},
		{"rack suffix", "100 ELV BASKET RACK", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewAnalyzer(DefaultConfig()).AnalyzePage(PageInput{
				DrawingRef: "E-103",
				Tokens:     model.TokenPage{Tokens: words(tt.label, 100, 100), PageWidth: 841, PageHeight: 595},
			})
			if len(res.TrayRuns) != tt.runs {
				t.Fatalf("expected %d runs, got %d", tt.runs, len(res.TrayRuns))
			}
			if len(res.DropAnnotations) != 0 {
				t.Errorf("expected no drops, got %+v", res.DropAnnotations)
			}
			for _, r := range res.TrayRuns {
				if r.Drops != 0 {
					t.Errorf("run %s: drops = %d, want 0", r.Label(), r.Drops)
				}
			}
			if _, ok := res.Question(questions.IDDropAllowance); ok {
				t.Error("unexpected drop-allowance question")
			}
		})
	}
}

func TestAnalyzePage_AssumeExisting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatusPolicy = "existing"

	res := NewAnalyzer(cfg).AnalyzePage(samplePage())
	if len(res.TrayRuns) != 0 {
		t.Errorf("expected unmarked labels to be excluded, got %d runs", len(res.TrayRuns))
	}
	if len(res.ExistingAnnotations) != 3 {
		t.Errorf("expected 3 existing annotations, got %d", len(res.ExistingAnnotations))
	}
	if !contains(res.DrawingNotes, "2 unmarked tray label(s) were treated as existing and excluded.") {
		t.Errorf("notes = %v", res.DrawingNotes)
	}
}

func TestAnalyzePage_Trace(t *testing.T) {
	var stages []string
	tracer := trace.TracerFunc(func(e trace.Event) {
		if e.DrawingRef != "E-101" {
			t.Errorf("event %s has drawing ref %q", e.Stage, e.DrawingRef)
		}
		stages = append(stages, e.Stage)
	})

	NewAnalyzer(DefaultConfig(), WithTracer(tracer)).AnalyzePage(samplePage())

	want := []string{
		trace.StageTokens, trace.StagePhrases, trace.StageGrammar, trace.StageScale,
		trace.StageColour, trace.StageRuns, trace.StageFittings, trace.StageQuestion, trace.StageDone,
	}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzePage_GeneratesRef(t *testing.T) {
	in := samplePage()
	in.DrawingRef = ""
	a := NewAnalyzer(DefaultConfig())

	r1, r2 := a.AnalyzePage(in), a.AnalyzePage(in)
	if r1.DrawingRef == "" || r1.DrawingRef == r2.DrawingRef {
		t.Errorf("expected distinct generated refs, got %q and %q", r1.DrawingRef, r2.DrawingRef)
	}
}

func TestExtractionError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&ExtractionError{Stage: trace.StageTokens, Err: inner})
	if !errors.Is(err, inner) {
		t.Error("ExtractionError should unwrap")
	}
	if got := err.Error(); got != "tokens: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
