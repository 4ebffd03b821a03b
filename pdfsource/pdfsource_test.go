package pdfsource

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/tabula/text"

	"github.com/tsawler/takeoff/internal/testpdf"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/ocr"
	"github.com/tsawler/takeoff/vector"
)

const drawingContent = "1 0 0 RG 2 w 100 100 m 500 100 l S 0 0 1 RG 100 100 m 100 300 l S /Fm1 Do"

func drawingPDF() []byte {
	return testpdf.Build(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 842 595] /Contents 4 0 R "+
			"/Resources << /XObject << /Fm1 5 0 R >> >> >>",
		testpdf.Stream("", drawingContent),
		testpdf.Stream("/Type /XObject /Subtype /Form /BBox [0 0 842 595] /Matrix [1 0 0 1 10 20]",
			"0 1 0 RG 0 0 m 50 0 l S"),
	)
}

func TestLoadTooSmall(t *testing.T) {
	_, err := Load([]byte("%PDF-1.4"))
	if !errors.Is(err, ErrTooSmall) {
		t.Fatalf("expected ErrTooSmall, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load([]byte(strings.Repeat("not a pdf ", 20)))
	if err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestDocumentCommands(t *testing.T) {
	doc, err := Load(drawingPDF())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	n, err := doc.PageCount()
	if err != nil || n != 1 {
		t.Fatalf("PageCount = %d, %v", n, err)
	}

	w, h, err := doc.PageSize(1)
	if err != nil || w != 842 || h != 595 {
		t.Fatalf("PageSize = %v x %v, %v", w, h, err)
	}

	d, err := doc.Commands(1)
	if err != nil {
		t.Fatalf("Commands failed: %v", err)
	}
	if d.Strokes != 3 {
		t.Errorf("expected 3 strokes, got %d", d.Strokes)
	}
	if len(d.FormErrors) != 0 {
		t.Errorf("unexpected form errors %v", d.FormErrors)
	}

	ex := vector.NewColourExtractor(vector.DefaultColourFilter()).Extract(d.Commands, d.PageHeight)
	if len(ex.Lines) != 3 {
		t.Fatalf("expected 3 coloured lines, got %d", len(ex.Lines))
	}

	want := []model.ColouredLine{
		{X: 300, Y: 495, ColourHex: "#ff0000"},
		{X: 100, Y: 395, ColourHex: "#0000ff"},
		{X: 35, Y: 575, ColourHex: "#00ff00"},
	}
	for i, line := range ex.Lines {
		if line != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, line, want[i])
		}
	}
}

func TestDocumentPageOutOfRange(t *testing.T) {
	doc, err := Load(drawingPDF())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	for _, page := range []int{0, 2, -1} {
		if _, err := doc.Commands(page); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("page %d: expected ErrPageOutOfRange, got %v", page, err)
		}
		if _, err := doc.Tokens(page); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("page %d tokens: expected ErrPageOutOfRange, got %v", page, err)
		}
	}
}

func TestDocumentClose(t *testing.T) {
	doc, err := Load(drawingPDF())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := doc.PageCount(); err == nil {
		t.Error("expected error after Close")
	}
}

func TestTokensFromFragments(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "100 LV TRAY", X: 110, Y: 400, Width: 66, Height: 10},
		{Text: "   ", X: 0, Y: 0, Width: 18, Height: 10},
		{Text: "@3000", X: 190, Y: 400, Width: 30, FontSize: 10},
	}

	tp := TokensFromFragments(fragments, []float64{10, 0, 852, 595})
	if tp.PageWidth != 842 || tp.PageHeight != 595 {
		t.Fatalf("page size = %v x %v", tp.PageWidth, tp.PageHeight)
	}

	want := []model.PositionedToken{
		{Text: "100", X: 100, Y: 185, Width: 18, Height: 10},
		{Text: "LV", X: 124, Y: 185, Width: 12, Height: 10},
		{Text: "TRAY", X: 142, Y: 185, Width: 24, Height: 10},
		{Text: "@3000", X: 180, Y: 185, Width: 30, Height: 10},
	}
	if len(tp.Tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tp.Tokens), len(want), tp.Tokens)
	}
	for i, tok := range tp.Tokens {
		if tok != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, tok, want[i])
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []word
	}{
		{"", nil},
		{"LV", []word{{"LV", 0, 2}}},
		{" A  BC", []word{{"A", 1, 1}, {"BC", 4, 2}}},
		{"Ø50 FA", []word{{"Ø50", 0, 3}, {"FA", 4, 2}}},
	}
	for _, tc := range tests {
		got := splitWords(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("splitWords(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitWords(%q)[%d] = %v, want %v", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTokensFromWords(t *testing.T) {
	words := []ocr.Word{{Text: "150", X: 200, Y: 100, Width: 60, Height: 20}}
	tp := TokensFromWords(words, 2000, 1000, 1000, 500)

	want := model.PositionedToken{Text: "150", X: 100, Y: 50, Width: 30, Height: 10}
	if len(tp.Tokens) != 1 || tp.Tokens[0] != want {
		t.Errorf("tokens = %+v, want %+v", tp.Tokens, want)
	}
}

type fakeRecognizer struct{}

func (fakeRecognizer) RecognizeWords([]byte, float64) ([]ocr.Word, error) {
	return nil, nil
}

func TestOCRTokensNoImage(t *testing.T) {
	doc, err := Load(drawingPDF())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer doc.Close()

	if _, err := doc.OCRTokens(1, fakeRecognizer{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
}
