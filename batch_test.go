package takeoff

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"github.com/tsawler/takeoff/questions"
)

func TestAnalyzeAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	good := writeTempPDF(t, "E-401.pdf", linesOnlyPDF())
	missing := filepath.Join(t.TempDir(), "E-402.pdf")

	items := []BatchItem{
		{Path: good},
		{Path: missing},
		{Path: good, Request: Request{DrawingRef: "custom"}},
	}

	results, err := NewAnalyzer(DefaultConfig()).AnalyzeAll(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("AnalyzeAll failed: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}

	wantRefs := []string{"E-401", "E-402", "custom"}
	wantQuestion := []string{questions.IDNoText, questions.IDExtractionFailed, questions.IDNoText}
	for i, res := range results {
		if res == nil {
			t.Fatalf("result %d is nil", i)
		}
		if res.DrawingRef != wantRefs[i] {
			t.Errorf("result %d ref = %q, want %q", i, res.DrawingRef, wantRefs[i])
		}
		if len(res.Questions) != 1 || res.Questions[0].ID != wantQuestion[i] {
			t.Errorf("result %d questions = %+v", i, res.Questions)
		}
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []BatchItem{{Path: "a.pdf"}, {Path: "b.pdf"}}
	_, err := NewAnalyzer(DefaultConfig()).AnalyzeAll(ctx, items, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRefFromPath(t *testing.T) {
	tests := map[string]string{
		"plans/E-101.pdf":   "E-101",
		"E-102":             "E-102",
		"/tmp/a.b.PDF":      "a.b",
		"drawings/rev2.pdf": "rev2",
	}
	for in, want := range tests {
		if got := RefFromPath(in); got != want {
			t.Errorf("RefFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
