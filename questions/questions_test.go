package questions

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/takeoff/model"
)

func annotation(tt model.TrayType, raw string) model.TrayAnnotation {
	return model.TrayAnnotation{TrayEntry: model.TrayEntry{SizeMm: 100, TrayType: tt, RawText: raw}}
}

func ids(qs []model.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestGenerate_AlwaysAsksDuty(t *testing.T) {
	qs := Generate(Findings{})
	if len(qs) != 1 || qs[0].ID != IDTrayDuty {
		t.Fatalf("Expected only the duty question, got %v", ids(qs))
	}
	if qs[0].DefaultValue != model.DutyMedium {
		t.Errorf("Expected default medium, got %s", qs[0].DefaultValue)
	}
	if len(qs[0].Options) != 3 {
		t.Errorf("Expected 3 duty options, got %d", len(qs[0].Options))
	}
}

func TestGenerate_Order(t *testing.T) {
	f := Findings{
		ExistingAnnotations: []model.TrayAnnotation{annotation(model.TrayLV, "EX 150 LV TRAY")},
		CombinedPhrases:     []string{"100 LV AND 50 FA TRAY"},
		Drops:               []model.DropAnnotation{{Text: "CCTV", DropType: model.DropCCTV}},
		NewAnnotations: []model.TrayAnnotation{
			annotation(model.TrayFA, "50 FA TRAY"),
			annotation(model.TrayLV, "100 LV TRAY"),
		},
	}

	got := strings.Join(ids(Generate(f)), ",")
	want := strings.Join([]string{IDExistingTray, IDCombined, IDDropAllowance, IDTrayFilter, IDTrayDuty}, ",")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestGenerate_Defaults(t *testing.T) {
	f := Findings{
		ExistingAnnotations: []model.TrayAnnotation{annotation(model.TrayLV, "EX 150 LV TRAY")},
		CombinedPhrases:     []string{"100 LV AND 50 FA TRAY"},
		Drops:               []model.DropAnnotation{{Text: "CCTV", DropType: model.DropCCTV}},
		NewAnnotations: []model.TrayAnnotation{
			annotation(model.TrayFA, "50 FA TRAY"),
			annotation(model.TrayLV, "100 LV TRAY"),
		},
	}
	result := &model.Result{Questions: Generate(f)}

	tests := []struct {
		id   string
		want string
	}{
		{IDExistingTray, "exclude"},
		{IDCombined, "confirm"},
		{IDDropAllowance, "2"},
		{IDTrayFilter, "LV"},
		{IDTrayDuty, "medium"},
	}
	for _, tt := range tests {
		q, ok := result.Question(tt.id)
		if !ok {
			t.Errorf("Missing question %s", tt.id)
			continue
		}
		if q.DefaultValue != tt.want {
			t.Errorf("%s: expected default %q, got %q", tt.id, tt.want, q.DefaultValue)
		}
		if q.Prompt == "" || q.Context == "" {
			t.Errorf("%s: prompt and context must be set", tt.id)
		}
	}

	drop, _ := result.Question(IDDropAllowance)
	var values []string
	for _, o := range drop.Options {
		values = append(values, o.Value)
	}
	if strings.Join(values, ",") != "2,3,1.5,0" {
		t.Errorf("Unexpected drop presets %v", values)
	}

	filter, _ := result.Question(IDTrayFilter)
	if len(filter.Options) != 3 || filter.Options[0].Value != model.TrayFilterAll {
		t.Errorf("Unexpected filter options %+v", filter.Options)
	}
}

func TestGenerate_TrayFilterNeedsTwoTypes(t *testing.T) {
	f := Findings{NewAnnotations: []model.TrayAnnotation{
		annotation(model.TrayFA, "50 FA TRAY"),
		annotation(model.TrayFA, "100 FA TRAY"),
	}}
	for _, q := range Generate(f) {
		if q.ID == IDTrayFilter {
			t.Fatal("tray-filter asked for a single tray type")
		}
	}

	f.NewAnnotations = append(f.NewAnnotations, annotation(model.TraySUB, "LADDER = 300MM"))
	var filter *model.Question
	qs := Generate(f)
	for i := range qs {
		if qs[i].ID == IDTrayFilter {
			filter = &qs[i]
		}
	}
	if filter == nil {
		t.Fatal("Expected a tray-filter question")
	}
	// Without LV the first type found is the default.
	if filter.DefaultValue != "FA" {
		t.Errorf("Expected default FA, got %s", filter.DefaultValue)
	}
}

func TestDegenerateQuestions(t *testing.T) {
	q := ExtractionFailed(errors.New("bad xref"))
	if q.ID != IDExtractionFailed || !strings.Contains(q.Context, "bad xref") {
		t.Errorf("Unexpected extraction question %+v", q)
	}
	if !hasOption(q, "retry") || !hasOption(q, "skip") {
		t.Error("Expected skip and retry options")
	}

	q = NoText()
	if q.ID != IDNoText || hasOption(q, "retry") {
		t.Errorf("no-text must not offer retry: %+v", q)
	}
}

func hasOption(q model.Question, value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func TestSnippets(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"A", "A", " B "}, "A; B"},
		{[]string{"1", "2", "3", "4", "5", "6", "7"}, "1; 2; 3; 4; 5 (+2 more)"},
	}
	for _, tt := range tests {
		if got := Snippets(tt.in); got != tt.want {
			t.Errorf("Snippets(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
