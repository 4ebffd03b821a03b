// Package questions builds the review prompts attached to a takeoff.
//
// Each rule looks at one kind of uncertainty (existing containment, labels
// that expanded into several entries, drop allowances, mixed tray types,
// duty rating) and emits at most one question. Questions never block the
// analysis; every one carries a default answer.
package questions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/takeoff/model"
)

// Question ids.
const (
	IDExistingTray     = "existing-tray"
	IDCombined         = "combined-annotations"
	IDDropAllowance    = "drop-allowance"
	IDTrayFilter       = "tray-filter"
	IDTrayDuty         = "tray-duty"
	IDExtractionFailed = "extraction-failed"
	IDNoText           = "no-text"
)

// MaxContextItems limits the snippets quoted in a question's context.
const MaxContextItems = 5

// DropAllowancePresets are the per-drop allowances offered, in metres.
var DropAllowancePresets = []float64{2, 3, 1.5, 0}

// DefaultDropAllowance is the preset selected by default.
const DefaultDropAllowance = 2.0

// Findings is what the analysis found that may need a reviewer's decision.
type Findings struct {
	// ExistingAnnotations were marked EX/EXISTING and left out of the runs.
	ExistingAnnotations []model.TrayAnnotation

	// CombinedPhrases are labels that expanded into several tray entries.
	CombinedPhrases []string

	Drops []model.DropAnnotation

	// NewAnnotations are the annotations the runs were built from.
	NewAnnotations []model.TrayAnnotation
}

// NewTrayTypes returns the distinct tray types among the new annotations in
// presentation order.
func (f Findings) NewTrayTypes() []model.TrayType {
	seen := make(map[model.TrayType]bool)
	for _, a := range f.NewAnnotations {
		seen[a.TrayType] = true
	}
	var types []model.TrayType
	for _, t := range model.TrayTypes {
		if seen[t] {
			types = append(types, t)
		}
	}
	return types
}

// Generate returns the questions for f in presentation order: existing
// tray, combined labels, drop allowance, tray filter, tray duty. The duty
// question is always present.
func Generate(f Findings) []model.Question {
	var qs []model.Question

	if len(f.ExistingAnnotations) > 0 {
		qs = append(qs, existingTray(f.ExistingAnnotations))
	}
	if len(f.CombinedPhrases) > 0 {
		qs = append(qs, combined(f.CombinedPhrases))
	}
	if len(f.Drops) > 0 {
		qs = append(qs, dropAllowance(f.Drops))
	}
	if types := f.NewTrayTypes(); len(types) > 1 {
		qs = append(qs, trayFilter(types, f.NewAnnotations))
	}
	qs = append(qs, trayDuty())
	return qs
}

func existingTray(existing []model.TrayAnnotation) model.Question {
	snippets := make([]string, len(existing))
	for i, a := range existing {
		snippets[i] = a.RawText
	}
	return model.Question{
		ID:      IDExistingTray,
		Prompt:  fmt.Sprintf("%d existing tray label(s) were found and left out of the takeoff. Keep them excluded?", len(existing)),
		Context: Snippets(snippets),
		Options: []model.QuestionOption{
			{Label: "Keep excluded", Value: "exclude"},
			{Label: "Include in takeoff", Value: "include"},
		},
		DefaultValue: "exclude",
	}
}

func combined(phrases []string) model.Question {
	return model.Question{
		ID:      IDCombined,
		Prompt:  "Some labels name more than one tray and were split into separate runs. Is the split correct?",
		Context: Snippets(phrases),
		Options: []model.QuestionOption{
			{Label: "Yes, split them", Value: "confirm"},
			{Label: "No, ignore these labels", Value: "reject"},
		},
		DefaultValue: "confirm",
	}
}

func dropAllowance(drops []model.DropAnnotation) model.Question {
	snippets := make([]string, len(drops))
	for i, d := range drops {
		snippets[i] = fmt.Sprintf("%s (%s)", d.Text, d.DropType)
	}
	opts := make([]model.QuestionOption, len(DropAllowancePresets))
	for i, v := range DropAllowancePresets {
		s := formatMetres(v)
		label := s + " m per drop"
		if v == 0 {
			label = "No drop allowance"
		}
		opts[i] = model.QuestionOption{Label: label, Value: s}
	}
	return model.Question{
		ID:           IDDropAllowance,
		Prompt:       fmt.Sprintf("%d drop(s) were found. How much extra cable should each drop allow?", len(drops)),
		Context:      Snippets(snippets),
		Options:      opts,
		DefaultValue: formatMetres(DefaultDropAllowance),
	}
}

func trayFilter(types []model.TrayType, annotations []model.TrayAnnotation) model.Question {
	counts := make(map[model.TrayType]int)
	for _, a := range annotations {
		counts[a.TrayType]++
	}

	opts := []model.QuestionOption{{Label: "All tray types", Value: model.TrayFilterAll}}
	snippets := make([]string, len(types))
	for i, t := range types {
		opts = append(opts, model.QuestionOption{Label: string(t) + " only", Value: string(t)})
		snippets[i] = fmt.Sprintf("%s: %d label(s)", t, counts[t])
	}

	def := string(types[0])
	for _, t := range types {
		if t == model.TrayLV {
			def = string(model.TrayLV)
		}
	}

	return model.Question{
		ID:           IDTrayFilter,
		Prompt:       "More than one tray type was found. Which should the cable estimate cover?",
		Context:      strings.Join(snippets, "; "),
		Options:      opts,
		DefaultValue: def,
	}
}

func trayDuty() model.Question {
	return model.Question{
		ID:      IDTrayDuty,
		Prompt:  "What duty rating should the tray be priced at?",
		Context: "Duty affects material and installation rates only, not quantities.",
		Options: []model.QuestionOption{
			{Label: "Light duty", Value: model.DutyLight},
			{Label: "Medium duty", Value: model.DutyMedium},
			{Label: "Heavy duty", Value: model.DutyHeavy},
		},
		DefaultValue: model.DutyMedium,
	}
}

// ExtractionFailed is the only question on a drawing whose text or
// geometry could not be read.
func ExtractionFailed(err error) model.Question {
	ctx := "The PDF could not be read."
	if err != nil {
		ctx = fmt.Sprintf("The PDF could not be read: %v", err)
	}
	return model.Question{
		ID:      IDExtractionFailed,
		Prompt:  "This drawing could not be analysed. Skip it or try again?",
		Context: ctx,
		Options: []model.QuestionOption{
			{Label: "Skip this drawing", Value: "skip"},
			{Label: "Retry", Value: "retry"},
		},
		DefaultValue: "skip",
	}
}

// NoText is the only question on a drawing without a text layer. Retrying
// cannot help, so it is not offered.
func NoText() model.Question {
	return model.Question{
		ID:      IDNoText,
		Prompt:  "This drawing has no readable text, so tray labels cannot be found. How should it be handled?",
		Context: "The page is probably a scanned image. Re-export it from CAD with text, or measure it manually.",
		Options: []model.QuestionOption{
			{Label: "Skip this drawing", Value: "skip"},
			{Label: "Measure manually", Value: "manual"},
		},
		DefaultValue: "skip",
	}
}

// Snippets joins up to MaxContextItems distinct snippets with "; " and notes
// how many were left out.
func Snippets(items []string) string {
	var unique []string
	seen := make(map[string]bool)
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}

	if len(unique) <= MaxContextItems {
		return strings.Join(unique, "; ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(unique[:MaxContextItems], "; "), len(unique)-MaxContextItems)
}

func formatMetres(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
