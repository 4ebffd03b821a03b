package takeoff

import (
	"fmt"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/scale"
)

// Fixed drawing notes.
const (
	NoteNoText           = "No text layer found; tray labels could not be read."
	NoteExtractionFailed = "The drawing could not be read."
	NoteLengthEstimate   = "Run lengths are estimated from the spacing of tray labels, not traced along the drawn tray."
	NoteJunctions        = "T-pieces and cross-pieces are not detected and are reported as zero; count them from the drawing."
	NoteColourFailed     = "Drawing colours could not be read; runs use the default size palette."
	NoteOCR              = "Text was recovered by OCR from a scanned image; check labels before relying on the takeoff."
)

// drawingNotes returns the caveats that apply to a finished result.
func drawingNotes(res *model.Result, sc scale.Scale, colourFailed bool) []string {
	var notes []string
	if res.TokenSource == model.TokensFromOCR {
		notes = append(notes, NoteOCR)
	}
	if !sc.RatioDetected {
		notes = append(notes, fmt.Sprintf("No scale found on the drawing; 1:%d assumed.", sc.Ratio))
	}
	if !sc.PaperDetected {
		notes = append(notes, fmt.Sprintf("No paper size found on the drawing; %s assumed.", sc.PaperSize))
	}
	if colourFailed {
		notes = append(notes, NoteColourFailed)
	}

	unmarked := 0
	for _, a := range res.ExistingAnnotations {
		if a.StatusDefaulted {
			unmarked++
		}
	}
	if unmarked > 0 {
		notes = append(notes, fmt.Sprintf("%d unmarked tray label(s) were treated as existing and excluded.", unmarked))
	}

	if len(res.TrayRuns) == 0 {
		return append(notes, "No new tray annotations were found.")
	}
	notes = append(notes, NoteLengthEstimate, NoteJunctions)

	defaulted := 0
	for _, r := range res.TrayRuns {
		switch {
		case r.EstimatedLength:
			notes = append(notes, fmt.Sprintf("Run %d (%s) has a single label; a minimum length of %.0f m was assumed.", r.ID, r.Label(), r.LengthM))
		case r.LengthM == 0:
			notes = append(notes, fmt.Sprintf("Run %d (%s) has %d labels that do not line up; its length could not be estimated.", r.ID, r.Label(), r.AnnotationCount))
		}
		if r.StatusDefaulted {
			defaulted++
		}
	}
	if defaulted > 0 {
		notes = append(notes, fmt.Sprintf("%d run(s) had no NEW or EXISTING marker and were treated as new.", defaulted))
	}
	return notes
}
