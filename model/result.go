package model

// QuestionOption is one answer a reviewer can pick.
type QuestionOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question asks a reviewer to settle an uncertain interpretation.
type Question struct {
	ID           string           `json:"id"`
	Prompt       string           `json:"prompt"`
	Context      string           `json:"context"`
	Options      []QuestionOption `json:"options"`
	DefaultValue string           `json:"defaultValue"`
}

// VectorSegment is one straight piece of a measured coloured path.
type VectorSegment struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	LengthM float64 `json:"lengthM"`
}

// VectorRun is a chain of connected same-colour strokes measured along its
// path.
type VectorRun struct {
	Colour       string          `json:"colour"`
	LengthM      float64         `json:"totalLengthM"`
	LengthUnits  float64         `json:"totalLengthUnits"`
	SegmentCount int             `json:"segmentCount"`
	BBox         BBox            `json:"bbox"`
	Midpoint     Point           `json:"midpoint"`
	Segments     []VectorSegment `json:"segments"`
}

// ColourTotals aggregates the vector runs of one colour.
type ColourTotals struct {
	RunCount     int     `json:"runCount"`
	TotalLengthM float64 `json:"totalLengthM"`
}

// Token sources for Result.TokenSource.
const (
	TokensFromText = "text"
	TokensFromOCR  = "ocr"
	TokensNone     = "none"
)

// Result is the containment takeoff for one drawing page.
type Result struct {
	DrawingRef string  `json:"drawingRef"`
	Page       int     `json:"page"`
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`

	Scale         string  `json:"scale"`
	ScaleRatio    int     `json:"scaleRatio"`
	ScaleDetected bool    `json:"scaleDetected"`
	PaperSize     string  `json:"paperSize"`
	PaperDetected bool    `json:"paperDetected"`
	MetresPerUnit float64 `json:"metresPerUnit"`

	TrayRuns       []TrayRun      `json:"trayRuns"`
	FittingSummary FittingSummary `json:"fittingSummary"`
	Questions      []Question     `json:"questions"`
	DrawingNotes   []string       `json:"drawingNotes"`

	ExistingAnnotations []TrayAnnotation `json:"existingAnnotations"`
	DropAnnotations     []DropAnnotation `json:"dropAnnotations"`

	ColouredLineCount int                     `json:"colouredLineCount"`
	VectorRuns        []VectorRun             `json:"vectorRuns"`
	ColourSummary     map[string]ColourTotals `json:"colourSummary"`

	HasTextLayer      bool   `json:"hasTextLayer"`
	TotalTextElements int    `json:"totalTextElements"`
	TokenSource       string `json:"tokenSource"`
}

// NewTrayTypes returns the distinct tray types among the result's runs in
// presentation order.
func (r *Result) NewTrayTypes() []TrayType {
	seen := make(map[TrayType]bool)
	for _, run := range r.TrayRuns {
		seen[run.TrayType] = true
	}
	var types []TrayType
	for _, t := range TrayTypes {
		if seen[t] {
			types = append(types, t)
		}
	}
	return types
}

// Question returns the question with the given id.
func (r *Result) Question(id string) (Question, bool) {
	for _, q := range r.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
