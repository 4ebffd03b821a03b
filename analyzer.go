package takeoff

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/tsawler/takeoff/grammar"
	"github.com/tsawler/takeoff/layout"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/ocr"
	"github.com/tsawler/takeoff/pdfsource"
	"github.com/tsawler/takeoff/questions"
	"github.com/tsawler/takeoff/runs"
	"github.com/tsawler/takeoff/scale"
	"github.com/tsawler/takeoff/trace"
	"github.com/tsawler/takeoff/vector"
)

// PageInput is everything the pipeline reads for one page.
type PageInput struct {
	DrawingRef string
	Page       int
	Tokens     model.TokenPage

	// TokenSource records where the tokens came from; empty means the
	// text layer.
	TokenSource string

	Commands []vector.Command

	// CommandsErr is set when the page geometry could not be read. The
	// analysis continues without coloured strokes.
	CommandsErr error

	Overrides scale.Overrides
}

// Analyzer runs the takeoff pipeline. It holds only configuration and is
// safe for concurrent use; each call analyses one drawing independently.
type Analyzer struct {
	config    Config
	phrases   *layout.PhraseDetector
	grammar   *grammar.Grammar
	colours   *vector.ColourExtractor
	assembler *runs.Assembler
	tracer    trace.Tracer
	ocr       pdfsource.WordRecognizer
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTracer sends pipeline events to t.
func WithTracer(t trace.Tracer) AnalyzerOption {
	return func(a *Analyzer) { a.tracer = trace.OrNop(t) }
}

// WithRecognizer sets the OCR engine used when Config.OCR is enabled.
func WithRecognizer(r pdfsource.WordRecognizer) AnalyzerOption {
	return func(a *Analyzer) { a.ocr = r }
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(config Config, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		config:    config,
		phrases:   layout.NewPhraseDetectorWithConfig(config.Phrases),
		grammar:   grammar.New(config.StatusPolicy),
		colours:   vector.NewColourExtractor(config.Colour),
		assembler: runs.NewAssemblerWithConfig(config.Assembly),
		tracer:    trace.Nop,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the analyzer's configuration
func (a *Analyzer) Config() Config {
	return a.config
}

// AnalyzeBytes analyses one page of a PDF held in memory. Unreadable input
// produces a result carrying an extraction-failed question; the error is
// reserved for cancellation.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte, req Request) (*model.Result, error) {
	req.DrawingRef = drawingRef(req.DrawingRef)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := pdfsource.Load(data)
	if err != nil {
		return a.failed(req, &ExtractionError{Stage: trace.StageLoad, Err: err}), nil
	}
	defer doc.Close()
	return a.AnalyzeDocument(ctx, doc, req)
}

// AnalyzeFile analyses one page of the PDF at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, req Request) (*model.Result, error) {
	req.DrawingRef = drawingRef(req.DrawingRef)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := pdfsource.Open(path)
	if err != nil {
		return a.failed(req, &ExtractionError{Stage: trace.StageLoad, Err: err}), nil
	}
	defer doc.Close()
	return a.AnalyzeDocument(ctx, doc, req)
}

// AnalyzeDocument reads a page of an open document and analyses it.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc *pdfsource.Document, req Request) (*model.Result, error) {
	req.DrawingRef = drawingRef(req.DrawingRef)
	page := req.page()

	tokens, err := doc.Tokens(page)
	if err != nil {
		return a.failed(req, &ExtractionError{Stage: trace.StageTokens, Err: err}), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := model.TokensFromText
	if len(tokens.Tokens) == 0 && a.config.OCR {
		if ocrTokens, ok := a.recognize(doc, page, req.DrawingRef); ok {
			tokens, source = ocrTokens, model.TokensFromOCR
		}
	}

	in := PageInput{
		DrawingRef:  req.DrawingRef,
		Page:        page,
		Tokens:      tokens,
		TokenSource: source,
		Overrides:   req.Overrides,
	}
	drawing, err := doc.Commands(page)
	if err != nil {
		in.CommandsErr = err
	} else {
		in.Commands = drawing.Commands
		for _, fe := range drawing.FormErrors {
			a.tracer.Trace(trace.Event{Stage: trace.StageColour, DrawingRef: req.DrawingRef, Message: "form skipped", Err: fe})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.AnalyzePage(in), nil
}

func (a *Analyzer) recognize(doc *pdfsource.Document, page int, ref string) (model.TokenPage, bool) {
	rec := a.ocr
	if rec == nil {
		client, err := ocr.New()
		if err != nil {
			a.tracer.Trace(trace.Event{Stage: trace.StageOCR, DrawingRef: ref, Message: "OCR unavailable", Err: err})
			return model.TokenPage{}, false
		}
		defer client.Close()
		if err := client.SetLanguage(a.config.OCRLanguage); err != nil {
			a.tracer.Trace(trace.Event{Stage: trace.StageOCR, DrawingRef: ref, Message: "OCR language rejected", Err: err})
		}
		rec = client
	}

	tokens, err := doc.OCRTokens(page, rec)
	if err != nil {
		if !errors.Is(err, pdfsource.ErrNoImage) {
			a.tracer.Trace(trace.Event{Stage: trace.StageOCR, DrawingRef: ref, Message: "OCR failed", Err: err})
		}
		return model.TokenPage{}, false
	}
	a.tracer.Trace(trace.Event{Stage: trace.StageOCR, DrawingRef: ref, Counts: map[string]int{"tokens": len(tokens.Tokens)}})
	return tokens, len(tokens.Tokens) > 0
}

// AnalyzePage runs the pipeline over already extracted page content. It
// never fails: pages without text produce a result with a no-text
// question.
func (a *Analyzer) AnalyzePage(in PageInput) *model.Result {
	ref := drawingRef(in.DrawingRef)
	page := max(in.Page, 1)

	res := &model.Result{
		DrawingRef:        ref,
		Page:              page,
		PageWidth:         in.Tokens.PageWidth,
		PageHeight:        in.Tokens.PageHeight,
		TotalTextElements: len(in.Tokens.Tokens),
		FittingSummary:    model.FittingSummary{},
		ColourSummary:     map[string]model.ColourTotals{},
	}
	a.tracer.Trace(trace.Event{Stage: trace.StageTokens, DrawingRef: ref, Counts: map[string]int{"tokens": len(in.Tokens.Tokens)}})

	if len(in.Tokens.Tokens) == 0 {
		res.TokenSource = model.TokensNone
		res.Questions = []model.Question{questions.NoText()}
		res.DrawingNotes = []string{NoteNoText}
		// Coloured linework is measured even without labels.
		a.measure(res, in, "")
		a.tracer.Trace(trace.Event{Stage: trace.StageDone, DrawingRef: ref, Message: "no text layer"})
		return res
	}
	res.HasTextLayer = true
	res.TokenSource = in.TokenSource
	if res.TokenSource == "" {
		res.TokenSource = model.TokensFromText
	}

	phrases := a.phrases.Detect(in.Tokens.Tokens)
	a.tracer.Trace(trace.Event{Stage: trace.StagePhrases, DrawingRef: ref, Counts: map[string]int{"phrases": len(phrases)}})

	found := a.readAnnotations(phrases)
	found.Drops = a.findDrops(phrases, in.Tokens.Tokens)
	res.ExistingAnnotations = found.ExistingAnnotations
	res.DropAnnotations = found.Drops
	a.tracer.Trace(trace.Event{Stage: trace.StageGrammar, DrawingRef: ref, Counts: map[string]int{
		"new":      len(found.NewAnnotations),
		"existing": len(found.ExistingAnnotations),
		"combined": len(found.CombinedPhrases),
		"drops":    len(found.Drops),
	}})

	sc, lines := a.measure(res, in, a.phrases.PageText(in.Tokens.Tokens))

	res.TrayRuns = a.assembler.Assemble(found.NewAnnotations, found.Drops, lines, sc.MetresPerUnit)
	a.tracer.Trace(trace.Event{Stage: trace.StageRuns, DrawingRef: ref, Counts: map[string]int{"runs": len(res.TrayRuns)}})

	res.FittingSummary = runs.SummarizeFittings(res.TrayRuns)
	a.tracer.Trace(trace.Event{Stage: trace.StageFittings, DrawingRef: ref, Counts: map[string]int{"sizes": len(res.FittingSummary)}})

	res.Questions = questions.Generate(found)
	a.tracer.Trace(trace.Event{Stage: trace.StageQuestion, DrawingRef: ref, Counts: map[string]int{"questions": len(res.Questions)}})

	res.DrawingNotes = drawingNotes(res, sc, in.CommandsErr != nil)

	a.tracer.Trace(trace.Event{Stage: trace.StageDone, DrawingRef: ref, Counts: map[string]int{
		"runs":      len(res.TrayRuns),
		"questions": len(res.Questions),
	}})
	return res
}

// measure resolves the scale from text and measures the page's coloured
// linework into res. It returns the scale and the coloured lines used for
// run colouring.
func (a *Analyzer) measure(res *model.Result, in PageInput, text string) (scale.Scale, []model.ColouredLine) {
	ref := res.DrawingRef
	sc := scale.Resolve(text, in.Tokens.PageWidth, in.Overrides)
	res.Scale = sc.String()
	res.ScaleRatio = sc.Ratio
	res.ScaleDetected = sc.RatioDetected
	res.PaperSize = sc.PaperSize
	res.PaperDetected = sc.PaperDetected
	res.MetresPerUnit = sc.MetresPerUnit
	a.tracer.Trace(trace.Event{Stage: trace.StageScale, DrawingRef: ref, Message: sc.String() + " " + sc.PaperSize})

	var lines []model.ColouredLine
	if in.CommandsErr != nil {
		a.tracer.Trace(trace.Event{Stage: trace.StageColour, DrawingRef: ref, Message: "colour extraction failed", Err: in.CommandsErr})
	} else {
		ex := a.colours.Extract(in.Commands, in.Tokens.PageHeight)
		lines = ex.Lines
		res.VectorRuns = vector.Measure(vector.MergeConnected(ex.Paths, a.config.Merge), sc.MetresPerUnit, a.config.Merge)
		res.ColourSummary = vector.Summarize(res.VectorRuns)
		a.tracer.Trace(trace.Event{Stage: trace.StageColour, DrawingRef: ref, Counts: map[string]int{
			"strokes":     ex.Strokes,
			"lines":       len(ex.Lines),
			"vector_runs": len(res.VectorRuns),
		}})
	}
	res.ColouredLineCount = len(lines)
	return sc, lines
}

// failed builds the result for a drawing that could not be read.
func (a *Analyzer) failed(req Request, err *ExtractionError) *model.Result {
	a.tracer.Trace(trace.Event{Stage: err.Stage, DrawingRef: req.DrawingRef, Message: "extraction failed", Err: err.Err})
	return &model.Result{
		DrawingRef:     req.DrawingRef,
		Page:           req.page(),
		TokenSource:    model.TokensNone,
		FittingSummary: model.FittingSummary{},
		ColourSummary:  map[string]model.ColourTotals{},
		Questions:      []model.Question{questions.ExtractionFailed(err)},
		DrawingNotes:   []string{NoteExtractionFailed},
	}
}

// readAnnotations parses every phrase and splits the entries into new and
// existing annotations.
func (a *Analyzer) readAnnotations(phrases []model.Phrase) questions.Findings {
	var f questions.Findings
	for _, p := range phrases {
		parsed := a.grammar.ParseTray(p.Text)
		if len(parsed.Entries) == 0 {
			continue
		}
		if parsed.Combined() {
			f.CombinedPhrases = append(f.CombinedPhrases, p.Text)
		}
		for _, e := range parsed.Entries {
			ann := model.TrayAnnotation{
				TrayEntry: e,
				X:         p.X,
				Y:         p.Y,
				EndX:      p.EndX,
				Combined:  parsed.Combined(),
			}
			if e.IsExisting {
				f.ExistingAnnotations = append(f.ExistingAnnotations, ann)
			} else {
				f.NewAnnotations = append(f.NewAnnotations, ann)
			}
		}
	}
	return f
}

// findDrops reads drop labels from phrases, then from single tokens lying
// outside any drop or tray phrase. Drops at the same rounded position are
// counted once.
func (a *Analyzer) findDrops(phrases []model.Phrase, tokens []model.PositionedToken) []model.DropAnnotation {
	var drops []model.DropAnnotation
	var spans []model.Phrase
	seen := make(map[string]bool)

	add := func(x, y float64, text string, m grammar.DropMatch) {
		d := model.DropAnnotation{X: x, Y: y, Text: text, DropType: m.DropType, DefaultAllowanceM: m.DefaultAllowanceM}
		if seen[d.Key()] {
			return
		}
		seen[d.Key()] = true
		drops = append(drops, d)
	}

	for _, p := range phrases {
		if a.grammar.Match(grammar.Normalize(p.Text)).Matched() {
			spans = append(spans, p)
			continue
		}
		if m, ok := a.grammar.ParseDrop(p.Text); ok {
			add(p.X, p.Y, p.Text, m)
			spans = append(spans, p)
		}
	}

	tol := a.config.Phrases.LineTolerance
	for _, tok := range layout.SortTokens(tokens) {
		if insideAny(tok, spans, tol) {
			continue
		}
		if m, ok := a.grammar.ParseDrop(tok.Text); ok {
			add(tok.X, tok.Y, tok.Text, m)
		}
	}
	return drops
}

func insideAny(tok model.PositionedToken, spans []model.Phrase, lineTolerance float64) bool {
	for _, p := range spans {
		if math.Abs(tok.Y-p.Y) < lineTolerance && tok.X >= p.X && tok.X <= p.EndX {
			return true
		}
	}
	return false
}

func drawingRef(ref string) string {
	if ref != "" {
		return ref
	}
	return uuid.NewString()
}
