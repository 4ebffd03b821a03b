package takeoff

import (
	"context"
	"fmt"

	"github.com/tsawler/takeoff/cable"
	"github.com/tsawler/takeoff/grammar"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/overlay"
	"github.com/tsawler/takeoff/pdfsource"
	"github.com/tsawler/takeoff/trace"
)

// Extractor provides a fluent interface for analysing a drawing.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	data     []byte

	doc *pdfsource.Document

	// Lifecycle
	ownsDoc   bool // true if we opened the document and should close it
	docOpened bool // true if the document has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:  e.filename,
		data:      e.data,
		doc:       e.doc,
		ownsDoc:   e.ownsDoc,
		docOpened: e.docOpened,
		options:   e.options.clone(),
		err:       e.err,
	}
}

// ensureDocument opens the document if not already open.
func (e *Extractor) ensureDocument() error {
	if e.docOpened {
		return nil
	}

	var (
		doc *pdfsource.Document
		err error
	)
	switch {
	case e.data != nil:
		doc, err = pdfsource.Load(e.data)
	case e.filename != "":
		doc, err = pdfsource.Open(e.filename)
	default:
		return fmt.Errorf("no filename specified")
	}
	if err != nil {
		return err
	}
	e.doc = doc
	e.ownsDoc = true
	e.docOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsDoc && e.doc != nil {
		err := e.doc.Close()
		e.doc = nil
		e.ownsDoc = false
		e.docOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Page selects the page to analyse (1-indexed). The default is page 1.
func (e *Extractor) Page(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		newExt.err = fmt.Errorf("%w: page %d", pdfsource.ErrPageOutOfRange, n)
	}
	newExt.options.request.Page = n
	return newExt
}

// Ref names the drawing in the result.
func (e *Extractor) Ref(ref string) *Extractor {
	newExt := e.clone()
	newExt.options.request.DrawingRef = ref
	return newExt
}

// Scale fixes the drawing scale ratio (the N of 1:N), overriding any scale
// printed on the drawing.
func (e *Extractor) Scale(ratio int) *Extractor {
	newExt := e.clone()
	if ratio <= 0 {
		newExt.err = fmt.Errorf("invalid scale ratio %d", ratio)
	}
	newExt.options.request.Overrides.Ratio = ratio
	return newExt
}

// Paper fixes the paper size (A0 to A4), overriding any size printed on
// the drawing.
func (e *Extractor) Paper(size string) *Extractor {
	newExt := e.clone()
	newExt.options.request.Overrides.PaperSize = size
	return newExt
}

// AssumeExisting treats tray labels without a NEW or EXISTING marker as
// existing containment.
func (e *Extractor) AssumeExisting() *Extractor {
	newExt := e.clone()
	newExt.options.config.StatusPolicy = grammar.AssumeExisting
	return newExt
}

// OCR enables word recognition on pages that have no text layer.
func (e *Extractor) OCR(language string) *Extractor {
	newExt := e.clone()
	newExt.options.config.OCR = true
	if language != "" {
		newExt.options.config.OCRLanguage = language
	}
	return newExt
}

// Config replaces the pipeline configuration.
func (e *Extractor) Config(cfg Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = cfg
	newExt.options = newExt.options.clone()
	return newExt
}

// Tracer sends pipeline events to t.
func (e *Extractor) Tracer(t trace.Tracer) *Extractor {
	newExt := e.clone()
	newExt.options.tracer = trace.OrNop(t)
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Analyze runs the takeoff on the selected page and closes the Extractor.
// A drawing that cannot be read still yields a result, carrying an
// extraction-failed question; the error return covers invalid options.
func (e *Extractor) Analyze() (*model.Result, error) {
	return e.AnalyzeContext(context.Background())
}

// AnalyzeContext is Analyze with a context for cancellation.
func (e *Extractor) AnalyzeContext(ctx context.Context) (*model.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	defer e.Close()

	a := NewAnalyzer(e.options.config, WithTracer(e.options.tracer))
	req := e.options.request
	if err := e.ensureDocument(); err != nil {
		req.DrawingRef = drawingRef(req.DrawingRef)
		return a.failed(req, &ExtractionError{Stage: trace.StageLoad, Err: err}), nil
	}
	return a.AnalyzeDocument(ctx, e.doc, req)
}

// Cable analyses the drawing and estimates cable for the given inputs.
func (e *Extractor) Cable(inputs model.UserInputs) (model.CableSummary, error) {
	res, err := e.Analyze()
	if err != nil {
		return model.CableSummary{}, err
	}
	return cable.Calculate(res.TrayRuns, inputs), nil
}

// Overlay analyses the drawing and renders its runs as SVG.
func (e *Extractor) Overlay() (string, error) {
	res, err := e.Analyze()
	if err != nil {
		return "", err
	}
	return overlay.RenderSVG(res)
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return 0, err
	}
	return e.doc.PageCount()
}
