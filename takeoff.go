// Package takeoff measures cable containment from electrical drawings.
//
// It reads the tray labels and coloured linework of a PDF drawing page and
// produces a quantity takeoff: tray runs by size and type with their
// lengths, stock lengths, bends and drops, a fitting summary, and the
// questions a reviewer should answer before the numbers are used.
//
// Basic usage:
//
//	result, err := takeoff.Open("E-101.pdf").Analyze()
//	if err != nil {
//	    // handle error
//	}
//	for _, run := range result.TrayRuns {
//	    fmt.Println(run.Label(), run.LengthM)
//	}
//
// With options:
//
//	result, err := takeoff.Open("E-101.pdf").
//	    Page(2).
//	    Scale(50).
//	    Paper("A1").
//	    Analyze()
//
// The pipeline stages live in their own packages (layout, grammar, scale,
// vector, runs, questions, cable, overlay) and can be used directly.
package takeoff

import (
	"github.com/tsawler/takeoff/pdfsource"
)

// Open returns an Extractor for the PDF at filename.
// The returned Extractor must be closed when done, either explicitly via Close()
// or implicitly when calling a terminal operation like Analyze().
//
// Example:
//
//	result, err := takeoff.Open("E-101.pdf").Analyze()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Extractor for a PDF held in memory. ref names the
// drawing in the result.
func FromBytes(ref string, data []byte) *Extractor {
	e := &Extractor{
		data:    data,
		options: defaultOptions(),
	}
	e.options.request.DrawingRef = ref
	return e
}

// FromDocument creates an Extractor from an already-opened document.
// Note: The caller is responsible for closing the document.
func FromDocument(doc *pdfsource.Document) *Extractor {
	return &Extractor{
		doc:       doc,
		ownsDoc:   false,
		docOpened: true,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	result := takeoff.Must(takeoff.Open("E-101.pdf").Analyze())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
