// Package pdfsource reads drawing pages through the tabula PDF library.
//
// A [Document] yields the two inputs of the takeoff pipeline for a page:
// positioned word tokens in top-down page coordinates and the page's
// drawing commands. Page numbers are 1-based.
package pdfsource

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
)

// MinPDFSize is the smallest upload accepted as a PDF.
const MinPDFSize = 100

var (
	// ErrPageOutOfRange is returned for page numbers outside the document.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrTooSmall is returned for inputs too short to be a PDF.
	ErrTooSmall = errors.New("file too small to be a PDF")
)

// parseMu serialises content stream parsing, which tabula does through
// shared package state.
var parseMu sync.Mutex

// Document is an open PDF. Its methods may be called from several
// goroutines; access to the underlying reader is serialised.
type Document struct {
	mu      sync.Mutex
	r       *reader.Reader
	tmpPath string
}

// Open opens the PDF at path.
func Open(path string) (*Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{r: r}, nil
}

// Load opens a PDF held in memory. The bytes are spooled to a temporary
// file, which Close removes.
func Load(data []byte) (*Document, error) {
	if len(data) < MinPDFSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(data))
	}

	f, err := os.CreateTemp("", "takeoff-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to spool PDF: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to rewind PDF: %w", err)
	}

	r, err := reader.NewReader(f)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{r: r, tmpPath: f.Name()}, nil
}

// Close releases the reader and any temporary file.
// It is safe to call Close multiple times.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.r != nil {
		err = d.r.Close()
		d.r = nil
	}
	if d.tmpPath != "" {
		if rmErr := os.Remove(d.tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
		d.tmpPath = ""
	}
	return err
}

// PageCount returns the number of pages.
func (d *Document) PageCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.r == nil {
		return 0, errors.New("document is closed")
	}
	return d.r.PageCount()
}

// PageSize returns the width and height of a page's MediaBox.
func (d *Document) PageSize(page int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.page(page)
	if err != nil {
		return 0, 0, err
	}
	box := mediaBox(p)
	return box[2] - box[0], box[3] - box[1], nil
}

// page returns the 1-based page. d.mu must be held.
func (d *Document) page(number int) (*pages.Page, error) {
	if d.r == nil {
		return nil, errors.New("document is closed")
	}
	count, err := d.r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if number < 1 || number > count {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, number, count)
	}
	p, err := d.r.GetPage(number - 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", number, err)
	}
	return p, nil
}

// defaultMediaBox is US Letter, used when a page has no usable MediaBox.
var defaultMediaBox = []float64{0, 0, 612, 792}

func mediaBox(p *pages.Page) []float64 {
	box, err := p.MediaBox()
	if err != nil || len(box) != 4 || box[2] <= box[0] || box[3] <= box[1] {
		return defaultMediaBox
	}
	return box
}
