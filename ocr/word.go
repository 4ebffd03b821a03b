package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Word is one recognised word with its box in image pixels, origin at the
// top left.
type Word struct {
	Text       string
	X, Y       int
	Width      int
	Height     int
	Confidence float64
}

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes, numbered as in Tesseract.
const (
	PSM_AUTO        PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_LINE PageSegMode = 7  // Single text line
	PSM_SPARSE_TEXT PageSegMode = 11 // Find as much text as possible
)

// Scale maps a word from image pixels to page units for a page of the
// given size rendered as an image of imgW by imgH pixels.
func (w Word) Scale(imgW, imgH int, pageWidth, pageHeight float64) (x, y, width, height float64) {
	if imgW <= 0 || imgH <= 0 {
		return 0, 0, 0, 0
	}
	sx := pageWidth / float64(imgW)
	sy := pageHeight / float64(imgH)
	return float64(w.X) * sx, float64(w.Y) * sy, float64(w.Width) * sx, float64(w.Height) * sy
}
