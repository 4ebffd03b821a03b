package pdfsource

import (
	"errors"
	"fmt"

	"github.com/tsawler/tabula/reader"

	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/ocr"
)

// MinOCRConfidence is the Tesseract confidence below which words are
// discarded.
const MinOCRConfidence = 50.0

// ErrNoImage is returned by OCRTokens when the page carries no image.
var ErrNoImage = errors.New("page has no image to recognise")

// WordRecognizer recognises words in an encoded image.
type WordRecognizer interface {
	RecognizeWords(imageData []byte, minConfidence float64) ([]ocr.Word, error)
}

// OCRTokens recognises the largest image on a page and returns its words
// as tokens in page units. Scanned drawings are assumed to be a single
// image covering the page.
func (d *Document) OCRTokens(page int, rec WordRecognizer) (model.TokenPage, error) {
	img, width, height, err := d.largestImage(page)
	if err != nil {
		return model.TokenPage{}, err
	}

	png, err := img.ToPNG()
	if err != nil {
		return model.TokenPage{}, fmt.Errorf("failed to convert page image: %w", err)
	}
	words, err := rec.RecognizeWords(png, MinOCRConfidence)
	if err != nil {
		return model.TokenPage{}, fmt.Errorf("OCR failed: %w", err)
	}
	return TokensFromWords(words, img.Width, img.Height, width, height), nil
}

// TokensFromWords scales OCR word boxes from image pixels to page units.
func TokensFromWords(words []ocr.Word, imgW, imgH int, pageWidth, pageHeight float64) model.TokenPage {
	tp := model.TokenPage{PageWidth: pageWidth, PageHeight: pageHeight}
	for _, w := range words {
		x, y, width, height := w.Scale(imgW, imgH, pageWidth, pageHeight)
		tp.Tokens = append(tp.Tokens, model.PositionedToken{
			Text: w.Text, X: x, Y: y, Width: width, Height: height,
		})
	}
	return tp
}

func (d *Document) largestImage(page int) (*reader.PageImage, float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.page(page)
	if err != nil {
		return nil, 0, 0, err
	}
	box := mediaBox(p)

	images, err := d.r.ExtractPageImages(p)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to extract images: %w", err)
	}
	var best *reader.PageImage
	for i := range images {
		if best == nil || images[i].Width*images[i].Height > best.Width*best.Height {
			best = &images[i]
		}
	}
	if best == nil {
		return nil, 0, 0, ErrNoImage
	}
	return best, box[2] - box[0], box[3] - box[1], nil
}
