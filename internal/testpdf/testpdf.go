// Package testpdf builds small PDF files for tests.
package testpdf

import (
	"fmt"
	"strings"
)

// Build assembles numbered objects into a PDF with a correct xref table.
// Object 1 must be the catalog.
func Build(objects ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

// Stream formats a stream object with extra dictionary entries.
func Stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// LinesContent strokes one blue line 400 units long.
const LinesContent = "0.23 0.51 0.96 RG 100 100 m 500 100 l S"

// LinesOnly is a one-page drawing width x height units with the
// LinesContent linework and no text.
func LinesOnly(width, height float64) []byte {
	return Build(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Contents 4 0 R /Resources << >> >>", width, height),
		Stream("", LinesContent),
	)
}
