package takeoff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/takeoff/internal/testpdf"
)

// linesOnlyPDF is a one-page drawing with coloured linework and no text.
func linesOnlyPDF() []byte {
	return testpdf.LinesOnly(842, 595)
}

func writeTempPDF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
