package ocr

import "testing"

func TestWordScale(t *testing.T) {
	w := Word{Text: "LV", X: 100, Y: 50, Width: 20, Height: 10}

	tests := []struct {
		name                string
		imgW, imgH          int
		pageW, pageH        float64
		wantX, wantY, wantW float64
	}{
		{"same size", 1000, 500, 1000, 500, 100, 50, 20},
		{"half scale", 2000, 1000, 1000, 500, 50, 25, 10},
		{"empty image", 0, 0, 1000, 500, 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, width, _ := w.Scale(tc.imgW, tc.imgH, tc.pageW, tc.pageH)
			if x != tc.wantX || y != tc.wantY || width != tc.wantW {
				t.Errorf("Scale = (%v, %v, %v), want (%v, %v, %v)", x, y, width, tc.wantX, tc.wantY, tc.wantW)
			}
		})
	}
}
