package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name          string
		width         int
		height        int
		contentWidth  int
		previewWidth  int
		previewHeight int
		meterWidth    int
		pickerHeight  int
	}{
		{name: "standard", width: 80, height: 24, contentWidth: 76, previewWidth: 40, previewHeight: 15, meterWidth: 40, pickerHeight: 15},
		{name: "wide", width: 200, height: 60, contentWidth: 196, previewWidth: 40, previewHeight: 16, meterWidth: 40, pickerHeight: 51},
		{name: "tiny", width: 20, height: 8, contentWidth: 24, previewWidth: 24, previewHeight: 4, meterWidth: 20, pickerHeight: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout(40, 16)
			layout.Update(tc.width, tc.height)
			if layout.contentWidth != tc.contentWidth {
				t.Fatalf("content width mismatch: got %d want %d", layout.contentWidth, tc.contentWidth)
			}
			if layout.previewWidth != tc.previewWidth || layout.previewHeight != tc.previewHeight {
				t.Fatalf("preview mismatch: got %dx%d want %dx%d", layout.previewWidth, layout.previewHeight, tc.previewWidth, tc.previewHeight)
			}
			if layout.meterWidth != tc.meterWidth {
				t.Fatalf("meter width mismatch: got %d want %d", layout.meterWidth, tc.meterWidth)
			}
			if layout.pickerHeight != tc.pickerHeight {
				t.Fatalf("picker height mismatch: got %d want %d", layout.pickerHeight, tc.pickerHeight)
			}
		})
	}
}

func TestPageLayoutDefaults(t *testing.T) {
	layout := newPageLayout(0, 0)
	opts := layout.previewOptions()
	if opts.Width != 40 || opts.Height != 16 {
		t.Fatalf("unexpected default preview options %+v", opts)
	}
}
