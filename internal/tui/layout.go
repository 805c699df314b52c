package tui

import "github.com/benamedd/phytoscan/internal/preview"

// pageLayout derives component sizes from the terminal size. Preview sizes
// never exceed the configured maximum.
type pageLayout struct {
	windowWidth   int
	windowHeight  int
	contentWidth  int
	previewWidth  int
	previewHeight int
	meterWidth    int
	pickerHeight  int

	maxPreviewWidth  int
	maxPreviewHeight int
}

func newPageLayout(maxPreviewWidth, maxPreviewHeight int) pageLayout {
	if maxPreviewWidth <= 0 {
		maxPreviewWidth = preview.DefaultWidth
	}
	if maxPreviewHeight <= 0 {
		maxPreviewHeight = preview.DefaultHeight
	}
	return pageLayout{
		contentWidth:     80,
		previewWidth:     maxPreviewWidth,
		previewHeight:    maxPreviewHeight,
		meterWidth:       meterMaxWidth,
		pickerHeight:     10,
		maxPreviewWidth:  maxPreviewWidth,
		maxPreviewHeight: maxPreviewHeight,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height

	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.contentWidth = innerWidth

	l.previewWidth = min(l.maxPreviewWidth, innerWidth)
	// title, file name, hint, help bar and the gaps between them
	const chrome = 9
	usable := height - chrome
	if usable < 4 {
		usable = 4
	}
	l.previewHeight = min(l.maxPreviewHeight, usable)

	l.meterWidth = min(meterMaxWidth, innerWidth-4)
	if l.meterWidth < 10 {
		l.meterWidth = 10
	}

	l.pickerHeight = height - chrome
	if l.pickerHeight < pickerMinHeight {
		l.pickerHeight = pickerMinHeight
	}
}

func (l pageLayout) previewOptions() preview.Options {
	return preview.Options{Width: l.previewWidth, Height: l.previewHeight}
}
