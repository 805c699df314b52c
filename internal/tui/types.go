package tui

// viewState is what the output region currently shows.
type viewState int

const (
	viewEmpty viewState = iota
	viewPreview
	viewLoading
	viewError
	viewResults
)

func (v viewState) String() string {
	switch v {
	case viewEmpty:
		return "empty"
	case viewPreview:
		return "preview"
	case viewLoading:
		return "loading"
	case viewError:
		return "error"
	case viewResults:
		return "results"
	default:
		return "unknown"
	}
}

const (
	minViewportWidth          = 24
	viewportHorizontalPadding = 4
	meterMaxWidth             = 40
	pickerMinHeight           = 5
)
