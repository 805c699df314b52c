package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

func (m *model) View() string {
	body := m.outputView()
	if m.picking {
		body = m.pickerView()
	}
	return joinNonEmpty([]string{
		titleStyle.Render(m.text.Title),
		body,
		m.help.View(m.keys),
	})
}

// outputView renders the output region for the current state. Empty renders
// nothing.
func (m *model) outputView() string {
	switch m.view {
	case viewPreview:
		return m.previewView()
	case viewLoading:
		return m.loadingView()
	case viewError:
		return m.errorView()
	case viewResults:
		return m.resultsView()
	default:
		return ""
	}
}

func (m *model) pickerView() string {
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(m.text.PickerTitle),
		helperStyle.Render(m.picker.CurrentDirectory),
		m.picker.View(),
		helperStyle.Render(m.text.PickerHint),
	})
}

func (m *model) previewView() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(m.text.SelectedFile, fileNameStyle.Render(displayName(m.file))))
	art := m.preview.View()
	switch {
	case art != "":
	case m.previewLoading:
		art = helperStyle.Render(m.text.LoadingPreview)
	default:
		art = helperStyle.Render(m.text.NoPreview)
	}
	b.WriteString(previewBoxStyle.Render(art))
	b.WriteRune('\n')
	b.WriteString(previewBoxStyle.Render(hintStyle.Render(m.text.AnalyzeHint)))
	return b.String()
}

func (m *model) loadingView() string {
	return loadingStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.text.Analyzing))
}

func (m *model) errorView() string {
	message := wordwrap.String(m.errMessage, m.layout.contentWidth-4)
	return errorBoxStyle.Render(errorLabelStyle.Render(m.text.ErrorLabel) + "\n" + errorStyle.Render(message))
}

func (m *model) resultsView() string {
	if m.result == nil {
		return ""
	}
	parts := []string{sectionHeaderStyle.Render(m.text.ResultsTitle)}
	token, present := m.result.SeverityToken()
	if present {
		parts = append(parts, m.meter.View())
	} else {
		token = m.text.NotAvailable
	}
	parts = append(parts, fmt.Sprintf(m.text.InfectionLevel, severityStyle.Render(token)))
	if m.result.HasImage() {
		imageURL := m.config.Client.ResolveImageURL(m.result.ImageURL)
		parts = append(parts, fmt.Sprintf(m.text.AnnotatedImage, linkStyle.Render(imageURL)))
		switch {
		case m.resultImage != nil:
			parts = append(parts, m.resultImage.View())
		case m.imageLoading:
			parts = append(parts, helperStyle.Render(m.spinner.View()+" "+m.text.LoadingImage))
		case m.resultImageErr != nil:
			parts = append(parts, helperStyle.Render(fmt.Sprintf(m.text.ImageFailed, m.text.errorText(m.resultImageErr))))
		}
	}
	return resultsBoxStyle.Render(strings.Join(parts, "\n"))
}

func displayName(path string) string {
	if path == "" {
		return ""
	}
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
