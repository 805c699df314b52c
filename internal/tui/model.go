package tui

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/benamedd/phytoscan/internal/analysis"
	"github.com/benamedd/phytoscan/internal/filewatch"
	"github.com/benamedd/phytoscan/internal/logging"
	"github.com/benamedd/phytoscan/internal/preview"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Client   *analysis.Client
	Previews *preview.Registry
	Language language.Tag

	StartDir      string
	AllowedTypes  []string
	PreviewWidth  int
	PreviewHeight int
	// InlineResultImage fetches the annotated image and renders it below the results.
	InlineResultImage bool
	// WatchSelection follows the selected file on disk.
	WatchSelection bool
	// InitialFile is selected as soon as the program starts.
	InitialFile string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Previews == nil {
		config.Previews = preview.NewRegistry()
	}
	if config.Client == nil {
		client, err := analysis.New(analysis.DefaultOrigin)
		if err != nil {
			panic(err)
		}
		config.Client = client
	}
	text := catalogFor(config.Language)
	layout := newPageLayout(config.PreviewWidth, config.PreviewHeight)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	picker := filepicker.New()
	picker.AllowedTypes = append([]string(nil), config.AllowedTypes...)
	picker.AutoHeight = false
	picker.Height = layout.pickerHeight
	picker.CurrentDirectory = startDirectory(config.StartDir)

	return &model{
		config:  config,
		text:    text,
		keys:    newKeyMap(text),
		layout:  layout,
		view:    viewEmpty,
		picker:  picker,
		spinner: spin,
		meter:   newMeter(layout.meterWidth),
		help:    help.New(),
		jobs:    newJobBus(),
	}
}

type model struct {
	config Config
	text   catalog
	keys   keyMap
	layout pageLayout
	view   viewState

	picker  filepicker.Model
	picking bool
	spinner spinner.Model
	meter   progress.Model
	help    help.Model
	jobs    *jobBus

	file           string
	preview        *preview.Handle
	previewErr     error
	previewSeq     uint64
	previewLoading bool
	watcher        *filewatch.Watcher
	watchSeq       uint64

	// generation identifies the newest request. Results carrying an older
	// generation are discarded.
	generation uint64
	cancel     context.CancelFunc

	result         *analysis.Result
	resultImage    *preview.Handle
	resultImageErr error
	imageLoading   bool
	errMessage     string
}

func newMeter(width int) progress.Model {
	return progress.New(
		progress.WithSolidFill(string(accentColor)),
		progress.WithWidth(width),
	)
}

func startDirectory(dir string) string {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func (m *model) Init() tea.Cmd {
	if m.config.InitialFile != "" {
		return selectFileCmd(m.config.InitialFile)
	}
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.picker.Height = m.layout.pickerHeight
		m.meter.Width = m.layout.meterWidth
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case selectFileMsg:
		return m, m.selectFile(msg.path)
	case jobSignalMsg:
		logging.Logger.Debugw("[jobs] "+string(msg.Snapshot.Kind)+" started",
			"id", msg.Snapshot.ID,
			"generation", msg.Snapshot.Generation,
		)
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case uploadResultMsg:
		return m, m.handleUploadResult(msg)
	case previewMsg:
		m.handlePreview(msg)
		return m, nil
	case resultImageMsg:
		m.handleResultImage(msg)
		return m, nil
	case filewatch.EventMsg:
		return m, m.handleWatchEvent(msg)
	case filewatch.ErrorMsg:
		if m.watcher != nil && msg.Token == m.watcher.Token() {
			logging.Logger.Warnw("selection watch failed", "file", m.watcher.Path(), "error", msg.Err)
			m.stopWatch()
		}
		return m, nil
	case spinner.TickMsg:
		if m.view != viewLoading && !m.imageLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.meter.Update(msg)
		if meter, ok := updated.(progress.Model); ok {
			m.meter = meter
		}
		return m, cmd
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.shutdown()
		return m, tea.Quit
	}
	if m.picking {
		if key.Matches(msg, m.keys.Cancel) {
			m.reset()
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			return m, tea.Batch(cmd, m.selectFile(path))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		return m, m.openPicker()
	case matchesKeys(msg.String(), m.keys.Analyze):
		// analyze validates on its own when nothing is selected
		return m, m.analyze()
	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m *model) openPicker() tea.Cmd {
	m.picking = true
	m.syncKeys()
	return m.picker.Init()
}

// selectFile stores path as the current selection and shows its preview.
// Any in-flight analysis is superseded.
func (m *model) selectFile(path string) tea.Cmd {
	m.picking = false
	m.supersede()
	m.releaseResult()
	m.stopWatch()

	m.preview.Release()
	m.preview = nil
	m.previewErr = nil
	m.file = path
	m.errMessage = ""
	m.view = viewPreview
	m.syncKeys()
	logging.Logger.Infow("file selected", "file", filepath.Base(path), "generation", m.generation)
	return tea.Batch(m.loadPreview(), m.startWatch())
}

// analyze uploads the selected file. Without a selection it shows the
// validation error and sends nothing.
func (m *model) analyze() tea.Cmd {
	if m.file == "" {
		m.showError(analysis.ErrNoFile)
		return nil
	}
	generation := m.supersede()
	ctx := m.requestContext()
	m.releaseResult()
	m.errMessage = ""
	m.meter = newMeter(m.layout.meterWidth)
	m.view = viewLoading
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(ctx, jobKindUpload, generation, uploadJob(m.config.Client, m.file, generation)),
	)
}

// reset returns the widget to its initial empty state. Calling it again has
// no further visible effect.
func (m *model) reset() {
	m.supersede()
	m.picking = false
	m.stopWatch()
	m.releaseResult()
	m.clearSelection()
	m.errMessage = ""
	m.meter = newMeter(m.layout.meterWidth)
	m.view = viewEmpty
	m.syncKeys()
}

func (m *model) shutdown() {
	m.supersede()
	m.previewSeq++
	m.previewLoading = false
	m.stopWatch()
	m.releaseResult()
	m.preview.Release()
	m.preview = nil
}

func (m *model) handleUploadResult(msg uploadResultMsg) tea.Cmd {
	if msg.generation != m.generation {
		logging.Logger.Debugw("dropping superseded upload result", "generation", msg.generation, "current", m.generation)
		return nil
	}
	if msg.err != nil {
		m.finishRequest()
		m.showError(msg.err)
		return nil
	}
	m.result = msg.result
	m.errMessage = ""
	m.view = viewResults

	var cmds []tea.Cmd
	if percent, ok := msg.result.SeverityPercent(); ok {
		cmds = append(cmds, m.meter.SetPercent(percent/100))
	}
	if m.config.InlineResultImage && msg.result.HasImage() {
		m.imageLoading = true
		imageURL := m.config.Client.ResolveImageURL(msg.result.ImageURL)
		runner := resultImageJob(m.config.Client, m.config.Previews, imageURL, m.layout.previewOptions(), m.generation)
		cmds = append(cmds, m.jobs.Start(m.requestContext(), jobKindResultImage, m.generation, runner))
	} else {
		m.finishRequest()
	}
	return tea.Batch(cmds...)
}

func (m *model) handleResultImage(msg resultImageMsg) {
	if msg.generation != m.generation || m.view != viewResults {
		msg.handle.Release()
		return
	}
	m.finishRequest()
	m.imageLoading = false
	if msg.err != nil {
		logging.Logger.Warnw("annotated image unavailable", "generation", msg.generation, "error", msg.err)
		m.resultImageErr = msg.err
		return
	}
	m.resultImage.Release()
	m.resultImage = msg.handle
}

func (m *model) handleWatchEvent(msg filewatch.EventMsg) tea.Cmd {
	if m.watcher == nil || msg.Token != m.watcher.Token() {
		return nil
	}
	switch msg.Kind {
	case filewatch.Removed:
		logging.Logger.Infow("selected file removed", "file", msg.Path)
		m.stopWatch()
		m.clearSelection()
		return nil
	case filewatch.Changed:
		if m.view == viewPreview {
			return tea.Batch(m.loadPreview(), watchCmd(m.watcher))
		}
	}
	return watchCmd(m.watcher)
}

func (m *model) showError(err error) {
	m.errMessage = m.text.errorText(err)
	m.view = viewError
	logging.Logger.Infow("showing error", "message", m.errMessage, "error", err)
}

// supersede invalidates every outstanding request and returns the new
// generation.
func (m *model) supersede() uint64 {
	m.finishRequest()
	m.generation++
	return m.generation
}

// requestContext replaces the cancel func with a fresh one for the current
// generation.
func (m *model) requestContext() context.Context {
	m.finishRequest()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return ctx
}

func (m *model) finishRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// loadPreview decodes the selected file off the event loop. The current
// preview stays on screen until the new one arrives.
func (m *model) loadPreview() tea.Cmd {
	m.previewSeq++
	m.previewLoading = true
	runner := previewJob(m.config.Previews, m.file, m.layout.previewOptions(), m.previewSeq)
	return m.jobs.Start(context.Background(), jobKindPreview, m.previewSeq, runner)
}

func (m *model) handlePreview(msg previewMsg) {
	if msg.seq != m.previewSeq {
		msg.handle.Release()
		return
	}
	m.previewLoading = false
	if msg.err != nil {
		logging.Logger.Warnw("preview unavailable", "file", filepath.Base(m.file), "error", msg.err)
		m.preview.Release()
		m.preview = nil
		m.previewErr = msg.err
		return
	}
	m.preview.Release()
	m.preview = msg.handle
	m.previewErr = nil
}

// clearSelection forgets the file and its preview. The output is blanked only
// when it was showing that preview.
func (m *model) clearSelection() {
	m.previewSeq++
	m.previewLoading = false
	m.preview.Release()
	m.preview = nil
	m.previewErr = nil
	m.file = ""
	if m.view == viewPreview {
		m.view = viewEmpty
	}
	m.syncKeys()
}

func (m *model) releaseResult() {
	m.result = nil
	m.resultImage.Release()
	m.resultImage = nil
	m.resultImageErr = nil
	m.imageLoading = false
}

func (m *model) startWatch() tea.Cmd {
	if !m.config.WatchSelection || m.file == "" {
		return nil
	}
	m.watchSeq++
	watcher, err := filewatch.Watch(m.file, m.watchSeq)
	if err != nil {
		logging.Logger.Warnw("cannot watch selection", "file", m.file, "error", err)
		return nil
	}
	m.watcher = watcher
	return watchCmd(watcher)
}

func (m *model) stopWatch() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		logging.Logger.Debugw("closing watcher", "error", err)
	}
	m.watcher = nil
}

func (m *model) syncKeys() {
	m.keys.Open.SetEnabled(!m.picking)
	m.keys.Reset.SetEnabled(!m.picking)
	m.keys.Analyze.SetEnabled(!m.picking && m.file != "")
	m.keys.Cancel.SetEnabled(m.picking)
}

func (m *model) analyzeEnabled() bool {
	return m.keys.Analyze.Enabled()
}
