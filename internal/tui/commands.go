package tui

import (
	"context"
	"path"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/benamedd/phytoscan/internal/analysis"
	"github.com/benamedd/phytoscan/internal/filewatch"
	"github.com/benamedd/phytoscan/internal/preview"
)

type selectFileMsg struct {
	path string
}

type uploadResultMsg struct {
	generation uint64
	result     *analysis.Result
	err        error
}

type previewMsg struct {
	seq    uint64
	handle *preview.Handle
	err    error
}

type resultImageMsg struct {
	generation uint64
	handle     *preview.Handle
	err        error
}

func selectFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return selectFileMsg{path: path}
	}
}

func uploadJob(client *analysis.Client, file string, generation uint64) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := client.Upload(ctx, file)
		return uploadResultMsg{generation: generation, result: result, err: err}, err
	}
}

func previewJob(registry *preview.Registry, file string, opts preview.Options, seq uint64) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		handle, err := registry.Acquire(file, opts)
		return previewMsg{seq: seq, handle: handle, err: err}, err
	}
}

func resultImageJob(client *analysis.Client, registry *preview.Registry, imageURL string, opts preview.Options, generation uint64) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		body, err := client.FetchImage(ctx, imageURL)
		if err != nil {
			return resultImageMsg{generation: generation, err: err}, err
		}
		defer body.Close()
		handle, err := registry.FromReader(path.Base(imageURL), body, opts)
		return resultImageMsg{generation: generation, handle: handle, err: err}, err
	}
}

func watchCmd(w *filewatch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return w.Next()
}
