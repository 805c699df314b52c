package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/benamedd/phytoscan/internal/analysis"
	"github.com/benamedd/phytoscan/internal/logging"
)

type jobKind string

type jobStatus string

const (
	jobKindUpload      jobKind = "upload"
	jobKindResultImage jobKind = "result-image"
	jobKindPreview     jobKind = "preview"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
	jobStatusCanceled  jobStatus = "canceled"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Generation  uint64
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start runs runner under ctx. The generation is recorded on both snapshots
// so the model can tell a superseded job from the current one.
func (b *jobBus) Start(ctx context.Context, kind jobKind, generation uint64, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Generation: generation, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			Generation:  generation,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		switch {
		case err == nil:
			snapshot.Status = jobStatusSucceeded
		case analysis.IsCanceled(err):
			snapshot.Status = jobStatusCanceled
			snapshot.Err = err.Error()
		default:
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		logging.Logger.Infow("[jobs] "+string(kind)+" "+string(snapshot.Status),
			"id", id,
			"generation", generation,
			"duration", snapshot.Duration,
			"err", err,
		)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}
