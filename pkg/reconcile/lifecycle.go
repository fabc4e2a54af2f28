package reconcile

import (
	"context"
	"sync"

	"github.com/kasuboski/simulcast/pkg/logger"
	"github.com/kasuboski/simulcast/pkg/machine"
	"go.uber.org/zap"
)

// Transition is an observed change of a file's state between passes
type Transition struct {
	Filename string
	From     State
	To       State
}

// Completed reports whether the download finished in this transition
func (t Transition) Completed() bool {
	return t.From == StateDownloading && t.To == StateDownloaded
}

// Lifecycle remembers the state of each file across reconciliation passes
type Lifecycle struct {
	mu    sync.Mutex
	files map[string]*machine.StateMachine[State]
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{files: map[string]*machine.StateMachine[State]{}}
}

func newFileMachine(start State) *machine.StateMachine[State] {
	return machine.New(start,
		machine.From(StateDownloading).To(StateDownloading, StateDownloaded, StateRemoved),
		machine.From(StateDownloaded).To(StateDownloaded, StateRemoved),
	)
}

// Observe applies a pass of records and returns the state changes it saw. Files absent from
// records are forgotten. Invalid transitions are logged and the file restarts from the new state.
func (l *Lifecycle) Observe(ctx context.Context, records []Record) []Transition {
	log := logger.FromCtx(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	var transitions []Transition
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.Filename] = struct{}{}

		m, ok := l.files[rec.Filename]
		if !ok {
			l.files[rec.Filename] = newFileMachine(rec.State)
			continue
		}

		prev, err := m.ToState(rec.State)
		if err != nil {
			log.Warnw("unexpected download state change", zap.String("file", rec.Filename), zap.Error(err))
			l.files[rec.Filename] = newFileMachine(rec.State)
		}
		if prev == rec.State {
			continue
		}

		t := Transition{Filename: rec.Filename, From: prev, To: rec.State}
		if t.Completed() {
			log.Infow("download completed", zap.String("file", rec.Filename), zap.String("series", rec.Series), zap.String("episode", rec.Episode))
		}
		transitions = append(transitions, t)
	}

	for name := range l.files {
		if _, ok := seen[name]; !ok {
			delete(l.files, name)
		}
	}

	return transitions
}

// State returns the last observed state of filename
func (l *Lifecycle) State(filename string) (State, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.files[filename]
	if !ok {
		return "", false
	}
	return m.Current(), true
}
