package app

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"squarify/internal/batch"
	"squarify/internal/logging"
	"squarify/internal/square"
)

const eventBuffer = 64

var (
	ErrNotReady  = errors.New("select input files and an output folder first")
	ErrRunActive = errors.New("processing is already running")
)

// State is the front end's view of a session: what is selected, how it
// will be compressed, and whether a run is in flight.
type State struct {
	mu      sync.Mutex
	files   []string
	output  string
	config  square.CompressionConfig
	running bool
	runner  *batch.Runner
}

func NewState() *State {
	return &State{config: square.DefaultCompression(), runner: batch.NewRunner()}
}

// NewStateWith uses runner instead of the default square converter.
func NewStateWith(runner *batch.Runner) *State {
	s := NewState()
	s.runner = runner
	return s
}

func (s *State) SelectFiles(files []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append([]string(nil), files...)
}

func (s *State) SelectOutputFolder(folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = folder
}

func (s *State) SetConfig(cfg square.CompressionConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// UpdateSetting applies one settings change to the owned config.
func (s *State) UpdateSetting(option, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Update(option, field, value)
}

func (s *State) Config() square.CompressionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *State) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

func (s *State) OutputFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Ready reports whether a run could be started.
func (s *State) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files) > 0 && s.output != ""
}

func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run is a started batch. Events is closed after Done has been delivered;
// Wait blocks until then and returns the summary.
type Run struct {
	ID     string
	Events <-chan batch.Event

	done    chan struct{}
	summary batch.Summary
}

func (r *Run) Wait() batch.Summary {
	<-r.done
	return r.summary
}

// Start launches a single background run over a snapshot of the current
// selection and config. Later edits to the State do not affect it.
func (s *State) Start() (*Run, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunActive
	}
	if len(s.files) == 0 || s.output == "" {
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	files := append([]string(nil), s.files...)
	output := s.output
	cfg := s.config
	runner := s.runner
	s.running = true
	s.mu.Unlock()

	events := make(chan batch.Event, eventBuffer)
	run := &Run{ID: uuid.NewString(), Events: events, done: make(chan struct{})}
	logging.Printf("run %s: %d files -> %s", run.ID, len(files), output)

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			close(events)
			close(run.done)
		}()

		events <- batch.Status("Starting conversion...")
		for _, line := range cfg.Describe() {
			events <- batch.Status(line)
		}
		run.summary = runner.Run(files, output, cfg, events)
		logging.Printf("run %s: %d succeeded, %d failed", run.ID, run.summary.Succeeded, run.summary.Failed)
	}()

	return run, nil
}
