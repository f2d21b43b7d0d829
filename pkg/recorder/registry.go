package recorder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/bus"
	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/sweeper"
	"github.com/voicerec/voicerec/pkg/urlmap"
)

var ErrEntryOpen = errors.New("entry is already open")

// FrontendResources is what the registry needs from the frontend resource
// list: install on the first open entry, remove on the last close.
type FrontendResources interface {
	Ensure()
	Remove()
}

// Registry owns the live recorder instances, keyed by entry ID. Each Open
// creates the instance's resources (save directory, upload lock, sweep
// schedule); Close releases them. There is no ambient global state: the
// registry is constructed and wired explicitly.
type Registry struct {
	fs       afero.Fs
	events   bus.Bus
	roots    urlmap.Roots
	frontend FrontendResources
	logger   *logging.Logger

	mu        sync.Mutex
	instances map[string]*Instance
	schedules map[string]*sweeper.Schedule
	order     []string
}

// NewRegistry returns an empty registry. frontend may be nil for headless
// use (tests, the one-shot sweep command).
func NewRegistry(fs afero.Fs, events bus.Bus, roots urlmap.Roots, frontend FrontendResources, logger *logging.Logger) *Registry {
	return &Registry{
		fs:        fs,
		events:    events,
		roots:     roots,
		frontend:  frontend,
		logger:    logger,
		instances: make(map[string]*Instance),
		schedules: make(map[string]*sweeper.Schedule),
	}
}

// Open creates the instance for an entry. The save location must exist and
// be writable before any upload is accepted, so it is created here. Opening
// the first entry installs the frontend resources.
func (r *Registry) Open(entry config.Entry) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[entry.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryOpen, entry.ID)
	}

	if err := r.fs.MkdirAll(entry.SavePath, 0o755); err != nil {
		return nil, fmt.Errorf("create save location %s: %w", entry.SavePath, err)
	}

	inst := NewInstance(entry, r.fs, r.events, r.roots, r.logger)

	if entry.AutoDelete {
		sched := sweeper.NewSchedule(
			sweeper.New(r.fs, inst.InFlight(), r.logger),
			entry.SavePath,
			r.logger,
		)
		if err := sched.Start(); err != nil {
			return nil, err
		}
		r.schedules[entry.ID] = sched
	}

	if len(r.instances) == 0 && r.frontend != nil {
		r.frontend.Ensure()
	}

	r.instances[entry.ID] = inst
	r.order = append(r.order, entry.ID)
	r.logger.Info("entry opened", "entry", entry.ID, "save_path", entry.SavePath, "auto_delete", entry.AutoDelete)

	return inst, nil
}

// Get returns the instance for an entry ID. An empty ID selects the first
// opened entry.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		if len(r.order) == 0 {
			return nil, false
		}
		id = r.order[0]
	}
	inst, ok := r.instances[id]
	return inst, ok
}

// Close tears down one entry: its sweep schedule stops and its instance is
// forgotten. Closing the last entry removes the frontend resources.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(id)
}

// CloseAll tears down every open entry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range append([]string(nil), r.order...) {
		r.closeLocked(id)
	}
}

func (r *Registry) closeLocked(id string) {
	if _, ok := r.instances[id]; !ok {
		return
	}

	if sched, ok := r.schedules[id]; ok {
		sched.Stop()
		delete(r.schedules, id)
	}

	delete(r.instances, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.instances) == 0 && r.frontend != nil {
		r.frontend.Remove()
	}

	r.logger.Info("entry closed", "entry", id)
}
