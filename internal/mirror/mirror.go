// Package mirror keeps durable storage in step with the in-memory todo list.
//
// A Mirror loads the collection once, then accepts full snapshots after
// every mutation. Snapshots are written by a single background writer in
// the order they were accepted; snapshots that pile up while a write is in
// flight collapse into the newest one. Storage failures are logged and
// never retried.
package mirror

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/model"
)

// State is the load state of a Mirror.
type State int

const (
	Unloaded State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "unloaded"
}

// Source tells where a loaded collection came from.
type Source int

const (
	SourceStored    Source = iota // decoded from storage
	SourceSeed                    // nothing stored, built-in seed used
	SourceRecovered               // storage unreadable or malformed, started empty
)

func (s Source) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceSeed:
		return "seed"
	default:
		return "recovered"
	}
}

// LoadResult is the collection handed to the list on startup, newest first.
type LoadResult struct {
	Todos  []model.Todo
	Source Source
}

// ErrAlreadyLoaded is returned by every Load after the first.
var ErrAlreadyLoaded = errors.New("mirror: already loaded")

type Mirror struct {
	store  kv.Store
	key    string
	logger *log.Logger
	seed   func() []model.Todo

	loadMu sync.Mutex

	mu       sync.Mutex
	state    State
	closed   bool
	pending  []model.Todo
	dirty    bool
	queued   uint64        // snapshots accepted so far
	written  uint64        // snapshots covered by a finished write
	progress chan struct{} // closed and replaced after every write

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

type Option func(*Mirror)

func WithLogger(l *log.Logger) Option {
	return func(m *Mirror) { m.logger = l }
}

// WithSeed replaces the built-in seed collection.
func WithSeed(seed func() []model.Todo) Option {
	return func(m *Mirror) { m.seed = seed }
}

// New starts the background writer for key in store. Call Close to stop it.
func New(store kv.Store, key string, opts ...Option) *Mirror {
	m := &Mirror{
		store:    store,
		key:      key,
		logger:   logging.Discard(),
		seed:     model.Seed,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.run()
	return m
}

func (m *Mirror) Key() string { return m.key }

func (m *Mirror) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Load reads the stored collection, falling back to the seed when nothing
// is stored. Read and decode failures are logged and yield an empty
// collection. Only the first call does any work.
func (m *Mirror) Load(ctx context.Context) (LoadResult, error) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if m.State() == Loaded {
		return LoadResult{}, ErrAlreadyLoaded
	}

	res := m.read(ctx)
	model.SortByIDDesc(res.Todos)

	m.mu.Lock()
	m.state = Loaded
	m.mu.Unlock()
	m.logger.Debug("loaded", "key", m.key, "source", res.Source, "count", len(res.Todos))
	return res, nil
}

func (m *Mirror) read(ctx context.Context) LoadResult {
	b, err := m.store.Get(ctx, m.key)
	if errors.Is(err, kv.ErrNotFound) {
		return LoadResult{Todos: m.seed(), Source: SourceSeed}
	}
	if err != nil {
		m.logger.Error("load failed", "key", m.key, "err", err)
		return LoadResult{Todos: []model.Todo{}, Source: SourceRecovered}
	}
	todos, err := Decode(b)
	if err != nil {
		m.logger.Error("load failed", "key", m.key, "err", err)
		return LoadResult{Todos: []model.Todo{}, Source: SourceRecovered}
	}
	if len(todos) == 0 {
		return LoadResult{Todos: m.seed(), Source: SourceSeed}
	}
	return LoadResult{Todos: todos, Source: SourceStored}
}

// Save queues a full snapshot for writing and returns immediately.
// Snapshots offered before Load or after Close are dropped.
func (m *Mirror) Save(todos []model.Todo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Loaded {
		m.logger.Warn("save before load dropped", "key", m.key)
		return
	}
	if m.closed {
		m.logger.Warn("save after close dropped", "key", m.key)
		return
	}
	m.pending = append(make([]model.Todo, 0, len(todos)), todos...)
	m.dirty = true
	m.queued++
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot accepted before the call has been
// handed to storage. Write failures do not make Flush fail; only ctx does.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	target := m.queued
	m.mu.Unlock()
	for {
		m.mu.Lock()
		if m.written >= target {
			m.mu.Unlock()
			return nil
		}
		ch := m.progress
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes whatever is pending and stops the writer.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.stop)
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) run() {
	defer close(m.done)
	for {
		select {
		case <-m.wake:
			m.drain()
		case <-m.stop:
			m.drain()
			return
		}
	}
}

func (m *Mirror) drain() {
	for {
		m.mu.Lock()
		if !m.dirty {
			m.mu.Unlock()
			return
		}
		snapshot, seq := m.pending, m.queued
		m.pending, m.dirty = nil, false
		m.mu.Unlock()

		m.write(snapshot)

		m.mu.Lock()
		m.written = seq
		close(m.progress)
		m.progress = make(chan struct{})
		m.mu.Unlock()
	}
}

func (m *Mirror) write(todos []model.Todo) {
	b, err := Encode(todos)
	if err != nil {
		m.logger.Error("save failed", "key", m.key, "err", err)
		return
	}
	if err := m.store.Set(context.Background(), m.key, b); err != nil {
		m.logger.Error("save failed", "key", m.key, "err", err)
		return
	}
	m.logger.Debug("saved", "key", m.key, "count", len(todos))
}
