// Package editor edits a single todo straight against storage.
//
// An Editor re-reads the whole persisted collection, works on one item and
// rewrites the whole collection on save. It does not share state with the
// in-memory list, so a list save issued afterwards can overwrite an edit
// (and the other way round) when both are open at once.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/mirror"
	"github.com/idilsaglam/mytodos/internal/model"
)

var (
	// ErrNotFound means the editor was opened on an id that is not stored.
	ErrNotFound = errors.New("editor: todo not found")
	// ErrEmptyTitle means the draft is blank after trimming.
	ErrEmptyTitle = errors.New("editor: empty title")
)

type Editor struct {
	store  kv.Store
	key    string
	logger *log.Logger

	id    int
	found bool
	todo  model.Todo
}

// Open looks up id in storage. Anything short of a match (missing key,
// unknown id, unreadable blob) gives a blank editor; failures are logged.
func Open(ctx context.Context, store kv.Store, key string, id int, logger *log.Logger) *Editor {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Editor{store: store, key: key, logger: logger, id: id}
	todos, err := e.read(ctx)
	if err != nil {
		logger.Error("edit: load failed", "key", key, "id", id, "err", err)
		return e
	}
	for _, t := range todos {
		if t.ID == id {
			e.todo, e.found = t, true
			break
		}
	}
	return e
}

func (e *Editor) ID() int { return e.id }

// Found reports whether the requested todo was located.
func (e *Editor) Found() bool { return e.found }

// Title is the current draft, untrimmed.
func (e *Editor) Title() string { return e.todo.Title }

// SetTitle replaces the draft. Nothing is trimmed or stored yet.
func (e *Editor) SetTitle(draft string) {
	if !e.found {
		return
	}
	e.todo.Title = draft
}

// Save trims the draft and writes the whole collection back with the
// edited todo moved to the end.
func (e *Editor) Save(ctx context.Context) (model.Todo, error) {
	if !e.found {
		return model.Todo{}, ErrNotFound
	}
	title := strings.TrimSpace(e.todo.Title)
	if title == "" {
		return model.Todo{}, ErrEmptyTitle
	}
	saved := e.todo
	saved.Title = title

	stored, err := e.read(ctx)
	if err != nil {
		return model.Todo{}, fmt.Errorf("reload: %w", err)
	}
	all := make([]model.Todo, 0, len(stored)+1)
	for _, t := range stored {
		if t.ID != saved.ID {
			all = append(all, t)
		}
	}
	all = append(all, saved)

	b, err := mirror.Encode(all)
	if err != nil {
		return model.Todo{}, err
	}
	if err := e.store.Set(ctx, e.key, b); err != nil {
		return model.Todo{}, fmt.Errorf("store: %w", err)
	}
	e.todo = saved
	e.logger.Debug("edit saved", "key", e.key, "id", saved.ID)
	return saved, nil
}

func (e *Editor) read(ctx context.Context) ([]model.Todo, error) {
	b, err := e.store.Get(ctx, e.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mirror.Decode(b)
}
