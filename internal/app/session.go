// Package app wires the in-memory list to its persistence mirror.
package app

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/mirror"
	"github.com/idilsaglam/mytodos/internal/model"
	"github.com/idilsaglam/mytodos/internal/store"
)

// Session owns one list and one mirror. Every mutation that changes the
// list hands a full snapshot to the mirror; the call does not wait for
// the write.
type Session struct {
	list   *store.List
	mirror *mirror.Mirror
	logger *log.Logger
	source mirror.Source
}

func New(m *mirror.Mirror, logger *log.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{list: store.New(nil), mirror: m, logger: logger}
}

// Load fills the list from the mirror. Later calls are no-ops.
func (s *Session) Load(ctx context.Context) {
	res, err := s.mirror.Load(ctx)
	if err != nil {
		return
	}
	s.source = res.Source
	s.list.Replace(res.Todos)
}

// Loaded reports whether Load has run.
func (s *Session) Loaded() bool { return s.mirror.State() == mirror.Loaded }

// Source tells where the loaded collection came from.
func (s *Session) Source() mirror.Source { return s.source }

func (s *Session) Create(title string) (model.Todo, bool) {
	t, ok := s.list.Create(title)
	if ok {
		s.logger.Debug("created", "id", t.ID)
		s.save()
	}
	return t, ok
}

func (s *Session) Toggle(id int) bool {
	return s.changed(s.list.Toggle(id), "toggled", id)
}

func (s *Session) Remove(id int) bool {
	return s.changed(s.list.Remove(id), "removed", id)
}

func (s *Session) SetTitle(id int, title string) bool {
	return s.changed(s.list.SetTitle(id, title), "renamed", id)
}

func (s *Session) All() []model.Todo { return s.list.All() }

func (s *Session) Get(id int) (model.Todo, bool) { return s.list.Get(id) }

// Stats counts completed and pending todos.
func (s *Session) Stats() (done, pending int) {
	for _, t := range s.list.All() {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Flush waits for queued snapshots to reach storage.
func (s *Session) Flush(ctx context.Context) error { return s.mirror.Flush(ctx) }

// Close flushes and stops the mirror.
func (s *Session) Close(ctx context.Context) error { return s.mirror.Close(ctx) }

func (s *Session) changed(ok bool, what string, id int) bool {
	if ok {
		s.logger.Debug(what, "id", id)
		s.save()
	}
	return ok
}

func (s *Session) save() {
	s.mirror.Save(s.list.All())
}
