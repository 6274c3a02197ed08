// Package store holds the authoritative in-memory todo list.
//
// A List is driven from a single interaction loop and is not safe for
// concurrent use. Persistence is someone else's job: callers snapshot
// the list with All after each mutation.
package store

import (
	"strings"

	"github.com/idilsaglam/mytodos/internal/model"
)

// List is an ordered sequence of todos with unique ids.
type List struct {
	items []model.Todo
}

// New returns a list holding a copy of todos.
func New(todos []model.Todo) *List {
	l := &List{}
	l.Replace(todos)
	return l
}

// Replace swaps the whole sequence, keeping the given order.
func (l *List) Replace(todos []model.Todo) {
	l.items = append(make([]model.Todo, 0, len(todos)), todos...)
}

// Create inserts a new pending todo at the head of the list.
// Titles that are blank after trimming are ignored.
func (l *List) Create(title string) (model.Todo, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, false
	}
	t := model.Todo{ID: model.MaxID(l.items) + 1, Title: title}
	l.items = append([]model.Todo{t}, l.items...)
	return t, true
}

// Toggle flips the completion flag of the todo with the given id.
func (l *List) Toggle(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items[i].Completed = !l.items[i].Completed
	return true
}

// Remove deletes the todo with the given id.
func (l *List) Remove(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// SetTitle commits an edited title. The title is trimmed here, on save;
// a title that trims to nothing leaves the todo untouched.
func (l *List) SetTitle(id int, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items[i].Title = title
	return true
}

// Get returns the todo with the given id.
func (l *List) Get(id int) (model.Todo, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Todo{}, false
	}
	return l.items[i], true
}

// All returns a copy of the current sequence in display order.
func (l *List) All() []model.Todo {
	return append(make([]model.Todo, 0, len(l.items)), l.items...)
}

func (l *List) Len() int { return len(l.items) }

func (l *List) index(id int) int {
	for i, t := range l.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
