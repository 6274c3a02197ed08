package model

import "sort"

// Todo is the domain model for a todo entry.
// ID is caller-assigned and unique within a collection.
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Seed is the built-in collection used when nothing has been persisted yet.
// It returns a fresh slice on every call.
func Seed() []Todo {
	return []Todo{
		{ID: 1, Title: "Finish reading the book", Completed: true},
		{ID: 2, Title: "Buy groceries", Completed: false},
		{ID: 3, Title: "Call mom", Completed: false},
		{ID: 4, Title: "Water the plants", Completed: true},
		{ID: 5, Title: "Plan the weekend trip", Completed: false},
	}
}

// SortByIDDesc orders todos newest first, in place.
func SortByIDDesc(todos []Todo) {
	sort.SliceStable(todos, func(i, j int) bool { return todos[i].ID > todos[j].ID })
}

// MaxID returns the largest id in todos, or 0 when empty.
func MaxID(todos []Todo) int {
	highest := 0
	for _, t := range todos {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}
