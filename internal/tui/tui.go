// Package tui is the interactive terminal front end: a list view with an
// inline add box and an edit view for a single todo.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/mytodos/internal/app"
	"github.com/idilsaglam/mytodos/internal/editor"
	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/model"
	"github.com/idilsaglam/mytodos/internal/theme"
)

// editTitleLimit caps titles typed in the edit view.
const editTitleLimit = 30

type view int

const (
	listView view = iota
	editView
)

type (
	loadedMsg       struct{}
	editorOpenedMsg struct{ ed *editor.Editor }
	editSavedMsg    struct {
		todo model.Todo
		err  error
	}
)

// Deps is what the TUI needs from the outside world.
type Deps struct {
	Session *app.Session
	Store   kv.Store // read directly by the edit view
	Key     string
	Theme   theme.Theme
	Logger  *log.Logger
}

type Model struct {
	ctx    context.Context
	deps   Deps
	theme  theme.Theme
	logger *log.Logger

	loaded bool
	view   view
	width  int
	height int

	list   list.Model
	adding bool
	add    textinput.Model

	editor *editor.Editor
	edit   textinput.Model
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	editKey   = key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	themeKey  = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme"))
)

// New builds the model. Nothing is loaded until the program starts.
func New(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	m := Model{
		ctx:    ctx,
		deps:   deps,
		theme:  deps.Theme,
		logger: logger,
		width:  80,
		height: 24,
	}

	l := list.New(nil, itemDelegate{theme: m.theme}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addKey, toggleKey, deleteKey, editKey, themeKey}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys
	m.list = l

	m.add = textinput.New()
	m.add.Prompt = "> "
	m.add.Placeholder = "Add a new todo"
	m.add.CharLimit = 200

	m.edit = textinput.New()
	m.edit.Prompt = "> "
	m.edit.Placeholder = "Edit todo"
	m.edit.CharLimit = editTitleLimit

	m.applyTheme()
	m.resize()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the session on the first frame.
func (m Model) Init() tea.Cmd {
	s := m.deps.Session
	ctx := m.ctx
	return func() tea.Msg {
		s.Load(ctx)
		return loadedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case loadedMsg:
		m.loaded = true
		return m, m.refresh()
	case editorOpenedMsg:
		m.editor = msg.ed
		m.view = editView
		m.edit.SetValue(msg.ed.Title())
		m.edit.CursorEnd()
		return m, m.edit.Focus()
	case editSavedMsg:
		return m.editSaved(msg)
	}

	if !m.loaded {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.view == editView {
		return m.updateEdit(msg)
	}
	if m.adding {
		return m.updateAdd(msg)
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)
	if isKey && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.adding = true
			m.add.SetValue("")
			m.resize()
			return m, m.add.Focus()
		case " ":
			if t, ok := m.selected(); ok {
				m.deps.Session.Toggle(t.ID)
			}
			return m, m.refresh()
		case "d":
			if t, ok := m.selected(); ok {
				m.deps.Session.Remove(t.ID)
			}
			return m, m.refresh()
		case "e", "enter":
			if t, ok := m.selected(); ok {
				return m, m.openEditor(t.ID)
			}
			return m, nil
		case "t":
			m.theme = m.theme.Toggle()
			m.applyTheme()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			// blank titles are ignored by the session
			if _, created := m.deps.Session.Create(m.add.Value()); created {
				m.add.SetValue("")
				m.list.Select(0)
			}
			return m, m.refresh()
		case "esc":
			m.adding = false
			m.add.SetValue("")
			m.add.Blur()
			m.resize()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.editor.SetTitle(m.edit.Value())
			return m, m.saveEdit()
		case "esc":
			return m.closeEditor(), nil
		case "ctrl+t":
			m.theme = m.theme.Toggle()
			m.applyTheme()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

// openEditor flushes pending list writes so the editor reads current data.
func (m Model) openEditor(id int) tea.Cmd {
	ctx, d, logger := m.ctx, m.deps, m.logger
	return func() tea.Msg {
		if err := d.Session.Flush(ctx); err != nil {
			logger.Warn("flush before edit", "err", err)
		}
		return editorOpenedMsg{ed: editor.Open(ctx, d.Store, d.Key, id, logger)}
	}
}

func (m Model) saveEdit() tea.Cmd {
	ctx, ed := m.ctx, m.editor
	return func() tea.Msg {
		t, err := ed.Save(ctx)
		return editSavedMsg{todo: t, err: err}
	}
}

func (m Model) editSaved(msg editSavedMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, editor.ErrNotFound), errors.Is(msg.err, editor.ErrEmptyTitle):
		return m, nil
	case msg.err != nil:
		m.logger.Error("edit save failed", "err", msg.err)
		return m, nil
	}
	// keep the in-memory list in step with what the editor wrote
	m.deps.Session.SetTitle(msg.todo.ID, msg.todo.Title)
	m = m.closeEditor()
	return m, m.refresh()
}

func (m Model) closeEditor() Model {
	m.view = listView
	m.editor = nil
	m.edit.SetValue("")
	m.edit.Blur()
	return m
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) refresh() tea.Cmd {
	cmd := m.list.SetItems(toItems(m.deps.Session.All()))
	m.list.Title = m.header()
	return cmd
}

func (m *Model) header() string {
	t := m.theme
	done, pending := m.deps.Session.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		"My Todos",
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}

func (m *Model) applyTheme() {
	m.list.SetDelegate(itemDelegate{theme: m.theme})
	m.list.Styles.Title = m.theme.Title
	m.list.Styles.HelpStyle = m.theme.Help
	m.list.Styles.PaginationStyle = m.theme.Help
	m.add.TextStyle = lipgloss.NewStyle().Foreground(m.theme.Palette.Text)
	m.edit.TextStyle = m.add.TextStyle
	if m.loaded {
		m.list.Title = m.header()
	}
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	if !m.loaded {
		return ""
	}
	if m.view == editView {
		return m.viewEdit()
	}
	content := m.list.View()
	if m.adding {
		bar := m.theme.InputFrame.Render("Add a new todo  " + m.theme.Icon + "\n" + m.add.View())
		content = bar + "\n" + content
	}
	return m.theme.Frame.Render(content)
}

func (m Model) viewEdit() string {
	t := m.theme
	lines := []string{
		t.Title.Render("Edit Todo") + "  " + t.Icon,
		"",
		t.InputFrame.Render(m.edit.View()),
		"",
		t.Help.Render("enter save • esc cancel • ctrl+t theme"),
	}
	return t.Panel(lines)
}
