package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/mytodos/internal/config"
	"github.com/idilsaglam/mytodos/internal/editor"
	"github.com/idilsaglam/mytodos/internal/model"
	"github.com/idilsaglam/mytodos/internal/theme"
	"github.com/idilsaglam/mytodos/internal/tui"
)

func newLsCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List todos, newest first",
		Args:  usageArgs(cobra.NoArgs, "usage: todo ls [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())
			printList(cmd.OutOrStdout(), e.theme, e.session.All(), f.group)
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.group, "group", false, "group output by pending/done")
	return cmd
}

func newAddCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:     "add <title...>",
		Short:   "Add a new todo (title can be multiple words)",
		Example: `  todo add "Buy milk"`,
		Args:    usageArgs(cobra.MinimumNArgs(1), "usage: todo add <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("add: empty title")
			}
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())
			t, _ := e.session.Create(title)
			e.theme.OK(cmd.OutOrStdout(), fmt.Sprintf("added #%d", t.ID))
			return nil
		},
	}
}

func newDoneCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle completion of a todo",
		Args:  usageArgs(cobra.ExactArgs(1), "usage: todo done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("done", args[0])
			if err != nil {
				return err
			}
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())
			if !e.session.Toggle(id) {
				return missing(cmd, e, id)
			}
			t, _ := e.session.Get(id)
			state := "pending"
			if t.Completed {
				state = "done"
			}
			e.theme.OK(cmd.OutOrStdout(), fmt.Sprintf("toggled #%d (%s)", id, state))
			return nil
		},
	}
}

func newRmCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a todo",
		Args:  usageArgs(cobra.ExactArgs(1), "usage: todo rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("rm", args[0])
			if err != nil {
				return err
			}
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())
			if !e.session.Remove(id) {
				return missing(cmd, e, id)
			}
			e.theme.OK(cmd.OutOrStdout(), fmt.Sprintf("removed #%d", id))
			return nil
		},
	}
}

func newEditCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title...>",
		Short: "Change the title of a stored todo",
		Args:  usageArgs(cobra.MinimumNArgs(2), "usage: todo edit <id> <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("edit", args[0])
			if err != nil {
				return err
			}
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			// the editor reads storage, so pending list writes go first
			if err := e.session.Flush(cmd.Context()); err != nil {
				return err
			}
			ed := editor.Open(cmd.Context(), e.store, e.cfg.Storage.Key, id, e.logger)
			ed.SetTitle(strings.Join(args[1:], " "))
			saved, err := ed.Save(cmd.Context())
			switch {
			case errors.Is(err, editor.ErrNotFound):
				return usagef("edit: no stored todo with id %d", id)
			case errors.Is(err, editor.ErrEmptyTitle):
				return usagef("edit: empty title")
			case err != nil:
				return fmt.Errorf("edit: %w", err)
			}
			e.theme.OK(cmd.OutOrStdout(), fmt.Sprintf("renamed #%d to %q", saved.ID, saved.Title))
			return nil
		},
	}
}

func newShowCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  usageArgs(cobra.ExactArgs(1), "usage: todo show <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("show", args[0])
			if err != nil {
				return err
			}
			e, err := open(cmd, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())
			t, ok := e.session.Get(id)
			if !ok {
				return missing(cmd, e, id)
			}
			status := "pending"
			if t.Completed {
				status = "done"
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.theme.Panel([]string{
				e.theme.Title.Render(fmt.Sprintf("#%d", t.ID)),
				t.Title,
				e.theme.Muted.Render(status),
			}))
			return nil
		},
	}
}

func newConfigCmd(f *flags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Args:  cobra.NoArgs,
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  usageArgs(cobra.MaximumNArgs(1), "usage: todo config init [path]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, f.force); err != nil {
				return err
			}
			theme.New(theme.Light).OK(cmd.OutOrStdout(), "wrote "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&f.force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func runTUI(cmd *cobra.Command, f *flags) error {
	// The alt screen owns the terminal, so diagnostics only go to a log file.
	e, err := open(cmd, f, io.Discard)
	if err != nil {
		return err
	}
	defer e.close(cmd.Context())
	return tui.Run(cmd.Context(), tui.Deps{
		Session: e.session,
		Store:   e.store,
		Key:     e.cfg.Storage.Key,
		Theme:   e.theme,
		Logger:  e.logger,
	})
}

// -------------- helpers ----------------

func usageArgs(check cobra.PositionalArgs, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usagef("%s", usage)
		}
		return nil
	}
}

func parseID(verb, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("%s: not a number: %s", verb, s)
	}
	return id, nil
}

func missing(cmd *cobra.Command, e *env, id int) error {
	fmt.Fprintln(cmd.ErrOrStderr(), e.theme.Muted.Render("Hint: run `todo ls` to see valid ids"))
	return usagef("no todo with id %d", id)
}

// -------------- rendering helpers --------------

func printList(w io.Writer, t theme.Theme, todos []model.Todo, group bool) {
	done, pending := stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("My Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(theme.ProgressBar(done, done+pending, 28)))
	lines = append(lines, "")
	if group {
		lines = append(lines, groupLines(t, todos)...)
	} else {
		lines = append(lines, flatLines(t, todos)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	fmt.Fprintln(w, t.Panel(lines))
}

func stats(todos []model.Todo) (done, pending int) {
	for _, td := range todos {
		if td.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(t theme.Theme, todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{t.Muted.Render("no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		text := td.Title
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		box, title := t.Muted.Render(t.BoxUnchecked), text
		if td.Completed {
			box, title = t.Success.Render(t.BoxChecked), t.Done.Render(text)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%3d", td.ID)), box, title))
	}
	return out
}

func groupLines(t theme.Theme, todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(t, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(t, done)...)
	}
	return lines
}
