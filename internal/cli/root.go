// Package cli implements the todo command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/mytodos/internal/theme"
)

// Version is set via ldflags at build time.
var Version = "dev"

// usageError marks mistakes in how the command was called (exit code 2).
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// flags tune behavior from the root command.
type flags struct {
	configPath string
	theme      string
	driver     string
	logLevel   string
	group      bool // ls: group output by pending/done
	force      bool // config init: overwrite
}

// NewRootCmd builds the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - a tiny todo list",
		Long: `todo keeps a short list of things to do.

Run without arguments to open the interactive list.
Items are saved locally after every change.`,
		Version:       Version,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, f)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default ./todo.toml when present)")
	pf.StringVar(&f.theme, "theme", "", "color theme: auto, light or dark")
	pf.StringVar(&f.driver, "driver", "", "storage driver: file, sqlite, redis or memory")
	pf.StringVar(&f.logLevel, "log-level", "", "diagnostic log level")

	root.AddCommand(
		newLsCmd(f),
		newAddCmd(f),
		newDoneCmd(f),
		newRmCmd(f),
		newEditCmd(f),
		newShowCmd(f),
		newConfigCmd(f),
	)
	return root
}

// Execute runs the CLI and returns an exit code (0 ok, 1 error, 2 usage).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	th := theme.New(theme.Light)
	th.Fail(stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) || isCobraUsage(err) {
		return 2
	}
	return 1
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown subcommand: %s (see `todo --help`)", args[0])
	}
	return nil
}

// isCobraUsage catches flag parsing errors raised by cobra itself.
func isCobraUsage(err error) bool {
	msg := err.Error()
	for _, p := range []string{"unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument"} {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}
