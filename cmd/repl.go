package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/presentation"
	"github.com/zjrosen/multidispatch/internal/repl"
	"github.com/zjrosen/multidispatch/internal/watcher"
)

var replWatch bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell for invoking operations",
	Long: `Start an interactive shell. Each line invokes an operation:

  mdispatch> fact 9
  362880 int

Type \h for the list of commands.

When the catalog is a file, \r re-applies it; with --watch (or catalog.watch)
it is re-applied whenever the file changes. Clauses already registered are
skipped, new clauses are appended to their operations.`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func runREPL(cmd *cobra.Command, _ []string) error {
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	isInputTty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	prompt := ""
	if isInputTty {
		prompt = "mdispatch> "
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
		AutoComplete:      repl.NewCompleter(e.dispatcher.Registry()),
	})
	if err != nil {
		return fmt.Errorf("starting line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	formatter := presentation.NewFormatter(rl.Stdout())
	if isInputTty {
		formatter = presentation.NewStyledFormatter(rl.Stdout(), presentation.TerminalStyles())
	}

	session := repl.New(repl.Config{
		Dispatcher: e.dispatcher,
		Formatter:  formatter,
		Bus:        e.bus,
		Reload:     reloadFunc(e),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if (replWatch || cfg.Catalog.Watch) && e.catalogPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(e.catalogPath))
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return err
		}
		go session.Watch(ctx, changes)
	}

	if isInputTty {
		_, _ = fmt.Fprintf(rl.Stdout(), "mdispatch %s\n\\h for help\n", version)
	}
	log.Info(log.CatREPL, "repl started", "catalog", e.catalogPath, "tty", isInputTty)

	return session.Run(ctx, rl)
}

func reloadFunc(e *engine) repl.ReloadFunc {
	if e.catalogPath == "" {
		return nil
	}
	return e.reload
}

// historyFile keeps history next to the user config, or nowhere when the
// home directory is unknown.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".config", "mdispatch")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func init() {
	replCmd.Flags().BoolVarP(&replWatch, "watch", "w", false, "Re-apply the catalog file when it changes")
	rootCmd.AddCommand(replCmd)
}
