// Package repl implements the interactive mdispatch shell: one operation call
// per line, plus a few backslash commands for inspecting the registry.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/zjrosen/multidispatch/internal/catalog"
	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/presentation"
	"github.com/zjrosen/multidispatch/internal/pubsub"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

const helpText = `<operation> [args...]   invoke an operation, e.g. fact 9 or g 'a' 'a'
\l [operation]          list operations and their clauses
\s                      show dispatcher counters
\t                      toggle the call trace
\r                      re-apply the catalog file
\h                      show this help
\q                      quit

Arguments: 3 is an int, 2.5 a float, 'c' a character, true a bool,
anything else (or "quoted") a string.`

// ReloadFunc re-applies the catalog and reports what was added.
type ReloadFunc func() (catalog.Result, error)

// Config wires a Session to the engine.
type Config struct {
	Dispatcher *dispatch.Dispatcher
	Formatter  *presentation.Formatter

	// Bus carries call events for the trace view. Optional.
	Bus pubsub.Subscriber[dispatch.Event]

	// Reload is nil when the catalog is not backed by a file.
	Reload ReloadFunc
}

// Session executes shell lines against a dispatcher.
type Session struct {
	d      *dispatch.Dispatcher
	out    *presentation.Formatter
	bus    pubsub.Subscriber[dispatch.Event]
	reload ReloadFunc

	mu          sync.Mutex // serialises output
	stopTracing context.CancelFunc
}

// New creates a Session.
func New(cfg Config) *Session {
	return &Session{
		d:      cfg.Dispatcher,
		out:    cfg.Formatter,
		bus:    cfg.Bus,
		reload: cfg.Reload,
	}
}

// Help returns the command summary.
func Help() string {
	return helpText
}

// Exec runs one line. Dispatch failures are printed, not returned: the
// returned error is ErrQuit or a failure to write output.
func (s *Session) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, `\`) {
		return s.command(ctx, line)
	}

	fields, err := Tokenize(line)
	if err != nil {
		return s.notice("error: " + err.Error())
	}
	args, err := catalog.ParseArgs(fields[1:])
	if err != nil {
		return s.notice("error: " + err.Error())
	}

	op := fields[0]
	log.Debug(log.CatREPL, "invoke", "operation", op, "args", dispatch.FormatArgs(args))
	result, err := s.d.Invoke(ctx, op, args...)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.WriteResult(presentation.FromResult(op, args, result, err))
}

func (s *Session) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\q`, `\quit`:
		return ErrQuit
	case `\h`, `\help`, `\?`:
		return s.notice(helpText)
	case `\l`, `\list`:
		filter := ""
		if len(fields) > 1 {
			filter = fields[1]
		}
		ops := presentation.FromRegistry(s.d.Registry(), filter)
		if filter != "" && len(ops) == 0 {
			return s.notice(fmt.Sprintf("no operation %q", filter))
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.out.WriteOperations(ops)
	case `\s`, `\stats`:
		st := s.d.Stats()
		return s.notice(fmt.Sprintf("invocations=%d matched=%d no_match=%d unknown=%d impl_errors=%d",
			st.Invocations, st.Matched, st.NoMatch, st.Unknown, st.ImplErrors))
	case `\t`, `\trace`:
		return s.toggleTrace(ctx)
	case `\r`, `\reload`:
		return s.Reload()
	default:
		return s.notice(fmt.Sprintf("unknown command %s, \\h for help", fields[0]))
	}
}

// Reload re-applies the catalog and prints a summary. Registries only grow:
// clauses already present are reported as skipped.
func (s *Session) Reload() error {
	if s.reload == nil {
		return s.notice("catalog is built in, nothing to reload")
	}

	res, err := s.reload()
	if err != nil {
		log.ErrorErr(log.CatREPL, "catalog reload failed", err)
		return s.notice("reload failed: " + err.Error())
	}
	return s.notice(fmt.Sprintf("catalog applied: %d new clauses, %d already registered",
		len(res.Registered), len(res.Skipped)))
}

// Watch reloads the catalog on every signal from changes until ctx is done
// or changes is closed.
func (s *Session) Watch(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			log.Debug(log.CatREPL, "catalog changed")
			if err := s.Reload(); err != nil {
				log.ErrorErr(log.CatREPL, "writing reload notice", err)
			}
		}
	}
}

func (s *Session) toggleTrace(ctx context.Context) error {
	if s.bus == nil {
		return s.notice("tracing is not available")
	}

	s.mu.Lock()
	if s.stopTracing != nil {
		s.stopTracing()
		s.stopTracing = nil
		s.mu.Unlock()
		return s.notice("trace off")
	}
	traceCtx, cancel := context.WithCancel(ctx)
	s.stopTracing = cancel
	s.mu.Unlock()

	events := s.bus.Subscribe(traceCtx)
	go s.printTrace(events)
	return s.notice("trace on")
}

func (s *Session) printTrace(events <-chan pubsub.Event[dispatch.Event]) {
	for ev := range events {
		e := ev.Payload
		if e.Kind != dispatch.EventCall {
			continue
		}
		if err := s.notice(FormatTraceLine(e)); err != nil {
			return
		}
	}
}

// FormatTraceLine renders a call event indented by its depth:
//
//	  fact(2) -> #1 (<positive integer>) 4µs
func FormatTraceLine(e dispatch.Event) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", e.Depth))
	b.WriteString(e.Operation)
	b.WriteString(dispatch.FormatArgs(e.Args))
	if e.Key != "" {
		fmt.Fprintf(&b, " -> #%d %s", e.ClauseIndex, e.Key)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " failed: %v", e.Err)
	}
	fmt.Fprintf(&b, " %s", e.Duration)
	return b.String()
}

// Close stops the trace view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopTracing != nil {
		s.stopTracing()
		s.stopTracing = nil
	}
}

func (s *Session) notice(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.WriteNotice(msg)
}

// Completions lists the operations in reg whose names start with prefix.
func Completions(reg *dispatch.Registry, prefix string) []string {
	var out []string
	for _, op := range reg.Operations() {
		if strings.HasPrefix(op.Name, prefix) {
			out = append(out, op.Name)
		}
	}
	sort.Strings(out)
	return out
}

// LineReader is the part of *readline.Instance the loop needs.
type LineReader interface {
	Readline() (string, error)
}

// Run reads lines until EOF, \q, or an interrupt on an empty line.
func (s *Session) Run(ctx context.Context, rl LineReader) error {
	defer s.Close()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

// NewCompleter builds a readline completer offering the shell commands and
// the operations registered in reg at the time of each completion.
func NewCompleter(reg *dispatch.Registry) readline.AutoCompleter {
	// readline filters dynamic names against the word being typed itself.
	operations := func(string) []string { return Completions(reg, "") }
	return readline.NewPrefixCompleter(
		readline.PcItem(`\l`, readline.PcItemDynamic(operations)),
		readline.PcItem(`\s`),
		readline.PcItem(`\t`),
		readline.PcItem(`\r`),
		readline.PcItem(`\h`),
		readline.PcItem(`\q`),
		readline.PcItemDynamic(operations),
	)
}
