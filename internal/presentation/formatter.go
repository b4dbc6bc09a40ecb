package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	styles Styles
}

// NewFormatter creates a new formatter writing plain text and JSON.
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
		styles: PlainStyles(),
	}
}

// NewStyledFormatter creates a formatter whose text output uses styles.
func NewStyledFormatter(writer io.Writer, styles Styles) *Formatter {
	return &Formatter{
		writer: writer,
		styles: styles,
	}
}

// FormatOperations formats a list of operations as JSON
func (f *Formatter) FormatOperations(ops []OperationDTO) error {
	return f.encode(ops)
}

// FormatResult formats an invocation result as JSON
func (f *Formatter) FormatResult(result ResultDTO) error {
	return f.encode(result)
}

// FormatCheck formats a check report as JSON
func (f *Formatter) FormatCheck(check CheckDTO) error {
	return f.encode(check)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteOperations renders operations as an indented text listing:
//
//	fact  factorial over non-negative integers
//	  0  (0)
//	  1  (<positive integer>)
func (f *Formatter) WriteOperations(ops []OperationDTO) error {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(f.styles.Operation.Render(op.Name))
		if op.Description != "" {
			b.WriteString("  ")
			b.WriteString(f.styles.Subtle.Render(op.Description))
		}
		b.WriteByte('\n')
		for _, c := range op.Clauses {
			fmt.Fprintf(&b, "  %s  %s", f.styles.Subtle.Render(fmt.Sprintf("%d", c.Index)), c.Signature)
			if c.Description != "" {
				b.WriteString("  ")
				b.WriteString(f.styles.Subtle.Render(c.Description))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// WriteResult renders one invocation outcome as a single line.
func (f *Formatter) WriteResult(result ResultDTO) error {
	var line string
	if result.Error != "" {
		line = f.styles.Error.Render("error: " + result.Error)
	} else {
		line = f.styles.Result.Render(result.Display) +
			" " + f.styles.Subtle.Render(result.Type)
	}
	_, err := fmt.Fprintln(f.writer, line)
	return err
}

// WriteNotice renders an informational line, such as a catalog reload summary.
func (f *Formatter) WriteNotice(msg string) error {
	_, err := fmt.Fprintln(f.writer, f.styles.Notice.Render(msg))
	return err
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Operation lipgloss.Style
	Result    lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Subtle    lipgloss.Style
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	return Styles{
		Operation: lipgloss.NewStyle(),
		Result:    lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Notice:    lipgloss.NewStyle(),
		Subtle:    lipgloss.NewStyle(),
	}
}

// TerminalStyles colours output for an interactive terminal.
func TerminalStyles() Styles {
	return Styles{
		Operation: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}),
		Result:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#73F59F"}),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF8787"}),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8F6B00", Dark: "#FECA57"}),
		Subtle:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#696969"}),
	}
}
