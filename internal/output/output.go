// Package output renders CLI results, with ANSI styling on terminals
// and plain text everywhere else.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer renders formatted CLI output.
type Writer struct {
	out io.Writer
	tty bool
}

// New creates a Writer. Styling is enabled only when out is a terminal.
func New(out io.Writer) *Writer {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, tty: tty}
}

// TTY reports whether styled output is active.
func (w *Writer) TTY() bool {
	return w.tty
}

// Printf writes a plain formatted line.
// Write errors on console output are intentionally ignored.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Successf writes a success line.
func (w *Writer) Successf(format string, args ...any) {
	w.Printf("%s %s", w.style("32", "ok"), fmt.Sprintf(format, args...))
}

// Warnf writes a warning line.
func (w *Writer) Warnf(format string, args ...any) {
	w.Printf("%s %s", w.style("33", "warn"), fmt.Sprintf(format, args...))
}

// Errorf writes an error line.
func (w *Writer) Errorf(format string, args ...any) {
	w.Printf("%s %s", w.style("31", "error"), fmt.Sprintf(format, args...))
}

// Hit renders one search result: rank, score, location, then an
// indented snippet.
func (w *Writer) Hit(rank int, score float64, title, location, snippet string) {
	w.Printf("%2d. %s  %s", rank, w.style("1", title), w.dim(fmt.Sprintf("(%.4f) %s", score, location)))
	for _, line := range strings.Split(strings.TrimRight(snippet, "\n"), "\n") {
		w.Printf("      %s", line)
	}
}

// Field renders one aligned name/value pair.
func (w *Writer) Field(name string, value any) {
	w.Printf("  %-16s %v", name, value)
}

// JSON writes v indented.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) style(code, s string) string {
	if !w.tty {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (w *Writer) dim(s string) string {
	return w.style("2", s)
}
