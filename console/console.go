// Package console prints verbosity-gated status messages.
//
// Level 0 messages are always shown; higher levels need as many -v flags.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes messages at or below its verbosity to Out.
type Printer struct {
	Out       io.Writer
	Verbosity int

	info, warn, fail *color.Color
}

// New returns a Printer. Colors are used only when out is a terminal
// stream and NO_COLOR is not set.
func New(out io.Writer, verbosity int) *Printer {
	p := &Printer{
		Out:       out,
		Verbosity: verbosity,
		info:      color.New(color.FgBlue),
		warn:      color.New(color.FgYellow, color.Bold),
		fail:      color.New(color.FgRed),
	}
	if !(out == os.Stdout || out == os.Stderr) || color.NoColor {
		p.info.DisableColor()
		p.warn.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

// Discard returns a Printer that drops everything.
func Discard() *Printer {
	return New(io.Discard, -1)
}

// Enabled reports whether messages at level are shown.
func (p *Printer) Enabled(level int) bool {
	return p.Verbosity >= level
}

// Printf writes a plain message at level.
func (p *Printer) Printf(level int, format string, args ...any) {
	if !p.Enabled(level) {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

// Infof writes an [INFO] line at level.
func (p *Printer) Infof(level int, format string, args ...any) {
	p.line(level, p.info, "[INFO]", format, args...)
}

// Warnf writes a [WARN] line at level.
func (p *Printer) Warnf(level int, format string, args ...any) {
	p.line(level, p.warn, "[WARN]", format, args...)
}

// Errorf writes an [ERROR] line at level 0.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(0, p.fail, "[ERROR]", format, args...)
}

func (p *Printer) line(level int, c *color.Color, prefix, format string, args ...any) {
	if !p.Enabled(level) {
		return
	}
	fmt.Fprintf(p.Out, "%s %s\n", c.Sprint(prefix), fmt.Sprintf(format, args...))
}
