package core

import (
	"fmt"
	"io"
	"os"
)

// Printer writes user-facing status lines. Informational output goes to
// stderr so the script's own stdout stays clean for piping. Quiet-ness
// is carried here explicitly rather than in package-level state.
type Printer struct {
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// NewPrinter creates a Printer bound to the process streams.
func NewPrinter(quiet bool) *Printer {
	return &Printer{Quiet: quiet, Out: os.Stdout, Err: os.Stderr}
}

// Infof prints a non-critical status line. Suppressed in quiet mode.
func (p *Printer) Infof(format string, args ...interface{}) {
	if p.Quiet {
		return
	}
	fmt.Fprintf(p.Err, format+"\n", args...)
}

// Warnf prints a warning. Never suppressed.
func (p *Printer) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(p.Err, "Warning: "+format+"\n", args...)
}

// Errorf prints an error line. Never suppressed.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.Err, "Error: "+format+"\n", args...)
}
