package observability

import (
	"fmt"

	"github.com/fatih/color"
)

// Success prints a green status line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Warning prints a yellow status line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Warning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.out, "⚠ "+format+"\n", args...)
}

// Error prints a red status line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Error(format string, args ...any) {
	color.New(color.FgRed).Fprintf(p.out, "✗ "+format+"\n", args...)
}

// Info prints a cyan status line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
}

// Plain prints an uncolored line
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
