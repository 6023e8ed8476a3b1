package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/catapillie/marin/internal/diagnostics"
)

// printReports renders a sorted diagnostic batch as a human-facing
// transcript, one report per paragraph: severity-colored header, primary
// and secondary labels, then any notes. Color is only emitted when w is a
// terminal, mirroring the teacher's own go-isatty-gated terminal detection.
func printReports(w io.Writer, reports []*diagnostics.Report) {
	colorEnabled := false
	if f, ok := w.(*os.File); ok {
		colorEnabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	dimColor := color.New(color.Faint)
	if !colorEnabled {
		errColor.DisableColor()
		warnColor.DisableColor()
		dimColor.DisableColor()
	}

	for _, r := range reports {
		sevColor := warnColor
		if r.Severity == diagnostics.Error {
			sevColor = errColor
		}
		sevColor.Fprintf(w, "%s", string(r.Severity))
		fmt.Fprintf(w, "[%s] %s\n", r.Code, r.Message)

		for _, l := range r.Labels {
			arrow := "-->"
			if l.Kind == diagnostics.Secondary {
				arrow = "..."
			}
			dimColor.Fprintf(w, "  %s %s", arrow, l.Span)
			if l.Message != "" {
				fmt.Fprintf(w, ": %s", l.Message)
			}
			fmt.Fprintln(w)
		}
		for _, n := range r.Notes {
			dimColor.Fprintf(w, "  note: %s\n", n)
		}
	}
}
