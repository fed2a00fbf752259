package tui

import (
	"fmt"
	"io"

	"squarify/internal/batch"
)

// Print drains events as plain text lines until the channel is closed.
// A write error stops output but not draining, so the producer never blocks.
func Print(w io.Writer, events <-chan batch.Event) error {
	var firstErr error
	for ev := range events {
		if firstErr != nil {
			continue
		}
		var err error
		switch ev.Kind {
		case batch.EventStatus:
			if ev.IsError {
				_, err = fmt.Fprintf(w, "ERROR: %s\n", ev.Message)
			} else {
				_, err = fmt.Fprintln(w, ev.Message)
			}
		case batch.EventProgress:
			_, err = fmt.Fprintf(w, "  [%3.0f%%]\n", ev.Fraction*100)
		case batch.EventDone:
			_, err = fmt.Fprintln(w, "Conversion finished.")
		}
		firstErr = err
	}
	return firstErr
}
