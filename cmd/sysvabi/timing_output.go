package main

import (
	"fmt"
	"io"

	"sysvabi/internal/observ"
)

// printTimings writes the phase table for --timings. Timing output is
// best effort.
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	_, _ = fmt.Fprint(out, timer.Summary())
}
