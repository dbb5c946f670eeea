package transfer

import (
	"io"
	"time"
)

// Progress is the snapshot handed to a ProgressFunc. Copied never
// decreases across snapshots and never exceeds Total.
type Progress struct {
	// Total is the number of bytes the operation was constructed to copy.
	Total int64
	// Copied is the cumulative number of bytes copied so far.
	Copied int64
	// Elapsed is the time since Execute started.
	Elapsed time.Duration
	// AverageSpeed is the lifetime average in bytes per second
	// (Copied divided by Elapsed), 0 when Elapsed is zero.
	AverageSpeed float64
	// Source and Target are the streams the operation was built with.
	Source io.Reader
	Target io.Writer
	// Final marks the terminal snapshot delivered after the loop exits.
	// Every Execute delivers exactly one final snapshot.
	Final bool
}

// ProgressFunc receives progress snapshots during a copy. It runs
// synchronously on the copying goroutine. Returning false requests
// cancellation; the operation stops after the in-flight chunk and
// Execute returns ErrCancelled. The return value of the final
// notification is ignored.
type ProgressFunc func(p Progress) bool

// averageSpeed computes the lifetime average in bytes per second,
// with a defined 0 when no time has elapsed.
func averageSpeed(copied int64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(copied) / secs
}
