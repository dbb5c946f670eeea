package transfer

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultBufferSize is the chunk size used when the caller does not
// supply one (64 KiB).
const DefaultBufferSize = 64 * 1024

var (
	ErrNilSource        = errors.New("transfer: nil source stream")
	ErrNilTarget        = errors.New("transfer: nil target stream")
	ErrBufferSize       = errors.New("transfer: buffer size must be at least 1")
	ErrUpdateInterval   = errors.New("transfer: update interval must be at least 1")
	ErrIntervalConflict = errors.New("transfer: explicit update interval conflicts with dynamic interval")
	ErrNegativeLength   = errors.New("transfer: negative source length")
	ErrCancelled        = errors.New("transfer: copy cancelled by progress callback")
	ErrAlreadyExecuted  = errors.New("transfer: operation already executed")
)

// Config configures a copy operation. The zero value selects defaults
// for everything; negative values are rejected at construction.
type Config struct {
	// BufferSize is the chunk size per read/write cycle.
	// 0 selects DefaultBufferSize.
	BufferSize int
	// UpdateInterval is the number of copied bytes between progress
	// notifications. 0 selects DefaultUpdateInterval.
	UpdateInterval int64
	// DynamicInterval derives the update interval from the source
	// length via DynamicUpdateInterval instead of UpdateInterval.
	// Setting both is a construction error.
	DynamicInterval bool
	// Pool optionally supplies reusable chunk buffers. It is used when
	// its buffers are at least BufferSize long.
	Pool *BufferPool
	// Progress receives snapshots during the copy. May be nil.
	Progress ProgressFunc
}

// Operation copies a known number of bytes from a source stream to a
// target stream in fixed-size chunks, tracking cumulative progress.
// One Operation performs exactly one copy; the streams are consumed.
type Operation struct {
	src      io.Reader
	dst      io.Writer
	total    int64
	bufSize  int
	interval int64
	pool     *BufferPool
	progress ProgressFunc

	executed  bool
	copied    int64
	startTime time.Time
	endTime   time.Time
	elapsed   time.Duration
}

// NewOperation validates the arguments and builds an operation that
// will copy total bytes from src to dst. No I/O happens until Execute.
func NewOperation(dst io.Writer, src io.Reader, total int64, cfg Config) (*Operation, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if dst == nil {
		return nil, ErrNilTarget
	}
	if total < 0 {
		return nil, ErrNegativeLength
	}
	if cfg.BufferSize < 0 {
		return nil, ErrBufferSize
	}
	if cfg.UpdateInterval < 0 {
		return nil, ErrUpdateInterval
	}
	if cfg.DynamicInterval && cfg.UpdateInterval != 0 {
		return nil, ErrIntervalConflict
	}

	bufSize := cfg.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	interval := cfg.UpdateInterval
	switch {
	case cfg.DynamicInterval:
		interval = DynamicUpdateInterval(total)
	case interval == 0:
		interval = DefaultUpdateInterval
	}

	return &Operation{
		src:      src,
		dst:      dst,
		total:    total,
		bufSize:  bufSize,
		interval: interval,
		pool:     cfg.Pool,
		progress: cfg.Progress,
	}, nil
}

// Execute runs the copy until the declared length is reached, the
// source is exhausted, or the copy is cancelled. It returns the number
// of bytes copied.
//
// Read and write errors propagate unmodified; the operation's counters
// keep their at-failure values and no terminal snapshot is delivered.
// On every other exit, including cancellation and the zero-byte source,
// the progress callback receives exactly one final snapshot.
func (op *Operation) Execute(ctx context.Context) (int64, error) {
	if op.executed {
		return op.copied, ErrAlreadyExecuted
	}
	op.executed = true
	if ctx == nil {
		ctx = context.Background()
	}

	buf, release := op.buffer()
	defer release()

	op.startTime = time.Now()
	var sinceNotify int64
	var ctxErr error
	cancelled := false

	for !cancelled && ctxErr == nil {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		remaining := op.total - op.copied
		if remaining == 0 {
			break
		}
		chunk := buf
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := op.src.Read(chunk)
		if n > 0 {
			nw, werr := op.dst.Write(chunk[:n])
			if werr == nil && nw < n {
				werr = io.ErrShortWrite
			}
			op.copied += int64(nw)
			if werr != nil {
				return op.copied, werr
			}
			sinceNotify += int64(n)
			if sinceNotify >= op.interval {
				sinceNotify = 0
				if !op.notify(false) {
					cancelled = true
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return op.copied, err
		}
	}

	op.endTime = time.Now()
	op.elapsed = op.endTime.Sub(op.startTime)
	op.notify(true)

	switch {
	case ctxErr != nil:
		return op.copied, ctxErr
	case cancelled:
		return op.copied, ErrCancelled
	}
	return op.copied, nil
}

// notify refreshes the elapsed time (for intermediate snapshots) and
// invokes the callback. It reports whether the copy should continue;
// the final snapshot's return value is ignored.
func (op *Operation) notify(final bool) bool {
	if !final {
		op.elapsed = time.Since(op.startTime)
	}
	if op.progress == nil {
		return true
	}
	cont := op.progress(Progress{
		Total:        op.total,
		Copied:       op.copied,
		Elapsed:      op.elapsed,
		AverageSpeed: averageSpeed(op.copied, op.elapsed),
		Source:       op.src,
		Target:       op.dst,
		Final:        final,
	})
	return cont || final
}

func (op *Operation) buffer() ([]byte, func()) {
	if op.pool != nil && op.pool.BufferSize() >= op.bufSize {
		b := op.pool.Get()
		return (*b)[:op.bufSize], func() { op.pool.Put(b) }
	}
	return make([]byte, op.bufSize), func() {}
}

// Total returns the number of bytes the operation was built to copy.
func (op *Operation) Total() int64 { return op.total }

// Copied returns the cumulative number of bytes copied so far.
func (op *Operation) Copied() int64 { return op.copied }

// BufferSize returns the chunk size in use.
func (op *Operation) BufferSize() int { return op.bufSize }

// UpdateInterval returns the resolved notification interval in bytes.
func (op *Operation) UpdateInterval() int64 { return op.interval }

// StartTime returns when Execute entered its loop (zero before Execute).
func (op *Operation) StartTime() time.Time { return op.startTime }

// EndTime returns when the loop exited (zero before completion and
// after a propagated I/O error).
func (op *Operation) EndTime() time.Time { return op.endTime }

// Elapsed returns the duration of the copy as of the last refresh.
func (op *Operation) Elapsed() time.Duration { return op.elapsed }

// AverageSpeed returns the lifetime average in bytes per second as of
// the last refresh, 0 when no time has elapsed.
func (op *Operation) AverageSpeed() float64 {
	return averageSpeed(op.copied, op.elapsed)
}
