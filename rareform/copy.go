package rareform

import (
	"context"
	"io"
	"time"

	"github.com/Headkillah/Rareform/rareform/seal"
	"github.com/Headkillah/Rareform/rareform/transfer"
)

// Options configures an assembled copy. The zero value is a plain
// buffered copy with default chunk size and notification cadence.
type Options struct {
	// BufferSize is the chunk size; 0 selects transfer.DefaultBufferSize.
	BufferSize int
	// UpdateInterval is the byte count between progress notifications;
	// 0 selects transfer.DefaultUpdateInterval.
	UpdateInterval int64
	// DynamicInterval derives the cadence from the transfer size.
	DynamicInterval bool
	// Pool optionally supplies reusable chunk buffers.
	Pool *transfer.BufferPool
	// Progress receives snapshots during the copy.
	Progress transfer.ProgressFunc
	// Compression compresses bytes in flight when not CompressionNone.
	Compression transfer.CompressionLevel
	// Key, when non-nil, seals the bytes with ChaCha20-Poly1305. Must
	// be seal.KeySize long; see seal.DeriveKey.
	Key []byte
	// Integrity records a Merkle root over the plaintext.
	Integrity bool
}

// Result summarizes a finished copy.
type Result struct {
	// Copied is the number of plaintext bytes moved.
	Copied int64
	// Elapsed is the wall time the copy took.
	Elapsed time.Duration
	// AverageSpeed is the lifetime average in bytes per second.
	AverageSpeed float64
	// Root is the Merkle root over the plaintext chunks when
	// Options.Integrity was set and at least one byte was copied.
	Root []byte
}

func (o Options) bufferSize() int {
	if o.BufferSize > 0 {
		return o.BufferSize
	}
	return transfer.DefaultBufferSize
}

func (o Options) transferConfig() transfer.Config {
	return transfer.Config{
		BufferSize:      o.BufferSize,
		UpdateInterval:  o.UpdateInterval,
		DynamicInterval: o.DynamicInterval,
		Pool:            o.Pool,
		Progress:        o.Progress,
	}
}

// Copy moves size bytes from src to dst through the layers selected in
// o: plaintext is hashed for integrity, then compressed, then sealed,
// in that order. Progress counts plaintext bytes.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, size int64, o Options) (Result, error) {
	w := dst
	var sealer *seal.Writer
	if o.Key != nil {
		sw, err := seal.NewWriter(w, o.Key)
		if err != nil {
			return Result{}, err
		}
		sealer = sw
		w = sw
	}

	var compressor io.WriteCloser
	if o.Compression != transfer.CompressionNone {
		zw, err := transfer.NewCompressor(w, o.Compression)
		if err != nil {
			return Result{}, err
		}
		compressor = zw
		w = zw
	}

	r := src
	var rec *transfer.Recorder
	if o.Integrity {
		rec = transfer.NewRecorder(o.bufferSize())
		r = io.TeeReader(src, rec)
	}

	op, err := transfer.NewOperation(w, r, size, o.transferConfig())
	if err != nil {
		return Result{}, err
	}
	copied, err := op.Execute(ctx)

	// Flush the layers innermost-first so sealed frames carry the
	// compressor's trailing output. On a failed copy the stream is
	// already unusable; flushing is best effort.
	if compressor != nil {
		if cerr := compressor.Close(); err == nil {
			err = cerr
		}
	}
	if sealer != nil {
		if serr := sealer.Close(); err == nil {
			err = serr
		}
	}

	res := Result{
		Copied:       copied,
		Elapsed:      op.Elapsed(),
		AverageSpeed: op.AverageSpeed(),
	}
	if rec != nil && err == nil && copied > 0 {
		root, rerr := rec.Root()
		if rerr != nil {
			return res, rerr
		}
		res.Root = root
	}
	return res, err
}

// Extract reverses Copy: it reads a stream produced with the same
// Options (key, compression) and writes size plaintext bytes to dst.
// With Options.Integrity set, the result carries the Merkle root of
// what was actually extracted, for comparison against the sender's.
func Extract(ctx context.Context, dst io.Writer, src io.Reader, size int64, o Options) (Result, error) {
	r := src
	if o.Key != nil {
		sr, err := seal.NewReader(r, o.Key)
		if err != nil {
			return Result{}, err
		}
		r = sr
	}
	if o.Compression != transfer.CompressionNone {
		r = transfer.NewDecompressor(r)
	}

	w := dst
	var rec *transfer.Recorder
	if o.Integrity {
		rec = transfer.NewRecorder(o.bufferSize())
		w = io.MultiWriter(dst, rec)
	}

	op, err := transfer.NewOperation(w, r, size, o.transferConfig())
	if err != nil {
		return Result{}, err
	}
	copied, err := op.Execute(ctx)

	res := Result{
		Copied:       copied,
		Elapsed:      op.Elapsed(),
		AverageSpeed: op.AverageSpeed(),
	}
	if rec != nil && err == nil && copied > 0 {
		root, rerr := rec.Root()
		if rerr != nil {
			return res, rerr
		}
		res.Root = root
	}
	return res, err
}
