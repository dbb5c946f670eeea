package transfer

import (
	"errors"
	"io"

	"github.com/pierrec/lz4/v4"
)

var ErrCompressionLevel = errors.New("transfer: invalid compression level")

// CompressionLevel controls the speed/ratio tradeoff of a compressing
// copy. The zero value disables compression.
type CompressionLevel int

const (
	CompressionNone    CompressionLevel = iota // no compression
	CompressionFast                            // fastest, lower ratio
	CompressionDefault                         // balanced
	CompressionBest                            // best ratio, slower
)

// NewCompressor wraps the target of a copy so bytes are LZ4-compressed
// in flight. The returned writer must be closed to flush the final
// frame before the underlying target is used.
//
// LZ4 is chosen for its speed: a compressing copy should stay I/O
// bound, not CPU bound.
func NewCompressor(w io.Writer, level CompressionLevel) (*lz4.Writer, error) {
	var lvl lz4.CompressionLevel
	switch level {
	case CompressionFast:
		lvl = lz4.Fast
	case CompressionDefault:
		lvl = lz4.Level4
	case CompressionBest:
		lvl = lz4.Level9
	default:
		return nil, ErrCompressionLevel
	}
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lvl)); err != nil {
		return nil, err
	}
	return zw, nil
}

// NewDecompressor wraps the source of a copy so LZ4-compressed bytes
// are decompressed in flight.
func NewDecompressor(r io.Reader) *lz4.Reader {
	return lz4.NewReader(r)
}
