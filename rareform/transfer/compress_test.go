package transfer

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestCompressingCopyRoundtrip(t *testing.T) {
	data := bytes.Repeat([]byte("rareform compresses in flight "), 4096)

	for _, level := range []CompressionLevel{CompressionFast, CompressionDefault, CompressionBest} {
		var wire bytes.Buffer
		zw, err := NewCompressor(&wire, level)
		if err != nil {
			t.Fatalf("level %d: NewCompressor: %v", level, err)
		}

		op, err := NewOperation(zw, bytes.NewReader(data), int64(len(data)), Config{})
		if err != nil {
			t.Fatalf("level %d: NewOperation: %v", level, err)
		}
		if _, err := op.Execute(context.Background()); err != nil {
			t.Fatalf("level %d: Execute: %v", level, err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("level %d: Close: %v", level, err)
		}

		if wire.Len() >= len(data) {
			t.Logf("level %d: compression not effective (%d -> %d)", level, len(data), wire.Len())
		}

		out, err := io.ReadAll(NewDecompressor(&wire))
		if err != nil {
			t.Fatalf("level %d: decompress: %v", level, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("level %d: roundtrip mismatch", level)
		}
	}
}

func TestNewCompressorRejectsNone(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewCompressor(&buf, CompressionNone); err != ErrCompressionLevel {
		t.Fatalf("got %v, want ErrCompressionLevel", err)
	}
	if _, err := NewCompressor(&buf, CompressionLevel(99)); err != ErrCompressionLevel {
		t.Fatalf("unknown level: got %v, want ErrCompressionLevel", err)
	}
}
