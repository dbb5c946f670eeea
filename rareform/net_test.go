package rareform

import (
	"bytes"
	"io"
	"testing"
)

func TestStreamHeaderRoundtrip(t *testing.T) {
	for _, size := range []int64{0, 1, 262144, 1 << 40} {
		var buf bytes.Buffer
		if err := writeHeader(&buf, size); err != nil {
			t.Fatalf("writeHeader(%d): %v", size, err)
		}
		got, err := readHeader(&buf)
		if err != nil {
			t.Fatalf("readHeader(%d): %v", size, err)
		}
		if got != size {
			t.Fatalf("header roundtrip: got %d, want %d", got, size)
		}
	}
}

func TestStreamHeaderBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHeader(&buf, 42); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	raw := buf.Bytes()
	raw[0] ^= 0xff

	if _, err := readHeader(bytes.NewReader(raw)); err != ErrBadHeader {
		t.Fatalf("got %v, want ErrBadHeader", err)
	}
}

func TestStreamHeaderTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := writeHeader(&buf, 42); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	if _, err := readHeader(bytes.NewReader(buf.Bytes()[:6])); err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}
