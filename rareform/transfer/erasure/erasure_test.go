package erasure

import (
	"bytes"
	"io"
	"testing"
)

func scatterToBuffers(t *testing.T, c *Codec, data []byte, chunkSize int) []*bytes.Buffer {
	t.Helper()
	bufs := make([]*bytes.Buffer, c.TotalShards())
	targets := make([]io.Writer, c.TotalShards())
	for i := range bufs {
		bufs[i] = &bytes.Buffer{}
		targets[i] = bufs[i]
	}
	written, err := c.Scatter(targets, bytes.NewReader(data), chunkSize)
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if written != int64(len(data)) {
		t.Fatalf("Scatter consumed %d bytes, want %d", written, len(data))
	}
	return bufs
}

func TestScatterGatherAllShards(t *testing.T) {
	codec, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	data := make([]byte, 100*1024+17) // forces an odd tail chunk
	for i := range data {
		data[i] = byte(i * 7 % 256)
	}
	bufs := scatterToBuffers(t, codec, data, 16*1024)

	sources := make([]io.Reader, len(bufs))
	for i, b := range bufs {
		sources[i] = bytes.NewReader(b.Bytes())
	}
	var out bytes.Buffer
	n, err := codec.Gather(&out, sources)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("Gather produced %d bytes, want %d", n, len(data))
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("gathered data does not match original")
	}
}

func TestGatherSurvivesParityLosses(t *testing.T) {
	codec, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}
	bufs := scatterToBuffers(t, codec, data, 8*1024)

	// Lose two shard streams, one data and one parity.
	sources := make([]io.Reader, len(bufs))
	for i, b := range bufs {
		sources[i] = bytes.NewReader(b.Bytes())
	}
	sources[1] = nil
	sources[4] = nil

	var out bytes.Buffer
	if _, err := codec.Gather(&out, sources); err != nil {
		t.Fatalf("Gather with 2 lost shards: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("reconstruction mismatch")
	}
}

func TestGatherTooManyLost(t *testing.T) {
	codec, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	data := make([]byte, 32*1024)
	bufs := scatterToBuffers(t, codec, data, 8*1024)

	sources := make([]io.Reader, len(bufs))
	for i, b := range bufs {
		sources[i] = bytes.NewReader(b.Bytes())
	}
	sources[0] = nil
	sources[2] = nil
	sources[5] = nil

	var out bytes.Buffer
	if _, err := codec.Gather(&out, sources); err != ErrTooManyLost {
		t.Fatalf("got %v, want ErrTooManyLost", err)
	}
}

func TestStreamCountValidation(t *testing.T) {
	codec, err := NewCodec(2, 1)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if _, err := codec.Scatter([]io.Writer{&bytes.Buffer{}}, bytes.NewReader(nil), 0); err != ErrStreamCount {
		t.Fatalf("Scatter: got %v, want ErrStreamCount", err)
	}
	if _, err := codec.Gather(io.Discard, []io.Reader{nil, nil}); err != ErrStreamCount {
		t.Fatalf("Gather: got %v, want ErrStreamCount", err)
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec(0, 2); err != ErrInvalidConfig {
		t.Fatalf("zero data shards: got %v, want ErrInvalidConfig", err)
	}
	if _, err := NewCodec(3, 0); err != ErrInvalidConfig {
		t.Fatalf("zero parity shards: got %v, want ErrInvalidConfig", err)
	}
	codec, err := NewCodec(4, 2)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if codec.TotalShards() != 6 {
		t.Fatalf("TotalShards: got %d, want 6", codec.TotalShards())
	}
	if codec.Overhead() != 1.5 {
		t.Fatalf("Overhead: got %f, want 1.5", codec.Overhead())
	}
}

func TestGatherEmptyStreams(t *testing.T) {
	codec, err := NewCodec(2, 1)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	sources := []io.Reader{
		bytes.NewReader(nil),
		bytes.NewReader(nil),
		bytes.NewReader(nil),
	}
	var out bytes.Buffer
	n, err := codec.Gather(&out, sources)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if n != 0 || out.Len() != 0 {
		t.Fatalf("empty scatter produced %d bytes", n)
	}
}
