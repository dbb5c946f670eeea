package erasure

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/reedsolomon"
)

// DefaultChunkSize is the plaintext chunk size scattered per frame.
const DefaultChunkSize = 256 * 1024

var (
	ErrInvalidConfig = errors.New("erasure: invalid data/parity configuration")
	ErrTooManyLost   = errors.New("erasure: too many shards lost, cannot recover")
	ErrStreamCount   = errors.New("erasure: stream count does not match shard count")
	ErrShardMismatch = errors.New("erasure: shard streams are out of step")
)

// Codec scatters a byte stream across data+parity shard streams and
// gathers it back from the survivors.
type Codec struct {
	enc    reedsolomon.Encoder
	data   int
	parity int
}

// NewCodec creates a codec with the given shard counts. Up to parity
// shard streams may be lost while the payload stays recoverable.
func NewCodec(data, parity int) (*Codec, error) {
	if data < 1 || parity < 1 {
		return nil, ErrInvalidConfig
	}
	enc, err := reedsolomon.New(data, parity)
	if err != nil {
		return nil, err
	}
	return &Codec{enc: enc, data: data, parity: parity}, nil
}

// DataShards returns the number of data shards.
func (c *Codec) DataShards() int { return c.data }

// ParityShards returns the number of parity shards.
func (c *Codec) ParityShards() int { return c.parity }

// TotalShards returns data + parity.
func (c *Codec) TotalShards() int { return c.data + c.parity }

// Overhead returns the storage overhead ratio, e.g. 1.5 for a 4+2
// configuration.
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.data)
}

// Scatter reads src in chunks, erasure-codes each chunk and writes
// shard i of every chunk to targets[i]. len(targets) must equal
// TotalShards. Returns the number of plaintext bytes consumed.
//
// Each shard is framed with the chunk's plaintext length and the shard
// length so Gather can rebuild without out-of-band metadata.
func (c *Codec) Scatter(targets []io.Writer, src io.Reader, chunkSize int) (int64, error) {
	if len(targets) != c.TotalShards() {
		return 0, ErrStreamCount
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			shards, serr := c.enc.Split(buf[:n])
			if serr != nil {
				return written, serr
			}
			if serr := c.enc.Encode(shards); serr != nil {
				return written, serr
			}
			for i, w := range targets {
				if werr := writeShardFrame(w, n, shards[i]); werr != nil {
					return written, werr
				}
			}
			written += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// Gather reads framed shards from sources and writes the rebuilt
// plaintext to dst. len(sources) must equal TotalShards; lost streams
// are passed as nil. Fails with ErrTooManyLost when fewer than
// DataShards streams survive.
func (c *Codec) Gather(dst io.Writer, sources []io.Reader) (int64, error) {
	if len(sources) != c.TotalShards() {
		return 0, ErrStreamCount
	}
	srcs := make([]io.Reader, len(sources))
	copy(srcs, sources)

	var written int64
	for {
		shards := make([][]byte, c.TotalShards())
		plainLen := -1
		available := 0

		for i, r := range srcs {
			if r == nil {
				continue
			}
			pl, shard, err := readShardFrame(r)
			if err == io.EOF {
				// All surviving streams must end on the same
				// chunk boundary.
				if available > 0 {
					return written, ErrShardMismatch
				}
				srcs[i] = nil
				continue
			}
			if err != nil {
				return written, err
			}
			if plainLen == -1 {
				plainLen = pl
			} else if pl != plainLen {
				return written, ErrShardMismatch
			}
			shards[i] = shard
			available++
		}

		if available == 0 {
			return written, nil
		}
		if available < c.data {
			return written, ErrTooManyLost
		}
		if err := c.enc.ReconstructData(shards); err != nil {
			if err == reedsolomon.ErrTooFewShards {
				return written, ErrTooManyLost
			}
			return written, err
		}

		chunk := joinShards(shards[:c.data], plainLen)
		if _, err := dst.Write(chunk); err != nil {
			return written, err
		}
		written += int64(plainLen)
	}
}

// frame: 4 bytes plaintext chunk length, 4 bytes shard length, shard.
func writeShardFrame(w io.Writer, plainLen int, shard []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(plainLen))
	binary.BigEndian.PutUint32(hdr[4:], uint32(len(shard)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(shard)
	return err
}

func readShardFrame(r io.Reader) (plainLen int, shard []byte, err error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = ErrShardMismatch
		}
		return 0, nil, err
	}
	plainLen = int(binary.BigEndian.Uint32(hdr[:4]))
	shardLen := int(binary.BigEndian.Uint32(hdr[4:]))
	shard = make([]byte, shardLen)
	if _, err := io.ReadFull(r, shard); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrShardMismatch
		}
		return 0, nil, err
	}
	return plainLen, shard, nil
}

func joinShards(dataShards [][]byte, size int) []byte {
	out := make([]byte, 0, size)
	for _, s := range dataShards {
		if remaining := size - len(out); remaining < len(s) {
			out = append(out, s[:remaining]...)
			break
		}
		out = append(out, s...)
	}
	return out
}
