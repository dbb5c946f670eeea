package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required key length in bytes.
	KeySize = chacha20poly1305.KeySize
	// DefaultFrameSize is the plaintext bytes sealed per frame.
	DefaultFrameSize = 64 * 1024
	// maxWireFrame bounds a single frame on the wire so a corrupted
	// length prefix cannot trigger a huge allocation.
	maxWireFrame = 1 << 20
)

var (
	ErrKeySize       = errors.New("seal: key must be exactly 32 bytes")
	ErrAuthFailed    = errors.New("seal: frame authentication failed")
	ErrFrameTooLarge = errors.New("seal: frame exceeds maximum size")
	ErrTruncated     = errors.New("seal: sealed stream truncated mid-frame")
	ErrWriterClosed  = errors.New("seal: writer already closed")
)

// DeriveKey derives a KeySize seal key from an arbitrary secret using
// HKDF-SHA256. The salt may be nil; using a fresh random salt per
// stream is recommended so the same secret never yields the same key.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, []byte("rareform-seal-v1"))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Nonces are a 4-byte random stream prefix plus a 8-byte frame
// counter. The prefix travels once at the start of the sealed stream;
// the counter is implicit, so frames cannot be reordered or replayed
// without failing authentication.
func frameNonce(prefix [4]byte, seq uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	copy(nonce[:4], prefix[:])
	binary.BigEndian.PutUint64(nonce[4:], seq)
	return nonce
}

// Writer seals a plaintext stream into framed ciphertext. Close must
// be called to flush the trailing partial frame.
type Writer struct {
	w         io.Writer
	aead      cipher.AEAD
	prefix    [4]byte
	seq       uint64
	buf       []byte
	frameSize int
	started   bool
	closed    bool
}

// NewWriter creates a sealing writer with DefaultFrameSize frames.
func NewWriter(w io.Writer, key []byte) (*Writer, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	sw := &Writer{
		w:         w,
		aead:      aead,
		buf:       make([]byte, 0, DefaultFrameSize),
		frameSize: DefaultFrameSize,
	}
	if _, err := io.ReadFull(rand.Reader, sw.prefix[:]); err != nil {
		return nil, err
	}
	return sw, nil
}

// Write buffers plaintext and seals every completed frame.
func (sw *Writer) Write(p []byte) (int, error) {
	if sw.closed {
		return 0, ErrWriterClosed
	}
	n := len(p)
	for len(p) > 0 {
		take := sw.frameSize - len(sw.buf)
		if take > len(p) {
			take = len(p)
		}
		sw.buf = append(sw.buf, p[:take]...)
		p = p[take:]
		if len(sw.buf) == sw.frameSize {
			if err := sw.flushFrame(); err != nil {
				return n - len(p), err
			}
		}
	}
	return n, nil
}

// Close seals and flushes the trailing partial frame. It does not
// close the underlying writer.
func (sw *Writer) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	if len(sw.buf) == 0 {
		return nil
	}
	return sw.flushFrame()
}

func (sw *Writer) flushFrame() error {
	if !sw.started {
		if _, err := sw.w.Write(sw.prefix[:]); err != nil {
			return err
		}
		sw.started = true
	}
	sw.seq++
	ct := sw.aead.Seal(nil, frameNonce(sw.prefix, sw.seq), sw.buf, nil)
	sw.buf = sw.buf[:0]

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ct)))
	if _, err := sw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := sw.w.Write(ct)
	return err
}

// Reader unseals a stream produced by Writer back into plaintext.
type Reader struct {
	r      io.Reader
	aead   cipher.AEAD
	prefix [4]byte
	seq    uint64
	plain  []byte
	err    error
}

// NewReader creates an unsealing reader over a sealed stream.
func NewReader(r io.Reader, key []byte) (*Reader, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, aead: aead, seq: 0}, nil
}

// Read returns unsealed plaintext, pulling and verifying frames from
// the underlying reader as needed.
func (sr *Reader) Read(p []byte) (int, error) {
	for len(sr.plain) == 0 {
		if sr.err != nil {
			return 0, sr.err
		}
		sr.err = sr.nextFrame()
	}
	n := copy(p, sr.plain)
	sr.plain = sr.plain[n:]
	return n, nil
}

func (sr *Reader) nextFrame() error {
	if sr.seq == 0 {
		if _, err := io.ReadFull(sr.r, sr.prefix[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				return ErrTruncated
			}
			return err
		}
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(sr.r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		return err
	}
	frameLen := binary.BigEndian.Uint32(lenBuf[:])
	if frameLen > maxWireFrame {
		return ErrFrameTooLarge
	}

	ct := make([]byte, frameLen)
	if _, err := io.ReadFull(sr.r, ct); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		return err
	}

	sr.seq++
	plain, err := sr.aead.Open(nil, frameNonce(sr.prefix, sr.seq), ct, nil)
	if err != nil {
		return ErrAuthFailed
	}
	sr.plain = plain
	return nil
}
