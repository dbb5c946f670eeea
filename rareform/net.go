package rareform

import (
	"context"
	"encoding/binary"
	"errors"
	"io"

	q "github.com/quic-go/quic-go"

	"github.com/Headkillah/Rareform/rareform/transport/quic"
)

var ErrBadHeader = errors.New("rareform: bad stream header")

// Stream header: 4-byte magic plus the plaintext size, so the
// receiving side can drive its own progress-tracked copy.
const headerMagic = uint32(0x5246524d) // "RFRM"

func writeHeader(w io.Writer, size int64) error {
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[:4], headerMagic)
	binary.BigEndian.PutUint64(hdr[4:], uint64(size))
	_, err := w.Write(hdr[:])
	return err
}

func readHeader(r io.Reader) (int64, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, err
	}
	if binary.BigEndian.Uint32(hdr[:4]) != headerMagic {
		return 0, ErrBadHeader
	}
	return int64(binary.BigEndian.Uint64(hdr[4:])), nil
}

// Send dials addr, opens a stream and copies size bytes from src over
// it using the layers in o. The remote side must use Receive with
// matching key and compression settings.
func Send(ctx context.Context, addr string, src io.Reader, size int64, o Options) (Result, error) {
	conn, err := quic.Dial(ctx, addr)
	if err != nil {
		return Result{}, err
	}
	defer conn.CloseWithError(q.ApplicationErrorCode(0), "")

	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := writeHeader(st, size); err != nil {
		return Result{}, err
	}

	res, err := Copy(ctx, st, src, size, o)
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	return res, err
}

// Receive accepts one connection and one stream from ln and extracts
// the incoming copy into dst.
func Receive(ctx context.Context, ln *quic.Listener, dst io.Writer, o Options) (Result, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		return Result{}, err
	}
	defer conn.CloseWithError(q.ApplicationErrorCode(0), "")

	st, err := conn.AcceptStream(ctx)
	if err != nil {
		return Result{}, err
	}
	size, err := readHeader(st)
	if err != nil {
		return Result{}, err
	}
	return Extract(ctx, dst, st, size, o)
}
