// Package rareform provides progress-tracked stream copying and the
// assembly glue around it.
//
// The core primitive lives in rareform/transfer: a single-use copy
// operation with chunked reads, synchronous progress notifications and
// cooperative cancellation. This package composes it with the optional
// layers — LZ4 compression, authenticated sealing, Merkle integrity
// recording — and with the QUIC transport for copies between hosts.
//
// It intentionally stays small so applications can wire the transfer
// building blocks directly when the defaults don't fit.
package rareform
