// Package transfer provides the buffered stream-copy primitive and its
// supporting pieces.
//
// Key features:
//   - Chunked copying with a fixed, configurable buffer size
//   - Synchronous progress notifications with lifetime average speed
//   - Cooperative cancellation at chunk boundaries (callback or context)
//   - LZ4 compression wrappers for compressing copies in flight
//   - BLAKE2b chunk hashing and Merkle trees for integrity verification
//   - Reusable chunk buffers for hosts running many copies
//
// An Operation performs exactly one copy; construct a new one per
// transfer. Reads and writes are blocking and happen on the caller's
// goroutine, so a slow progress callback stalls the copy.
package transfer
