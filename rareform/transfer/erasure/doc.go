// Package erasure provides Reed-Solomon redundancy for fan-out copies.
//
// A scatter copy writes every chunk of a source as data+parity shards
// across multiple targets; the original is later rebuilt from any
// subset of targets that still covers the data shard count. With 4 data
// and 2 parity targets, any 2 targets can be lost without losing the
// payload and without keeping full replicas.
//
// Shard math uses the klauspost/reedsolomon library.
package erasure
