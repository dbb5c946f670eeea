// Package seal provides authenticated encryption for copies that land
// on untrusted targets.
//
// A seal.Writer splits the plaintext into frames and seals each with
// ChaCha20-Poly1305 under a counter nonce; a seal.Reader unseals the
// frames back into a plaintext stream. Any bit flip, truncation at a
// frame boundary excepted, or frame reordering surfaces as
// ErrAuthFailed. Keys are 32 bytes; DeriveKey turns an arbitrary
// secret into one via HKDF-SHA256.
package seal
