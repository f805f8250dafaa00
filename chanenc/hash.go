// Package chanenc implements the fixed, bit-exact cryptographic
// primitives the adjudicator signs and hashes over: a SHA-512 digest
// type and strict Ed25519 keys/signatures. None of the byte layouts in
// this package may be replaced by a generic self-describing wire
// format — the signed payload is a fixed concatenation so that
// independently-written clients agree on it byte for byte.
package chanenc

import "crypto/sha512"

// HashSize is the length in bytes of a Hash.
const HashSize = sha512.Size

// Hash is a 64-byte SHA-512 digest. Channel ids and funding memos are
// both derived from the leading bytes of a Hash.
type Hash [HashSize]byte

// Sum512 returns the SHA-512 digest of data.
func Sum512(data []byte) Hash {
	return Hash(sha512.Sum512(data))
}

// Bytes returns the digest as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}
