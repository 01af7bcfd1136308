package utils

import (
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// DigestPrefix tags digests produced by Digest.
const DigestPrefix = "blake2b-256:"

// Digest accumulates a BLAKE2b-256 content digest. It is an io.Writer so it can sit behind an io.TeeReader.
type Digest struct {
	h hash.Hash
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	return &Digest{h: h}
}

// Write adds p to the digest.
func (d *Digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// String returns the prefixed hex digest of everything written so far.
func (d *Digest) String() string {
	return DigestPrefix + hex.EncodeToString(d.h.Sum(nil))
}

// ContentDigest returns the prefixed digest of b.
func ContentDigest(b []byte) string {
	sum := blake2b.Sum256(b)
	return DigestPrefix + hex.EncodeToString(sum[:])
}
