package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Fingerprint is a hex-encoded SHA-256 digest over canonical content.
// Page-scope fingerprints live only for the duration of one merge pass;
// folder-scope fingerprints are persisted as the merge-cache key.
type Fingerprint string

// FingerprintBytes digests a byte slice
func FingerprintBytes(b []byte) Fingerprint {
	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Digest accumulates content into a Fingerprint
type Digest struct {
	h hash.Hash
}

func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// WriteString adds a string plus a separator byte, so that field boundaries
// cannot alias ("ab"+"c" vs "a"+"bc")
func (d *Digest) WriteString(s string) {
	io.WriteString(d.h, s)
	d.h.Write([]byte{0})
}

func (d *Digest) Sum() Fingerprint {
	return Fingerprint(hex.EncodeToString(d.h.Sum(nil)))
}
