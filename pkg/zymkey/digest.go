package zymkey

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestSize is the size of a SHA-256 digest.
const DigestSize = sha256.Size

// Digest is the SHA-256 value the device signs and verifies.
type Digest [DigestSize]byte

// SumDigest hashes data on the host. The device only ever sees the digest.
func SumDigest(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
