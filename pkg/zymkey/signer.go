package zymkey

import (
	"crypto"
	"crypto/ecdsa"
	"fmt"
	"io"

	zkcrypto "github.com/anchorageoss/zkclient/crypto"
)

// deviceSigner implements crypto.Signer with a device key slot.
type deviceSigner struct {
	client *Client
	slot   Slot
	pub    *ecdsa.PublicKey
}

// Signer returns a crypto.Signer backed by the key in slot. Sign expects a
// SHA-256 digest and returns an ASN.1 DER signature, so the result can be
// used with crypto/x509 and crypto/tls.
func (c *Client) Signer(slot Slot) (crypto.Signer, error) {
	raw, err := c.ECDSAPublicKey(slot)
	if err != nil {
		return nil, err
	}
	pub, err := zkcrypto.ParsePublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key of slot %d: %w", slot, err)
	}
	return &deviceSigner{client: c, slot: slot, pub: pub}, nil
}

// Public implements crypto.Signer.
func (s *deviceSigner) Public() crypto.PublicKey {
	return s.pub
}

// Sign implements crypto.Signer. The device supplies its own randomness, so
// rand is ignored.
func (s *deviceSigner) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 {
		return nil, invalidArg("Signer.Sign", "unsupported hash %v, only SHA-256 is supported", opts.HashFunc())
	}
	if len(digest) != DigestSize {
		return nil, invalidArg("Signer.Sign", "digest is %d bytes, want %d", len(digest), DigestSize)
	}

	var d Digest
	copy(d[:], digest)

	raw, err := s.client.SignDigest(d, s.slot)
	if err != nil {
		return nil, err
	}
	return zkcrypto.RawToDER(raw)
}
