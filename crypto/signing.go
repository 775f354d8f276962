// Package crypto converts between the raw formats the Zymkey device produces
// and the encodings the Go crypto packages expect.
//
// The device reports P-256 public keys as 64 bytes (X || Y) and signatures as
// 64 bytes (r || s). This package provides:
//   - Parsing raw public keys into *ecdsa.PublicKey
//   - PEM encoding of public keys
//   - Conversion between raw r||s and ASN.1 DER signatures
//   - Host-side verification of raw signatures against an exported public key
//
// No private-key operation happens here; signing stays on the device.
//
// # Public keys
//
//	raw, err := client.ECDSAPublicKey(zymkey.DefaultSlot)
//	if err != nil {
//		log.Fatal(err)
//	}
//	pub, err := crypto.ParsePublicKey(raw)
//
// # Signatures
//
//	der, err := crypto.RawToDER(sig)
//	if err != nil {
//		log.Fatal(err)
//	}
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
)

const (
	// ScalarSize is the byte length of a P-256 coordinate or signature half.
	ScalarSize = 32
	// RawSignatureSize is the length of an r || s signature.
	RawSignatureSize = 2 * ScalarSize
	// RawPublicKeySize is the length of an X || Y public key.
	RawPublicKeySize = 2 * ScalarSize
)

// ECDSASignature represents an ECDSA signature for ASN.1 encoding
type ECDSASignature struct {
	R, S *big.Int
}

// ParsePublicKey parses a P-256 public key in either the device format
// (64 bytes, X || Y) or uncompressed SEC 1 form (65 bytes, 0x04 || X || Y).
func ParsePublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	switch {
	case len(raw) == RawPublicKeySize+1 && raw[0] == 0x04:
		raw = raw[1:]
	case len(raw) == RawPublicKeySize:
	default:
		return nil, fmt.Errorf("invalid public key length: expected %d bytes (X||Y), got %d", RawPublicKeySize, len(raw))
	}

	curve := elliptic.P256()
	x := new(big.Int).SetBytes(raw[:ScalarSize])
	y := new(big.Int).SetBytes(raw[ScalarSize:])

	if !curve.IsOnCurve(x, y) {
		return nil, errors.New("public key is not on the P256 curve")
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// RawPublicKey returns the device format (X || Y) of a P-256 public key.
func RawPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.Curve != elliptic.P256() {
		return nil, errors.New("public key is not a P256 key")
	}
	raw := make([]byte, RawPublicKeySize)
	pub.X.FillBytes(raw[:ScalarSize])
	pub.Y.FillBytes(raw[ScalarSize:])
	return raw, nil
}

// MarshalPublicKeyPEM encodes pub as a PKIX "PUBLIC KEY" PEM block.
func MarshalPublicKeyPEM(pub *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// RawToDER converts an r || s signature to ASN.1 DER.
func RawToDER(sig []byte) ([]byte, error) {
	if len(sig) != RawSignatureSize {
		return nil, fmt.Errorf("invalid signature length: expected %d bytes (r||s), got %d", RawSignatureSize, len(sig))
	}
	r := new(big.Int).SetBytes(sig[:ScalarSize])
	s := new(big.Int).SetBytes(sig[ScalarSize:])
	return MarshalECDSASignatureDER(r, s)
}

// DERToRaw converts an ASN.1 DER signature to r || s.
func DERToRaw(der []byte) ([]byte, error) {
	var sig ECDSASignature
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DER signature: %w", err)
	}
	if len(rest) != 0 {
		return nil, errors.New("trailing data after DER signature")
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 || sig.R.BitLen() > 8*ScalarSize || sig.S.BitLen() > 8*ScalarSize {
		return nil, errors.New("signature values out of range")
	}

	raw := make([]byte, RawSignatureSize)
	sig.R.FillBytes(raw[:ScalarSize])
	sig.S.FillBytes(raw[ScalarSize:])
	return raw, nil
}

// MarshalECDSASignatureDER converts ECDSA signature components to DER format
func MarshalECDSASignatureDER(r, s *big.Int) ([]byte, error) {
	signature := ECDSASignature{R: r, S: s}
	return asn1.Marshal(signature)
}

// VerifyRawSignature checks an r || s signature over digest with pub. It lets
// a party holding only the exported public key check device signatures.
func VerifyRawSignature(pub *ecdsa.PublicKey, digest []byte, sig []byte) bool {
	if len(sig) != RawSignatureSize {
		return false
	}

	r := new(big.Int).SetBytes(sig[:ScalarSize])
	s := new(big.Int).SetBytes(sig[ScalarSize:])

	return ecdsa.Verify(pub, digest, r, s)
}
