package zymkey

import (
	"runtime"
)

// Sign hashes data with SHA-256 and has the device sign the digest with the
// key in slot. The signature format is the device's (r || s for P-256).
func (c *Client) Sign(data []byte, slot Slot) ([]byte, error) {
	return c.SignDigest(SumDigest(data), slot)
}

// SignDigest signs a precomputed SHA-256 digest with the key in slot.
func (c *Client) SignDigest(d Digest, slot Slot) ([]byte, error) {
	const method = "Sign"

	if slot < 0 {
		return nil, c.finish(method, invalidArg(method, "negative key slot %d", slot))
	}
	h, err := c.session(method)
	if err != nil {
		return nil, c.finish(method, err)
	}

	digest, _ := inBuf(d[:])
	var out outBuf
	ret := c.lib.GenECDSASigFromDigest(h, digest, int(slot), &out.ptr, &out.n)
	runtime.KeepAlive(&d)

	if err := check("zkGenECDSASigFromDigest", ret); err != nil {
		return nil, c.finish(method, err)
	}
	sig, err := out.take("zkGenECDSASigFromDigest")
	return sig, c.finish(method, err)
}

// Verify hashes data with SHA-256 and has the device check sig against the
// key in slot. A signature that does not match returns false with a nil
// error; an error means the device could not perform the check.
func (c *Client) Verify(data, sig []byte, slot Slot) (bool, error) {
	return c.VerifyDigest(SumDigest(data), sig, slot)
}

// VerifyDigest is Verify for a precomputed SHA-256 digest.
func (c *Client) VerifyDigest(d Digest, sig []byte, slot Slot) (bool, error) {
	const method = "Verify"
	const op = "zkVerifyECDSASigFromDigest"

	if slot < 0 {
		return false, c.finish(method, invalidArg(method, "negative key slot %d", slot))
	}
	if err := checkLen(method, "signature", len(sig)); err != nil {
		return false, c.finish(method, err)
	}
	h, err := c.session(method)
	if err != nil {
		return false, c.finish(method, err)
	}
	if len(sig) == 0 {
		return false, c.finish(method, nil)
	}

	digest, _ := inBuf(d[:])
	sigPtr, sigLen := inBuf(sig)
	ret := c.lib.VerifyECDSASigFromDigest(h, digest, int(slot), sigPtr, sigLen)
	runtime.KeepAlive(&d)
	runtime.KeepAlive(sig)

	switch {
	case ret == 1:
		return true, c.finish(method, nil)
	case ret == 0:
		return false, c.finish(method, nil)
	case ret < 0:
		return false, c.finish(method, check(op, ret))
	default:
		return false, c.finish(method, &Error{Kind: KindOperationFailed, Op: op, Code: ret, Msg: "unexpected verify status"})
	}
}

// ECDSAPublicKey returns the public key of slot as reported by the device
// (64 bytes, X || Y, for P-256).
func (c *Client) ECDSAPublicKey(slot Slot) ([]byte, error) {
	const method = "ECDSAPublicKey"

	if slot < 0 {
		return nil, c.finish(method, invalidArg(method, "negative key slot %d", slot))
	}
	h, err := c.session(method)
	if err != nil {
		return nil, c.finish(method, err)
	}

	var out outBuf
	if err := check("zkGetECDSAPubKey", c.lib.GetECDSAPubKey(h, &out.ptr, &out.n, int(slot))); err != nil {
		return nil, c.finish(method, err)
	}
	pub, err := out.take("zkGetECDSAPubKey")
	return pub, c.finish(method, err)
}
