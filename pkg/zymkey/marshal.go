package zymkey

import (
	"math"
	"unsafe"
)

// maxBufLen is the largest length the native ABI can carry in a C int.
const maxBufLen = math.MaxInt32

// checkLen rejects lengths that would be narrowed crossing into the library.
func checkLen(method, what string, n int) error {
	if n > maxBufLen {
		return invalidArg(method, "%s length %d exceeds %d", what, n, maxBufLen)
	}
	return nil
}

// inBuf returns the pointer/length pair for b. The caller must keep b alive
// with runtime.KeepAlive until the native call has returned.
func inBuf(b []byte) (unsafe.Pointer, int) {
	if len(b) == 0 {
		return nil, 0
	}
	return unsafe.Pointer(&b[0]), len(b)
}

// outBuf holds the (pointer, length) output slots a native call fills in.
// The pointed-to memory is owned by the native library.
type outBuf struct {
	ptr unsafe.Pointer
	n   int
}

// take copies the foreign bytes into a Go-owned slice and drops the foreign
// pointer. The returned slice is never nil.
func (o *outBuf) take(op string) ([]byte, error) {
	ptr, n := o.ptr, o.n
	o.ptr, o.n = nil, 0

	switch {
	case n < 0:
		return nil, &Error{Kind: KindOperationFailed, Op: op, Msg: "negative output length"}
	case n == 0:
		return []byte{}, nil
	case ptr == nil:
		return nil, &Error{Kind: KindOperationFailed, Op: op, Msg: "nil output buffer"}
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(ptr), n))
	return out, nil
}

// takeN is take for outputs whose length is fixed by the request rather than
// reported by the library.
func (o *outBuf) takeN(op string, n int) ([]byte, error) {
	if n > 0 && o.ptr == nil {
		o.n = 0
		return nil, &Error{Kind: KindOperationFailed, Op: op, Msg: "nil output buffer"}
	}
	o.n = n
	return o.take(op)
}

// takeString is take for NUL-free text outputs.
func (o *outBuf) takeString(op string) (string, error) {
	b, err := o.take(op)
	if err != nil {
		return "", err
	}
	// The device pads fixed-width fields with NUL.
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return string(b), nil
}
