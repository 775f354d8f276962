//go:build cgo && zymkey

package zymkey

// The prototypes below mirror zk_app_utils.h so the package builds against the
// shared library alone.

/*
#cgo LDFLAGS: -lzk_app_utils

#include <stdbool.h>
#include <stdint.h>
#include <string.h>

typedef void* zkCTX;

int zkOpen(zkCTX* ctx);
int zkClose(zkCTX ctx);
int zkLEDOn(zkCTX ctx);
int zkLEDOff(zkCTX ctx);
int zkLEDFlash(zkCTX ctx, uint32_t on_ms, uint32_t off_ms, uint32_t num_flashes);
int zkSetI2CAddr(zkCTX ctx, int addr);
int zkSetTapSensitivity(zkCTX ctx, int axis, float pct);
int zkWaitForTap(zkCTX ctx, uint32_t timeout_ms);
int zkGetTime(zkCTX ctx, uint32_t* epoch_time_sec, bool precise_time);
int zkSetGMTTime(zkCTX ctx);
int zkGetRandBytes(zkCTX ctx, uint8_t** rdata, int rdata_sz);
int zkLockDataB2B(zkCTX ctx, uint8_t* src, int src_sz, uint8_t** dst, int* dst_sz, bool use_shared_key);
int zkUnlockDataB2B(zkCTX ctx, uint8_t* src, int src_sz, uint8_t** dst, int* dst_sz, bool use_shared_key);
int zkGenECDSASigFromDigest(zkCTX ctx, const uint8_t* digest, int slot, uint8_t** sig, int* sig_sz);
int zkVerifyECDSASigFromDigest(zkCTX ctx, const uint8_t* digest, int pubkey_slot, uint8_t* sig, int sig_sz);
int zkGetECDSAPubKey(zkCTX ctx, uint8_t** pk, int* pk_sz, int slot);
int zkGetModelNumberString(zkCTX ctx, char** model_str);
int zkGetFirmwareVersionString(zkCTX ctx, char** version_str);
int zkGetSerialNumberString(zkCTX ctx, char** serial_str);
*/
import "C"

import "unsafe"

// nativeLibrary calls libzk_app_utils through cgo. Output pointers are handed
// back untouched; the Client copies from them and never frees them.
type nativeLibrary struct{}

// NativeLibrary returns the libzk_app_utils binding.
func NativeLibrary() Library {
	return nativeLibrary{}
}

func zkctx(h Handle) C.zkCTX {
	return C.zkCTX(h)
}

func (nativeLibrary) Open(ctx *Handle) int {
	var h C.zkCTX
	ret := C.zkOpen(&h)
	*ctx = Handle(h)
	return int(ret)
}

func (nativeLibrary) Close(ctx Handle) int {
	return int(C.zkClose(zkctx(ctx)))
}

func (nativeLibrary) LEDOn(ctx Handle) int {
	return int(C.zkLEDOn(zkctx(ctx)))
}

func (nativeLibrary) LEDOff(ctx Handle) int {
	return int(C.zkLEDOff(zkctx(ctx)))
}

func (nativeLibrary) LEDFlash(ctx Handle, onMs, offMs, numFlashes uint32) int {
	return int(C.zkLEDFlash(zkctx(ctx), C.uint32_t(onMs), C.uint32_t(offMs), C.uint32_t(numFlashes)))
}

func (nativeLibrary) SetI2CAddr(ctx Handle, addr int) int {
	return int(C.zkSetI2CAddr(zkctx(ctx), C.int(addr)))
}

func (nativeLibrary) SetTapSensitivity(ctx Handle, axis int, pct float32) int {
	return int(C.zkSetTapSensitivity(zkctx(ctx), C.int(axis), C.float(pct)))
}

func (nativeLibrary) WaitForTap(ctx Handle, timeoutMs uint32) int {
	return int(C.zkWaitForTap(zkctx(ctx), C.uint32_t(timeoutMs)))
}

func (nativeLibrary) GetTime(ctx Handle, epochSec *uint32, precise bool) int {
	var t C.uint32_t
	ret := C.zkGetTime(zkctx(ctx), &t, C.bool(precise))
	*epochSec = uint32(t)
	return int(ret)
}

func (nativeLibrary) SetGMTTime(ctx Handle) int {
	return int(C.zkSetGMTTime(zkctx(ctx)))
}

func (nativeLibrary) GetRandBytes(ctx Handle, dst *unsafe.Pointer, n int) int {
	var p *C.uint8_t
	ret := C.zkGetRandBytes(zkctx(ctx), &p, C.int(n))
	*dst = unsafe.Pointer(p)
	return int(ret)
}

func (nativeLibrary) LockDataB2B(ctx Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int {
	var p *C.uint8_t
	var n C.int
	ret := C.zkLockDataB2B(zkctx(ctx), (*C.uint8_t)(src), C.int(srcLen), &p, &n, C.bool(useSharedKey))
	*dst, *dstLen = unsafe.Pointer(p), int(n)
	return int(ret)
}

func (nativeLibrary) UnlockDataB2B(ctx Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int {
	var p *C.uint8_t
	var n C.int
	ret := C.zkUnlockDataB2B(zkctx(ctx), (*C.uint8_t)(src), C.int(srcLen), &p, &n, C.bool(useSharedKey))
	*dst, *dstLen = unsafe.Pointer(p), int(n)
	return int(ret)
}

func (nativeLibrary) GenECDSASigFromDigest(ctx Handle, digest unsafe.Pointer, slot int, dst *unsafe.Pointer, dstLen *int) int {
	var p *C.uint8_t
	var n C.int
	ret := C.zkGenECDSASigFromDigest(zkctx(ctx), (*C.uint8_t)(digest), C.int(slot), &p, &n)
	*dst, *dstLen = unsafe.Pointer(p), int(n)
	return int(ret)
}

func (nativeLibrary) VerifyECDSASigFromDigest(ctx Handle, digest unsafe.Pointer, slot int, sig unsafe.Pointer, sigLen int) int {
	return int(C.zkVerifyECDSASigFromDigest(zkctx(ctx), (*C.uint8_t)(digest), C.int(slot), (*C.uint8_t)(sig), C.int(sigLen)))
}

func (nativeLibrary) GetECDSAPubKey(ctx Handle, dst *unsafe.Pointer, dstLen *int, slot int) int {
	var p *C.uint8_t
	var n C.int
	ret := C.zkGetECDSAPubKey(zkctx(ctx), &p, &n, C.int(slot))
	*dst, *dstLen = unsafe.Pointer(p), int(n)
	return int(ret)
}

func (nativeLibrary) GetModelNumberString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int {
	var s *C.char
	ret := C.zkGetModelNumberString(zkctx(ctx), &s)
	setString(s, dst, dstLen)
	return int(ret)
}

func (nativeLibrary) GetFirmwareVersionString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int {
	var s *C.char
	ret := C.zkGetFirmwareVersionString(zkctx(ctx), &s)
	setString(s, dst, dstLen)
	return int(ret)
}

func (nativeLibrary) GetSerialNumberString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int {
	var s *C.char
	ret := C.zkGetSerialNumberString(zkctx(ctx), &s)
	setString(s, dst, dstLen)
	return int(ret)
}

func setString(s *C.char, dst *unsafe.Pointer, dstLen *int) {
	*dst, *dstLen = unsafe.Pointer(s), 0
	if s != nil {
		*dstLen = int(C.strlen(s))
	}
}
