package zymkey

import "unsafe"

// Handle is the opaque session context returned by the native zkOpen call.
type Handle unsafe.Pointer

// Status codes shared by the native library and its stand-ins. Negative
// values are failures; the magnitudes follow Linux errno.
const (
	StatusOK       = 0
	StatusBusy     = -16
	StatusNoDevice = -19
	StatusInvalid  = -22
	StatusTimedOut = -110
)

// Library is the native function table of libzk_app_utils.
//
// Every method returns the native int status. Variable-length inputs are
// passed as (pointer, length) and must stay reachable until the call returns.
// Variable-length outputs are written to (dst, dstLen) slots; the memory behind
// *dst belongs to the library and is only read by the caller, never freed.
type Library interface {
	Open(ctx *Handle) int
	Close(ctx Handle) int

	LEDOn(ctx Handle) int
	LEDOff(ctx Handle) int
	LEDFlash(ctx Handle, onMs, offMs, numFlashes uint32) int

	SetI2CAddr(ctx Handle, addr int) int
	SetTapSensitivity(ctx Handle, axis int, pct float32) int
	WaitForTap(ctx Handle, timeoutMs uint32) int

	GetTime(ctx Handle, epochSec *uint32, precise bool) int
	SetGMTTime(ctx Handle) int

	GetRandBytes(ctx Handle, dst *unsafe.Pointer, n int) int

	LockDataB2B(ctx Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int
	UnlockDataB2B(ctx Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int

	GenECDSASigFromDigest(ctx Handle, digest unsafe.Pointer, slot int, dst *unsafe.Pointer, dstLen *int) int
	VerifyECDSASigFromDigest(ctx Handle, digest unsafe.Pointer, slot int, sig unsafe.Pointer, sigLen int) int
	GetECDSAPubKey(ctx Handle, dst *unsafe.Pointer, dstLen *int, slot int) int

	GetModelNumberString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int
	GetFirmwareVersionString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int
	GetSerialNumberString(ctx Handle, dst *unsafe.Pointer, dstLen *int) int
}
