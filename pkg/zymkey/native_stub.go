//go:build !cgo || !zymkey

package zymkey

import "unsafe"

// stubLibrary is used when the package is built without cgo or without the
// zymkey build tag. Every call reports that no device is present.
type stubLibrary struct{}

// NativeLibrary returns the libzk_app_utils binding. This build has none
// (rebuild with CGO_ENABLED=1 and -tags zymkey), so Open fails with
// ErrDeviceUnavailable.
func NativeLibrary() Library {
	return stubLibrary{}
}

func (stubLibrary) Open(*Handle) int {
	return StatusNoDevice
}

func (stubLibrary) Close(Handle) int {
	return StatusNoDevice
}

func (stubLibrary) LEDOn(Handle) int {
	return StatusNoDevice
}

func (stubLibrary) LEDOff(Handle) int {
	return StatusNoDevice
}

func (stubLibrary) LEDFlash(Handle, uint32, uint32, uint32) int {
	return StatusNoDevice
}

func (stubLibrary) SetI2CAddr(Handle, int) int {
	return StatusNoDevice
}

func (stubLibrary) SetTapSensitivity(Handle, int, float32) int {
	return StatusNoDevice
}

func (stubLibrary) WaitForTap(Handle, uint32) int {
	return StatusNoDevice
}

func (stubLibrary) GetTime(Handle, *uint32, bool) int {
	return StatusNoDevice
}

func (stubLibrary) SetGMTTime(Handle) int {
	return StatusNoDevice
}

func (stubLibrary) GetRandBytes(Handle, *unsafe.Pointer, int) int {
	return StatusNoDevice
}

func (stubLibrary) LockDataB2B(Handle, unsafe.Pointer, int, *unsafe.Pointer, *int, bool) int {
	return StatusNoDevice
}

func (stubLibrary) UnlockDataB2B(Handle, unsafe.Pointer, int, *unsafe.Pointer, *int, bool) int {
	return StatusNoDevice
}

func (stubLibrary) GenECDSASigFromDigest(Handle, unsafe.Pointer, int, *unsafe.Pointer, *int) int {
	return StatusNoDevice
}

func (stubLibrary) VerifyECDSASigFromDigest(Handle, unsafe.Pointer, int, unsafe.Pointer, int) int {
	return StatusNoDevice
}

func (stubLibrary) GetECDSAPubKey(Handle, *unsafe.Pointer, *int, int) int {
	return StatusNoDevice
}

func (stubLibrary) GetModelNumberString(Handle, *unsafe.Pointer, *int) int {
	return StatusNoDevice
}

func (stubLibrary) GetFirmwareVersionString(Handle, *unsafe.Pointer, *int) int {
	return StatusNoDevice
}

func (stubLibrary) GetSerialNumberString(Handle, *unsafe.Pointer, *int) int {
	return StatusNoDevice
}
