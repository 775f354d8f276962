package zksim

import (
	"crypto/cipher"
	"crypto/rand"
	"time"
	"unsafe"

	zkcrypto "github.com/anchorageoss/zkclient/crypto"
	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

// Open implements zymkey.Library. The device is exclusive: a second Open
// before Close fails with StatusBusy.
func (d *Device) Open(ctx *zymkey.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status, ok := d.failures["zkOpen"]; ok {
		return status
	}
	if d.sess != nil {
		return zymkey.StatusBusy
	}
	d.sess = &session{dev: d}
	*ctx = zymkey.Handle(unsafe.Pointer(d.sess))
	return zymkey.StatusOK
}

// Close implements zymkey.Library.
func (d *Device) Close(ctx zymkey.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkClose"); status < 0 {
		return status
	}
	d.sess = nil
	clear(d.scratch)
	d.scratch = nil
	return zymkey.StatusOK
}

// LEDOn implements zymkey.Library.
func (d *Device) LEDOn(ctx zymkey.Handle) int {
	return d.setLED(ctx, "zkLEDOn", LEDState{Mode: LEDOn})
}

// LEDOff implements zymkey.Library.
func (d *Device) LEDOff(ctx zymkey.Handle) int {
	return d.setLED(ctx, "zkLEDOff", LEDState{Mode: LEDOff})
}

// LEDFlash implements zymkey.Library.
func (d *Device) LEDFlash(ctx zymkey.Handle, onMs, offMs, numFlashes uint32) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkLEDFlash"); status < 0 {
		return status
	}
	if onMs == 0 || offMs == 0 {
		return zymkey.StatusInvalid
	}
	d.led = LEDState{Mode: LEDFlashing, OnMs: onMs, OffMs: offMs, NumFlashes: numFlashes}
	return zymkey.StatusOK
}

func (d *Device) setLED(ctx zymkey.Handle, symbol string, state LEDState) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, symbol); status < 0 {
		return status
	}
	d.led = state
	return zymkey.StatusOK
}

// SetI2CAddr implements zymkey.Library.
func (d *Device) SetI2CAddr(ctx zymkey.Handle, addr int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkSetI2CAddr"); status < 0 {
		return status
	}
	if !ValidI2CAddress(addr) {
		return zymkey.StatusInvalid
	}
	d.i2cAddr = addr
	return zymkey.StatusOK
}

// ValidI2CAddress reports whether addr is in 0x30-0x37 or 0x60-0x67.
func ValidI2CAddress(addr int) bool {
	return (addr >= 0x30 && addr <= 0x37) || (addr >= 0x60 && addr <= 0x67)
}

// SetTapSensitivity implements zymkey.Library.
func (d *Device) SetTapSensitivity(ctx zymkey.Handle, axis int, pct float32) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkSetTapSensitivity"); status < 0 {
		return status
	}
	if pct < 0 || pct > 100 {
		return zymkey.StatusInvalid
	}
	switch zymkey.Axis(axis) {
	case zymkey.AxisX, zymkey.AxisY, zymkey.AxisZ:
		d.tap[axis] = pct
	case zymkey.AxisAll:
		d.tap = [3]float32{pct, pct, pct}
	default:
		return zymkey.StatusInvalid
	}
	return zymkey.StatusOK
}

// WaitForTap implements zymkey.Library.
func (d *Device) WaitForTap(ctx zymkey.Handle, timeoutMs uint32) int {
	d.mu.Lock()
	status := d.enter(ctx, "zkWaitForTap")
	d.mu.Unlock()
	if status < 0 {
		return status
	}

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-d.taps:
		return zymkey.StatusOK
	case <-timer.C:
		return zymkey.StatusTimedOut
	}
}

// GetTime implements zymkey.Library. A precise read waits for the next second
// boundary and returns it.
func (d *Device) GetTime(ctx zymkey.Handle, epochSec *uint32, precise bool) int {
	d.mu.Lock()
	status := d.enter(ctx, "zkGetTime")
	now := d.now().Add(d.rtcOffset)
	sleep := d.sleep
	d.mu.Unlock()
	if status < 0 {
		return status
	}

	if precise {
		next := now.Truncate(time.Second).Add(time.Second)
		sleep(next.Sub(now))
		now = next
	}
	*epochSec = uint32(now.Unix())
	return zymkey.StatusOK
}

// SetGMTTime implements zymkey.Library.
func (d *Device) SetGMTTime(ctx zymkey.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkSetGMTTime"); status < 0 {
		return status
	}
	d.rtcOffset = 0
	return zymkey.StatusOK
}

// GetRandBytes implements zymkey.Library.
func (d *Device) GetRandBytes(ctx zymkey.Handle, dst *unsafe.Pointer, n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkGetRandBytes"); status < 0 {
		return status
	}
	if n < 0 {
		return zymkey.StatusInvalid
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return zymkey.StatusInvalid
	}
	d.output(b, dst, nil)
	return zymkey.StatusOK
}

// LockDataB2B implements zymkey.Library.
func (d *Device) LockDataB2B(ctx zymkey.Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkLockDataB2B"); status < 0 {
		return status
	}
	out, err := seal(d.aead(useSharedKey), input(src, srcLen))
	if err != nil {
		return zymkey.StatusInvalid
	}
	d.output(out, dst, dstLen)
	return zymkey.StatusOK
}

// UnlockDataB2B implements zymkey.Library.
func (d *Device) UnlockDataB2B(ctx zymkey.Handle, src unsafe.Pointer, srcLen int, dst *unsafe.Pointer, dstLen *int, useSharedKey bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkUnlockDataB2B"); status < 0 {
		return status
	}
	out, err := unseal(d.aead(useSharedKey), input(src, srcLen))
	if err != nil {
		return zymkey.StatusInvalid
	}
	d.output(out, dst, dstLen)
	return zymkey.StatusOK
}

func (d *Device) aead(shared bool) cipher.AEAD {
	if shared {
		return d.keys.shared
	}
	return d.keys.local
}

// GenECDSASigFromDigest implements zymkey.Library.
func (d *Device) GenECDSASigFromDigest(ctx zymkey.Handle, digest unsafe.Pointer, slot int, dst *unsafe.Pointer, dstLen *int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkGenECDSASigFromDigest"); status < 0 {
		return status
	}
	if slot < 0 || slot >= MaxSlots || digest == nil {
		return zymkey.StatusInvalid
	}
	sig, err := sign(d.keys.slots[slot], input(digest, zymkey.DigestSize))
	if err != nil {
		return zymkey.StatusInvalid
	}
	d.output(sig, dst, dstLen)
	return zymkey.StatusOK
}

// VerifyECDSASigFromDigest implements zymkey.Library. It returns 1 for a
// matching signature and 0 otherwise.
func (d *Device) VerifyECDSASigFromDigest(ctx zymkey.Handle, digest unsafe.Pointer, slot int, sig unsafe.Pointer, sigLen int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkVerifyECDSASigFromDigest"); status < 0 {
		return status
	}
	if slot < 0 || slot >= MaxSlots || digest == nil {
		return zymkey.StatusInvalid
	}
	pub := &d.keys.slots[slot].PublicKey
	if zkcrypto.VerifyRawSignature(pub, input(digest, zymkey.DigestSize), input(sig, sigLen)) {
		return 1
	}
	return 0
}

// GetECDSAPubKey implements zymkey.Library.
func (d *Device) GetECDSAPubKey(ctx zymkey.Handle, dst *unsafe.Pointer, dstLen *int, slot int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, "zkGetECDSAPubKey"); status < 0 {
		return status
	}
	if slot < 0 || slot >= MaxSlots {
		return zymkey.StatusInvalid
	}
	raw, err := zkcrypto.RawPublicKey(&d.keys.slots[slot].PublicKey)
	if err != nil {
		return zymkey.StatusInvalid
	}
	d.output(raw, dst, dstLen)
	return zymkey.StatusOK
}

// GetModelNumberString implements zymkey.Library.
func (d *Device) GetModelNumberString(ctx zymkey.Handle, dst *unsafe.Pointer, dstLen *int) int {
	return d.outputString(ctx, "zkGetModelNumberString", model, dst, dstLen)
}

// GetFirmwareVersionString implements zymkey.Library.
func (d *Device) GetFirmwareVersionString(ctx zymkey.Handle, dst *unsafe.Pointer, dstLen *int) int {
	return d.outputString(ctx, "zkGetFirmwareVersionString", firmware, dst, dstLen)
}

// GetSerialNumberString implements zymkey.Library.
func (d *Device) GetSerialNumberString(ctx zymkey.Handle, dst *unsafe.Pointer, dstLen *int) int {
	return d.outputString(ctx, "zkGetSerialNumberString", d.keys.serial, dst, dstLen)
}

func (d *Device) outputString(ctx zymkey.Handle, symbol, s string, dst *unsafe.Pointer, dstLen *int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status := d.enter(ctx, symbol); status < 0 {
		return status
	}
	d.output([]byte(s), dst, dstLen)
	return zymkey.StatusOK
}
