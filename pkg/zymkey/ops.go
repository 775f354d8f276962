package zymkey

import (
	"math"
	"runtime"
	"time"
	"unsafe"
)

// LEDOn turns the device LED on.
func (c *Client) LEDOn() error {
	h, err := c.session("LEDOn")
	if err == nil {
		err = check("zkLEDOn", c.lib.LEDOn(h))
	}
	return c.finish("LEDOn", err)
}

// LEDOff turns the device LED off.
func (c *Client) LEDOff() error {
	h, err := c.session("LEDOff")
	if err == nil {
		err = check("zkLEDOff", c.lib.LEDOff(h))
	}
	return c.finish("LEDOff", err)
}

// LEDFlash flashes the LED with the given on and off times, count times.
// A count of 0 flashes until the next LED command. Durations are truncated to
// milliseconds; if exactly one is zero it takes the value of the other.
func (c *Client) LEDFlash(on, off time.Duration, count uint32) error {
	const method = "LEDFlash"

	if on < 0 || off < 0 {
		return c.finish(method, invalidArg(method, "negative duration (on %v, off %v)", on, off))
	}
	onMs, offMs := on.Milliseconds(), off.Milliseconds()
	if onMs == 0 && offMs == 0 {
		return c.finish(method, invalidArg(method, "on and off durations are both zero"))
	}
	if onMs == 0 {
		onMs = offMs
	} else if offMs == 0 {
		offMs = onMs
	}
	if onMs > math.MaxUint32 || offMs > math.MaxUint32 {
		return c.finish(method, invalidArg(method, "duration exceeds %d ms", uint32(math.MaxUint32)))
	}

	h, err := c.session(method)
	if err == nil {
		err = check("zkLEDFlash", c.lib.LEDFlash(h, uint32(onMs), uint32(offMs), count))
	}
	return c.finish(method, err)
}

// SetI2CAddress changes the I2C address of I2C models. Valid addresses are
// 0x30-0x37 and 0x60-0x67; the device rejects anything else.
func (c *Client) SetI2CAddress(addr int) error {
	h, err := c.session("SetI2CAddress")
	if err == nil {
		err = check("zkSetI2CAddr", c.lib.SetI2CAddr(h, addr))
	}
	return c.finish("SetI2CAddress", err)
}

// SetTapSensitivity sets the tap detection sensitivity of axis in percent.
// 0 disables tap detection and 100 is the most sensitive.
func (c *Client) SetTapSensitivity(axis Axis, pct float32) error {
	const method = "SetTapSensitivity"

	if !axis.valid() {
		return c.finish(method, invalidArg(method, "unsupported axis %v", axis))
	}
	if math.IsNaN(float64(pct)) || pct < 0 || pct > 100 {
		return c.finish(method, invalidArg(method, "sensitivity %v outside 0-100", pct))
	}

	h, err := c.session(method)
	if err == nil {
		err = check("zkSetTapSensitivity", c.lib.SetTapSensitivity(h, int(axis), pct))
	}
	return c.finish(method, err)
}

// WaitForTap blocks until the device detects a tap or timeout elapses. On
// timeout the error satisfies IsTimeout.
func (c *Client) WaitForTap(timeout time.Duration) error {
	const method = "WaitForTap"

	ms := timeout.Milliseconds()
	if ms < 0 || ms > math.MaxUint32 {
		return c.finish(method, invalidArg(method, "timeout %v out of range", timeout))
	}

	h, err := c.session(method)
	if err == nil {
		err = check("zkWaitForTap", c.lib.WaitForTap(h, uint32(ms)))
	}
	return c.finish(method, err)
}

// RTCTime reads the device real-time clock. With precise set it waits for the
// next second boundary, which may take up to a second.
func (c *Client) RTCTime(precise bool) (time.Time, error) {
	h, err := c.session("RTCTime")
	if err != nil {
		return time.Time{}, c.finish("RTCTime", err)
	}

	var epoch uint32
	if err := check("zkGetTime", c.lib.GetTime(h, &epoch, precise)); err != nil {
		return time.Time{}, c.finish("RTCTime", err)
	}
	return time.Unix(int64(epoch), 0).UTC(), c.finish("RTCTime", nil)
}

// SetRTCTime sets the device real-time clock to the host's current GMT time.
func (c *Client) SetRTCTime() error {
	h, err := c.session("SetRTCTime")
	if err == nil {
		err = check("zkSetGMTTime", c.lib.SetGMTTime(h))
	}
	return c.finish("SetRTCTime", err)
}

// RandomBytes returns n bytes from the device's true random number generator.
func (c *Client) RandomBytes(n int) ([]byte, error) {
	const method = "RandomBytes"

	if n < 0 {
		return nil, c.finish(method, invalidArg(method, "negative byte count %d", n))
	}
	if err := checkLen(method, "byte count", n); err != nil {
		return nil, c.finish(method, err)
	}
	h, err := c.session(method)
	if err != nil {
		return nil, c.finish(method, err)
	}
	if n == 0 {
		return []byte{}, c.finish(method, nil)
	}

	var out outBuf
	if err := check("zkGetRandBytes", c.lib.GetRandBytes(h, &out.ptr, n)); err != nil {
		return nil, c.finish(method, err)
	}
	b, err := out.takeN("zkGetRandBytes", n)
	return b, c.finish(method, err)
}

// Lock encrypts and authenticates data with the key selected by domain.
// The result is larger than data by the device's IV and tag overhead.
func (c *Client) Lock(data []byte, domain KeyDomain) ([]byte, error) {
	return c.b2b("Lock", "zkLockDataB2B", true, data, domain)
}

// Unlock reverses Lock. Tampered data, or data locked under the other domain,
// fails with ErrOperationFailed.
func (c *Client) Unlock(data []byte, domain KeyDomain) ([]byte, error) {
	return c.b2b("Unlock", "zkUnlockDataB2B", false, data, domain)
}

func (c *Client) b2b(method, op string, lock bool, data []byte, domain KeyDomain) ([]byte, error) {
	if !domain.valid() {
		return nil, c.finish(method, invalidArg(method, "unsupported key domain %v", domain))
	}
	if err := checkLen(method, "input", len(data)); err != nil {
		return nil, c.finish(method, err)
	}
	h, err := c.session(method)
	if err != nil {
		return nil, c.finish(method, err)
	}

	src, srcLen := inBuf(data)
	shared := domain == KeyDomainShared

	var out outBuf
	var ret int
	if lock {
		ret = c.lib.LockDataB2B(h, src, srcLen, &out.ptr, &out.n, shared)
	} else {
		ret = c.lib.UnlockDataB2B(h, src, srcLen, &out.ptr, &out.n, shared)
	}
	runtime.KeepAlive(data)

	if err := check(op, ret); err != nil {
		return nil, c.finish(method, err)
	}
	b, err := out.take(op)
	return b, c.finish(method, err)
}

// Info reads the device model, firmware version and serial number.
func (c *Client) Info() (*Info, error) {
	h, err := c.session("Info")
	if err != nil {
		return nil, c.finish("Info", err)
	}

	info := &Info{}
	if info.Model, err = c.readString(h, "zkGetModelNumberString", c.lib.GetModelNumberString); err != nil {
		return nil, c.finish("Info", err)
	}
	if info.FirmwareVersion, err = c.readString(h, "zkGetFirmwareVersionString", c.lib.GetFirmwareVersionString); err != nil {
		return nil, c.finish("Info", err)
	}
	if info.SerialNumber, err = c.readString(h, "zkGetSerialNumberString", c.lib.GetSerialNumberString); err != nil {
		return nil, c.finish("Info", err)
	}
	return info, c.finish("Info", nil)
}

func (c *Client) readString(h Handle, op string, call func(Handle, *unsafe.Pointer, *int) int) (string, error) {
	var out outBuf
	if err := check(op, call(h, &out.ptr, &out.n)); err != nil {
		return "", err
	}
	return out.takeString(op)
}
