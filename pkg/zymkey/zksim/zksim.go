// Package zksim is a software Zymkey that implements zymkey.Library.
//
// It stands in for libzk_app_utils in tests and in the zkctl --simulator mode.
// Keys are derived from a seed with HKDF-SHA256, so a Device restored from the
// same seed locks, unlocks and signs with the same keys. Output buffers are
// device-owned scratch memory that is wiped and replaced on the next call, as
// a reminder that callers must copy them.
//
// The simulator offers no protection for its keys and must never be used to
// protect real data.
package zksim

import (
	"crypto/rand"
	"sync"
	"time"
	"unsafe"

	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

const (
	// MaxSlots is the number of ECDSA key slots.
	MaxSlots = 4
	// SeedSize is the length of a generated seed.
	SeedSize = 32
	// DefaultI2CAddress is the factory I2C address.
	DefaultI2CAddress = 0x30
	// DefaultTapSensitivity is the factory tap sensitivity of every axis.
	DefaultTapSensitivity = 50

	model    = "ZYMKEY-SIM"
	firmware = "zksim-1.0.0"
)

// LEDMode is the simulated LED state.
type LEDMode int

const (
	LEDOff LEDMode = iota
	LEDOn
	LEDFlashing
)

// LEDState describes what the LED is doing.
type LEDState struct {
	Mode       LEDMode
	OnMs       uint32
	OffMs      uint32
	NumFlashes uint32
}

// Option configures a Device.
type Option func(*Device)

// WithSeed sets the key derivation seed. Without it New draws a random seed.
func WithSeed(seed []byte) Option {
	return func(d *Device) {
		d.seed = append([]byte(nil), seed...)
	}
}

// WithClock replaces the host clock used for the RTC.
func WithClock(now func() time.Time) Option {
	return func(d *Device) {
		d.now = now
	}
}

// WithSleep replaces the function used to wait for a second boundary on a
// precise RTC read.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Device) {
		d.sleep = sleep
	}
}

// session is the object a zymkey.Handle points at.
type session struct {
	dev *Device
}

// Device is a simulated Zymkey. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	seed  []byte
	now   func() time.Time
	sleep func(time.Duration)
	keys  *keySet

	sess      *session
	rtcOffset time.Duration
	i2cAddr   int
	tap       [3]float32
	led       LEDState
	taps      chan struct{}
	failures  map[string]int
	scratch   []byte
}

var _ zymkey.Library = (*Device)(nil)

// New creates a simulated device.
func New(opts ...Option) *Device {
	d := &Device{
		now:      time.Now,
		sleep:    time.Sleep,
		i2cAddr:  DefaultI2CAddress,
		tap:      [3]float32{DefaultTapSensitivity, DefaultTapSensitivity, DefaultTapSensitivity},
		taps:     make(chan struct{}, 1),
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	if len(d.seed) == 0 {
		d.seed = make([]byte, SeedSize)
		if _, err := rand.Read(d.seed); err != nil {
			panic("zksim: failed to generate seed: " + err.Error())
		}
	}
	d.keys = deriveKeys(d.seed)
	return d
}

// Fail makes every later call to symbol (for example "zkLockDataB2B") return
// status. A status of 0 clears the failure.
func (d *Device) Fail(symbol string, status int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status == 0 {
		delete(d.failures, symbol)
		return
	}
	d.failures[symbol] = status
}

// Tap simulates a physical tap. It is dropped when tap detection is disabled
// on every axis.
func (d *Device) Tap() {
	d.mu.Lock()
	enabled := d.tap[0] > 0 || d.tap[1] > 0 || d.tap[2] > 0
	d.mu.Unlock()

	if !enabled {
		return
	}
	select {
	case d.taps <- struct{}{}:
	default:
	}
}

// Skew moves the RTC by delta relative to the host clock.
func (d *Device) Skew(delta time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rtcOffset += delta
}

// LED returns the current LED state.
func (d *Device) LED() LEDState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.led
}

// I2CAddress returns the configured I2C address.
func (d *Device) I2CAddress() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.i2cAddr
}

// TapSensitivity returns the sensitivity of the x, y and z axes.
func (d *Device) TapSensitivity() [3]float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tap
}

// InUse reports whether a session is open.
func (d *Device) InUse() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess != nil
}

// enter validates the handle and any injected failure for symbol. The caller
// must hold d.mu.
func (d *Device) enter(ctx zymkey.Handle, symbol string) int {
	if status, ok := d.failures[symbol]; ok {
		return status
	}
	if d.sess == nil || unsafe.Pointer(d.sess) != unsafe.Pointer(ctx) {
		return zymkey.StatusInvalid
	}
	return zymkey.StatusOK
}

// output replaces the scratch buffer with b and points dst at it. The old
// scratch is wiped first.
func (d *Device) output(b []byte, dst *unsafe.Pointer, dstLen *int) {
	clear(d.scratch)
	d.scratch = b
	if dstLen != nil {
		*dstLen = len(b)
	}
	if len(b) == 0 {
		*dst = nil
		return
	}
	*dst = unsafe.Pointer(&b[0])
}

// input copies n bytes from a caller pointer.
func input(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return append([]byte(nil), unsafe.Slice((*byte)(p), n)...)
}
