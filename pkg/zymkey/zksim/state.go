package zksim

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// State is the persistent part of a Device: its seed and configuration.
type State struct {
	Seed           []byte     `cbor:"1,keyasint"`
	RTCOffsetSec   int64      `cbor:"2,keyasint"`
	I2CAddress     int        `cbor:"3,keyasint"`
	TapSensitivity [3]float32 `cbor:"4,keyasint"`
}

// State returns a snapshot of the device.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return State{
		Seed:           append([]byte(nil), d.seed...),
		RTCOffsetSec:   int64(d.rtcOffset / time.Second),
		I2CAddress:     d.i2cAddr,
		TapSensitivity: d.tap,
	}
}

// FromState recreates a device from a snapshot.
func FromState(s State, opts ...Option) (*Device, error) {
	if len(s.Seed) == 0 {
		return nil, fmt.Errorf("simulator state has no seed")
	}
	if !ValidI2CAddress(s.I2CAddress) {
		return nil, fmt.Errorf("simulator state has invalid I2C address 0x%02x", s.I2CAddress)
	}
	for i, pct := range s.TapSensitivity {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("simulator state has invalid tap sensitivity %v on axis %d", pct, i)
		}
	}

	d := New(append([]Option{WithSeed(s.Seed)}, opts...)...)
	d.rtcOffset = time.Duration(s.RTCOffsetSec) * time.Second
	d.i2cAddr = s.I2CAddress
	d.tap = s.TapSensitivity
	return d, nil
}

// MarshalState encodes the device state as CBOR.
func (d *Device) MarshalState() ([]byte, error) {
	data, err := cbor.Marshal(d.State())
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulator state: %w", err)
	}
	return data, nil
}

// UnmarshalState decodes CBOR produced by MarshalState into a new device.
func UnmarshalState(data []byte, opts ...Option) (*Device, error) {
	var s State
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode simulator state: %w", err)
	}
	return FromState(s, opts...)
}

// Save writes the device state to path. The file contains the seed, so it is
// created with mode 0600.
func (d *Device) Save(path string) error {
	data, err := d.MarshalState()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write simulator state: %w", err)
	}
	return nil
}

// Load reads a device saved with Save. A missing file yields an error that
// matches os.ErrNotExist.
func Load(path string, opts ...Option) (*Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulator state: %w", err)
	}
	return UnmarshalState(data, opts...)
}
