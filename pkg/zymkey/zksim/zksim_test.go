package zksim

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorageoss/zkclient/pkg/zymkey"
)

func testSeed() []byte {
	return bytes.Repeat([]byte{0x42}, SeedSize)
}

func openDevice(t *testing.T, d *Device) zymkey.Handle {
	t.Helper()
	var h zymkey.Handle
	require.Equal(t, zymkey.StatusOK, d.Open(&h))
	require.NotNil(t, h)
	return h
}

func TestOpenClose(t *testing.T) {
	d := New(WithSeed(testSeed()))
	h := openDevice(t, d)

	t.Run("busy", func(t *testing.T) {
		var other zymkey.Handle
		assert.Equal(t, zymkey.StatusBusy, d.Open(&other))
		assert.Nil(t, other)
	})

	t.Run("foreign handle", func(t *testing.T) {
		var x int
		assert.Equal(t, zymkey.StatusInvalid, d.LEDOn(zymkey.Handle(unsafe.Pointer(&x))))
	})

	require.Equal(t, zymkey.StatusOK, d.Close(h))
	assert.False(t, d.InUse())
	assert.Equal(t, zymkey.StatusInvalid, d.LEDOn(h))
	assert.Equal(t, zymkey.StatusInvalid, d.Close(h))
}

func TestFail(t *testing.T) {
	d := New()
	h := openDevice(t, d)

	d.Fail("zkLEDOn", -5)
	assert.Equal(t, -5, d.LEDOn(h))
	assert.Equal(t, zymkey.StatusOK, d.LEDOff(h))

	d.Fail("zkLEDOn", 0)
	assert.Equal(t, zymkey.StatusOK, d.LEDOn(h))
}

func TestLEDFlash(t *testing.T) {
	t.Run("sets flashing state", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		require.Equal(t, zymkey.StatusOK, d.LEDFlash(h, 100, 200, 3))
		assert.Equal(t, LEDState{Mode: LEDFlashing, OnMs: 100, OffMs: 200, NumFlashes: 3}, d.LED())
	})

	t.Run("zero duration", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		assert.Equal(t, zymkey.StatusInvalid, d.LEDFlash(h, 0, 100, 1))
		assert.Equal(t, zymkey.StatusInvalid, d.LEDFlash(h, 100, 0, 1))
		assert.Equal(t, LEDOff, d.LED().Mode)
	})

	t.Run("injected failure wins over argument checks", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		d.Fail("zkLEDFlash", -5)
		assert.Equal(t, -5, d.LEDFlash(h, 0, 0, 1))
		assert.Equal(t, -5, d.LEDFlash(h, 100, 100, 1))
	})

	t.Run("stale handle", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		require.Equal(t, zymkey.StatusOK, d.Close(h))
		assert.Equal(t, zymkey.StatusInvalid, d.LEDFlash(h, 100, 100, 1))
		assert.Equal(t, LEDOff, d.LED().Mode)
	})
}

func TestOutputScratchIsWiped(t *testing.T) {
	d := New()
	h := openDevice(t, d)

	var p unsafe.Pointer
	var n int
	require.Equal(t, zymkey.StatusOK, d.GetModelNumberString(h, &p, &n))
	first := unsafe.Slice((*byte)(p), n)
	assert.Equal(t, model, string(first))

	require.Equal(t, zymkey.StatusOK, d.GetFirmwareVersionString(h, &p, &n))
	assert.Equal(t, make([]byte, len(model)), first)
}

func TestI2CAddress(t *testing.T) {
	valid := []int{0x30, 0x37, 0x60, 0x67}
	invalid := []int{0x2f, 0x38, 0x5f, 0x68, -1}

	for _, addr := range valid {
		assert.True(t, ValidI2CAddress(addr), "0x%02x", addr)
	}
	for _, addr := range invalid {
		assert.False(t, ValidI2CAddress(addr), "0x%02x", addr)
	}

	d := New()
	h := openDevice(t, d)
	assert.Equal(t, DefaultI2CAddress, d.I2CAddress())
	assert.Equal(t, zymkey.StatusInvalid, d.SetI2CAddr(h, 0x50))
	assert.Equal(t, zymkey.StatusOK, d.SetI2CAddr(h, 0x33))
	assert.Equal(t, 0x33, d.I2CAddress())
}

func TestTap(t *testing.T) {
	t.Run("detected", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)

		go func() {
			time.Sleep(10 * time.Millisecond)
			d.Tap()
		}()
		assert.Equal(t, zymkey.StatusOK, d.WaitForTap(h, 5000))
	})

	t.Run("timeout", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		assert.Equal(t, zymkey.StatusTimedOut, d.WaitForTap(h, 5))
	})

	t.Run("dropped when disabled", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		require.Equal(t, zymkey.StatusOK, d.SetTapSensitivity(h, int(zymkey.AxisAll), 0))

		d.Tap()
		assert.Equal(t, zymkey.StatusTimedOut, d.WaitForTap(h, 5))
	})

	t.Run("sensitivity bounds", func(t *testing.T) {
		d := New()
		h := openDevice(t, d)
		assert.Equal(t, zymkey.StatusInvalid, d.SetTapSensitivity(h, int(zymkey.AxisX), 101))
		assert.Equal(t, zymkey.StatusInvalid, d.SetTapSensitivity(h, 9, 50))
		assert.Equal(t, [3]float32{DefaultTapSensitivity, DefaultTapSensitivity, DefaultTapSensitivity}, d.TapSensitivity())
	})
}

func TestKeysAreDeterministic(t *testing.T) {
	a := deriveKeys(testSeed())
	b := deriveKeys(testSeed())
	c := deriveKeys(bytes.Repeat([]byte{0x43}, SeedSize))

	assert.Equal(t, a.serial, b.serial)
	assert.NotEqual(t, a.serial, c.serial)
	for i := range MaxSlots {
		assert.True(t, a.slots[i].Equal(b.slots[i]), "slot %d", i)
		assert.False(t, a.slots[i].Equal(c.slots[i]), "slot %d", i)
	}

	sealed, err := seal(a.local, []byte("data"))
	require.NoError(t, err)
	opened, err := unseal(b.local, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), opened)

	_, err = unseal(a.shared, sealed)
	assert.Error(t, err)
	_, err = unseal(a.local, sealed[:4])
	assert.Error(t, err)
}

func TestState(t *testing.T) {
	d := New(WithSeed(testSeed()))
	h := openDevice(t, d)
	require.Equal(t, zymkey.StatusOK, d.SetI2CAddr(h, 0x62))
	require.Equal(t, zymkey.StatusOK, d.SetTapSensitivity(h, int(zymkey.AxisZ), 12.5))
	d.Skew(90 * time.Second)

	t.Run("CBOR round trip", func(t *testing.T) {
		data, err := d.MarshalState()
		require.NoError(t, err)

		restored, err := UnmarshalState(data)
		require.NoError(t, err)
		assert.Equal(t, d.State(), restored.State())
		assert.Equal(t, d.keys.serial, restored.keys.serial)
	})

	t.Run("file round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sim.cbor")
		require.NoError(t, d.Save(path))

		restored, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, d.State(), restored.State())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.cbor"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := UnmarshalState([]byte{0xff, 0x00})
		assert.Error(t, err)
	})

	invalid := []struct {
		name  string
		state State
	}{
		{"no seed", State{I2CAddress: DefaultI2CAddress}},
		{"bad address", State{Seed: testSeed(), I2CAddress: 0x10}},
		{"bad sensitivity", State{Seed: testSeed(), I2CAddress: DefaultI2CAddress, TapSensitivity: [3]float32{0, 120, 0}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromState(tt.state)
			assert.Error(t, err)
		})
	}
}
