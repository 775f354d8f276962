package zymkey

import (
	"fmt"
	"strings"
)

// KeyDomain selects the symmetric key used by Lock and Unlock.
type KeyDomain int

const (
	// KeyDomainLocal is the key unique to this device ("zymkey").
	KeyDomainLocal KeyDomain = iota
	// KeyDomainShared is the key shared with the Zymkey cloud ("cloud").
	KeyDomainShared
)

// ParseKeyDomain parses "zymkey" or "cloud". The empty string means local.
func ParseKeyDomain(s string) (KeyDomain, error) {
	switch strings.ToLower(s) {
	case "", "zymkey", "local":
		return KeyDomainLocal, nil
	case "cloud", "shared":
		return KeyDomainShared, nil
	default:
		return 0, invalidArg("ParseKeyDomain", "unsupported key domain %q", s)
	}
}

// String returns the domain name used by the Zymkey tooling.
func (d KeyDomain) String() string {
	switch d {
	case KeyDomainLocal:
		return "zymkey"
	case KeyDomainShared:
		return "cloud"
	default:
		return fmt.Sprintf("KeyDomain(%d)", int(d))
	}
}

func (d KeyDomain) valid() bool {
	return d == KeyDomainLocal || d == KeyDomainShared
}

// Axis selects which accelerometer axis a tap setting applies to. The values
// match the native ZK_ACCEL_AXIS_* enumeration.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisAll
)

// ParseAxis parses x, y, z or all, case-insensitively.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	case "all":
		return AxisAll, nil
	default:
		return 0, invalidArg("ParseAxis", "unsupported axis %q", s)
	}
}

// String returns the lower-case axis token.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisAll:
		return "all"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

func (a Axis) valid() bool {
	return a >= AxisX && a <= AxisAll
}

// Slot indexes an ECDSA key held by the device.
type Slot int

// DefaultSlot is the device identity key.
const DefaultSlot Slot = 0

// Info contains identification strings reported by the device
type Info struct {
	Model           string // Model number, e.g. ZYMKEY4i
	FirmwareVersion string // Firmware version string
	SerialNumber    string // Unique device serial number
}
