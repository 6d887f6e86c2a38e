package prop

import (
	"strconv"
	"strings"
	"time"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

// Role says which way a device talks on the bus.
type Role string

const (
	// RoleSensor devices publish readings.
	RoleSensor Role = config.RoleSensor

	// RoleActuator devices accept commands.
	RoleActuator Role = config.RoleActuator
)

// Device is one addressable board role. The same hardware ID may appear
// once as a sensor and once as an actuator.
type Device struct {
	ID   string
	Name string
	Role Role
}

// DevicesFromConfig converts the declared device list.
func DevicesFromConfig(cfg []config.DeviceConfig) []Device {
	devices := make([]Device, 0, len(cfg))
	for _, d := range cfg {
		devices = append(devices, Device{ID: d.ID, Name: d.Name, Role: Role(d.Role)})
	}
	return devices
}

// Reading is one raw payload received from a sensor board.
type Reading struct {
	DeviceID   string
	Raw        string
	Seq        uint64
	ReceivedAt time.Time
}

// Value interprets the payload as a decimal integer. Boards send ASCII
// digits, optionally padded with whitespace; anything else reports false.
func (r Reading) Value() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.Raw))
	if err != nil {
		return 0, false
	}
	return v, true
}
