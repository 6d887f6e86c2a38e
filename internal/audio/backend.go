package audio

import (
	"fmt"
	"strings"

	"github.com/go-audio/audio"
)

// DeviceInfo describes one audio device as reported by the backend.
type DeviceInfo struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	MaxInputChannels  int     `json:"max_input_channels"`
	MaxOutputChannels int     `json:"max_output_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
}

// Backend is the playback engine the mixer drives.
//
// Play must not block for the length of the buffer. Only one buffer plays
// at a time; Play replaces whatever is playing.
type Backend interface {
	Devices() ([]DeviceInfo, error)
	Play(dev DeviceInfo, buf *audio.Float32Buffer) error
	StopAll() error
}

// FindDevice returns the first output-capable device whose name contains
// name, ignoring case.
func FindDevice(devices []DeviceInfo, name string) (DeviceInfo, error) {
	want := strings.ToLower(name)
	for _, d := range devices {
		if d.MaxOutputChannels < 1 {
			continue
		}
		if strings.Contains(strings.ToLower(d.Name), want) {
			return d, nil
		}
	}
	return DeviceInfo{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}
