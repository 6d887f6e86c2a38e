// Package portaudio plays mixed buffers through the host sound system via
// the PortAudio C library. It is the only package in the tree that needs
// cgo.
package portaudio

import (
	"fmt"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	pa "github.com/gordonklaus/portaudio"

	"github.com/jakelevirne/Halloween2025/internal/audio"
)

// stopMargin is added to a buffer's length before its stream is closed,
// covering output latency.
const stopMargin = 500 * time.Millisecond

var _ audio.Backend = (*Output)(nil)

// Output plays buffers through the host audio system.
type Output struct {
	mu     sync.Mutex
	stream *pa.Stream
	timer  *time.Timer
	gen    uint64
}

// Open initialises the PortAudio library. Call Close when done.
func Open() (*Output, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("initialising portaudio: %w", err)
	}
	return &Output{}, nil
}

// Close stops playback and releases the library.
func (p *Output) Close() error {
	stopErr := p.StopAll()
	if err := pa.Terminate(); err != nil {
		return fmt.Errorf("terminating portaudio: %w", err)
	}
	return stopErr
}

// Devices implements audio.Backend.
func (p *Output) Devices() ([]audio.DeviceInfo, error) {
	devs, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing portaudio devices: %w", err)
	}
	out := make([]audio.DeviceInfo, 0, len(devs))
	for _, d := range devs {
		out = append(out, audio.DeviceInfo{
			Index:             d.Index,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return out, nil
}

// Play implements audio.Backend. The stream is closed once the buffer has run
// out, unless a newer Play or StopAll got there first.
func (p *Output) Play(dev audio.DeviceInfo, buf *goaudio.Float32Buffer) error {
	target, err := lookupDevice(dev.Index)
	if err != nil {
		return err
	}

	params := pa.HighLatencyParameters(nil, target)
	params.Output.Channels = buf.Format.NumChannels
	params.SampleRate = float64(buf.Format.SampleRate)

	data := buf.Data
	pos := 0
	callback := func(out []float32) {
		n := copy(out, data[pos:])
		pos += n
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	stream, err := pa.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("opening stream on %s: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting stream on %s: %w", dev.Name, err)
	}

	p.gen++
	gen := p.gen
	p.stream = stream
	p.timer = time.AfterFunc(audio.Duration(buf)+stopMargin, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen == gen {
			p.stopLocked()
		}
	})
	return nil
}

// StopAll implements audio.Backend.
func (p *Output) StopAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *Output) stopLocked() error {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil
	p.gen++

	stopErr := stream.Stop()
	if err := stream.Close(); err != nil && stopErr == nil {
		stopErr = err
	}
	return stopErr
}

func lookupDevice(index int) (*pa.DeviceInfo, error) {
	devs, err := pa.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing portaudio devices: %w", err)
	}
	for _, d := range devs {
		if d.Index == index {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: index %d", audio.ErrDeviceNotFound, index)
}
