package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"go.uber.org/multierr"
)

// DefaultTargetPeak is the fraction of full scale a normalized clip
// reaches.
const DefaultTargetPeak = 0.9

// ClipSpec places one clip file on one 1-based output channel.
type ClipSpec struct {
	Path    string
	Channel int
}

// MixRequest is the set of clips that start together on one device.
type MixRequest struct {
	Device string
	Clips  []ClipSpec
}

// Logger is the logging interface used by the mixer.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Options configures a Mixer.
type Options struct {
	// Normalize scales each clip so its peak reaches TargetPeak.
	Normalize bool

	// TargetPeak defaults to DefaultTargetPeak when zero.
	TargetPeak float64

	// Loader decodes clip files. Defaults to LoadClip.
	Loader func(path string) (*Clip, error)

	Logger Logger
}

// Mixer builds multi-channel buffers and hands them to the backend.
//
// Thread Safety: all methods are safe for concurrent use. Stopping the
// old buffer and starting the new one happen under one lock, so two props
// starting sounds at once cannot interleave.
type Mixer struct {
	backend Backend
	opts    Options
	logger  Logger

	playMu sync.Mutex

	cacheMu sync.Mutex
	cache   map[string]*Clip
}

// NewMixer creates a mixer over the given backend.
func NewMixer(backend Backend, opts Options) *Mixer {
	if opts.TargetPeak <= 0 {
		opts.TargetPeak = DefaultTargetPeak
	}
	if opts.Loader == nil {
		opts.Loader = LoadClip
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Mixer{
		backend: backend,
		opts:    opts,
		logger:  logger,
		cache:   make(map[string]*Clip),
	}
}

// Devices lists the devices the backend can see.
func (m *Mixer) Devices() ([]DeviceInfo, error) {
	return m.backend.Devices()
}

// Mix resolves the device and renders the request into one interleaved
// buffer with a column per device output channel. Nothing is played.
func (m *Mixer) Mix(req MixRequest) (*audio.Float32Buffer, DeviceInfo, error) {
	if len(req.Clips) == 0 {
		return nil, DeviceInfo{}, ErrEmptyRequest
	}

	devices, err := m.backend.Devices()
	if err != nil {
		return nil, DeviceInfo{}, fmt.Errorf("listing devices: %w", err)
	}
	dev, err := FindDevice(devices, req.Device)
	if err != nil {
		return nil, DeviceInfo{}, err
	}

	channels := dev.MaxOutputChannels
	var rangeErr error
	for _, c := range req.Clips {
		if c.Channel < 1 || c.Channel > channels {
			rangeErr = multierr.Append(rangeErr,
				fmt.Errorf("%s: channel %d not in [1, %d]", c.Path, c.Channel, channels))
		}
	}
	if rangeErr != nil {
		return nil, dev, fmt.Errorf("%w on %s: %w", ErrChannelOutOfRange, dev.Name, rangeErr)
	}

	clips := make([]*Clip, len(req.Clips))
	var loadErr error
	for i, c := range req.Clips {
		clip, err := m.load(c.Path)
		if err != nil {
			loadErr = multierr.Append(loadErr, err)
			continue
		}
		clips[i] = clip
	}
	if loadErr != nil {
		return nil, dev, loadErr
	}

	rate := 0
	for _, c := range clips {
		rate = max(rate, c.SampleRate)
	}

	tracks := make([][]float64, len(clips))
	frames := 0
	for i, c := range clips {
		tracks[i] = resample(c.Samples, c.SampleRate, rate)
		if m.opts.Normalize {
			// resample may return the cached slice itself.
			tracks[i] = append([]float64(nil), tracks[i]...)
			normalize(tracks[i], rate, m.opts.TargetPeak)
		}
		frames = max(frames, len(tracks[i]))
	}

	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:   make([]float32, frames*channels),
	}
	for i, track := range tracks {
		col := req.Clips[i].Channel - 1
		for f, s := range track {
			buf.Data[f*channels+col] = float32(s)
		}
	}
	return buf, dev, nil
}

// Play mixes the request, stops current playback and starts the new
// buffer. It returns as soon as playback has started.
func (m *Mixer) Play(req MixRequest) (time.Duration, error) {
	buf, dev, err := m.Mix(req)
	if err != nil {
		return 0, err
	}

	m.playMu.Lock()
	defer m.playMu.Unlock()

	if err := m.backend.StopAll(); err != nil {
		m.logger.Warn("stopping previous playback failed", "error", err)
	}
	if err := m.backend.Play(dev, buf); err != nil {
		return 0, fmt.Errorf("starting playback on %s: %w", dev.Name, err)
	}

	d := Duration(buf)
	m.logger.Info("playing mix",
		"device", dev.Name,
		"clips", len(req.Clips),
		"sample_rate", buf.Format.SampleRate,
		"duration", d,
	)
	return d, nil
}

// Stop silences the device.
func (m *Mixer) Stop() error {
	m.playMu.Lock()
	defer m.playMu.Unlock()
	return m.backend.StopAll()
}

// Duration returns the play time of an interleaved buffer.
func Duration(buf *audio.Float32Buffer) time.Duration {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate == 0 || buf.Format.NumChannels == 0 {
		return 0
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	return time.Duration(frames) * time.Second / time.Duration(buf.Format.SampleRate)
}

func (m *Mixer) load(path string) (*Clip, error) {
	m.cacheMu.Lock()
	clip, ok := m.cache[path]
	m.cacheMu.Unlock()
	if ok {
		return clip, nil
	}

	clip, err := m.opts.Loader(path)
	if err != nil {
		return nil, err
	}

	m.cacheMu.Lock()
	m.cache[path] = clip
	m.cacheMu.Unlock()
	return clip, nil
}
