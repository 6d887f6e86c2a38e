package audio

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
)

// fakeBackend records playback without touching hardware.
type fakeBackend struct {
	mu      sync.Mutex
	devices []DeviceInfo
	playing *audio.Float32Buffer
	plays   int
	stops   int
	playErr error
	listErr error
	lastDev DeviceInfo
}

func (f *fakeBackend) Devices() ([]DeviceInfo, error) {
	return f.devices, f.listErr
}

func (f *fakeBackend) Play(dev DeviceInfo, buf *audio.Float32Buffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.plays++
	f.playing = buf
	f.lastDev = dev
	return nil
}

func (f *fakeBackend) StopAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.playing = nil
	return nil
}

func testDevices() []DeviceInfo {
	return []DeviceInfo{
		{Index: 0, Name: "MacBook Pro Microphone", MaxInputChannels: 1},
		{Index: 1, Name: "MacBook Pro Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{Index: 2, Name: "Behringer UMC1820 Multichannel", MaxInputChannels: 10, MaxOutputChannels: 5, DefaultSampleRate: 44100},
	}
}

// clipLoader serves clips from memory.
func clipLoader(clips map[string]*Clip) func(string) (*Clip, error) {
	return func(path string) (*Clip, error) {
		c, ok := clips[path]
		if !ok {
			return nil, errors.New("no such clip: " + path)
		}
		return c, nil
	}
}

func ramp(n int, rate int) *Clip {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i+1) / float64(n) * 0.5
	}
	return &Clip{Samples: s, SampleRate: rate}
}

func TestFindDevice(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr error
	}{
		{"substring", "UMC1820", 2, nil},
		{"case-insensitive", "umc1820", 2, nil},
		{"first output match", "macbook", 1, nil},
		{"input-only device skipped", "Microphone", 0, ErrDeviceNotFound},
		{"no match", "Scarlett", 0, ErrDeviceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindDevice(testDevices(), tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindDevice() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindDevice() error = %v", err)
			}
			if got.Index != tt.want {
				t.Errorf("FindDevice() index = %d, want %d", got.Index, tt.want)
			}
		})
	}
}

func TestMix_ChannelsAreIndependent(t *testing.T) {
	a := ramp(100, 44100)
	b := ramp(60, 44100)
	m := NewMixer(&fakeBackend{devices: testDevices()}, Options{
		Loader: clipLoader(map[string]*Clip{"a.wav": a, "b.wav": b}),
	})

	buf, dev, err := m.Mix(MixRequest{
		Device: "UMC1820",
		Clips:  []ClipSpec{{Path: "a.wav", Channel: 2}, {Path: "b.wav", Channel: 5}},
	})
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	if dev.Index != 2 {
		t.Errorf("device index = %d, want 2", dev.Index)
	}
	if buf.Format.NumChannels != 5 {
		t.Fatalf("channels = %d, want 5", buf.Format.NumChannels)
	}

	frames := len(buf.Data) / 5
	if frames != 100 {
		t.Fatalf("frames = %d, want 100", frames)
	}
	for f := 0; f < frames; f++ {
		row := buf.Data[f*5 : f*5+5]
		if row[0] != 0 || row[2] != 0 || row[3] != 0 {
			t.Fatalf("frame %d: silent channels carry signal: %v", f, row)
		}
		if row[1] != float32(a.Samples[f]) {
			t.Fatalf("frame %d: channel 2 = %v, want %v", f, row[1], a.Samples[f])
		}
		wantB := float32(0)
		if f < len(b.Samples) {
			wantB = float32(b.Samples[f])
		}
		if row[4] != wantB {
			t.Fatalf("frame %d: channel 5 = %v, want %v", f, row[4], wantB)
		}
	}
}

func TestMix_ResamplesToHighestRate(t *testing.T) {
	m := NewMixer(&fakeBackend{devices: testDevices()}, Options{
		Loader: clipLoader(map[string]*Clip{
			"hi.wav": ramp(441, 44100),
			"lo.wav": ramp(2205, 22050),
		}),
	})

	buf, _, err := m.Mix(MixRequest{
		Device: "umc",
		Clips:  []ClipSpec{{Path: "hi.wav", Channel: 1}, {Path: "lo.wav", Channel: 3}},
	})
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}
	if buf.Format.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", buf.Format.SampleRate)
	}
	frames := len(buf.Data) / buf.Format.NumChannels
	if frames < 4409 || frames > 4411 {
		t.Errorf("frames = %d, want 4410±1", frames)
	}
}

func TestMix_ChannelOutOfRange(t *testing.T) {
	clips := map[string]*Clip{"a.wav": ramp(10, 44100), "b.wav": ramp(10, 44100)}

	for _, ch := range []int{0, 6} {
		backend := &fakeBackend{devices: testDevices()}
		previous := &audio.Float32Buffer{Format: &audio.Format{NumChannels: 5, SampleRate: 44100}}
		backend.playing = previous

		m := NewMixer(backend, Options{Loader: clipLoader(clips)})
		_, err := m.Play(MixRequest{
			Device: "UMC1820",
			Clips:  []ClipSpec{{Path: "a.wav", Channel: 1}, {Path: "b.wav", Channel: ch}},
		})
		if !errors.Is(err, ErrChannelOutOfRange) {
			t.Fatalf("channel %d: error = %v, want ErrChannelOutOfRange", ch, err)
		}
		if backend.stops != 0 || backend.plays != 0 || backend.playing != previous {
			t.Errorf("channel %d: previous playback disturbed (stops=%d plays=%d)", ch, backend.stops, backend.plays)
		}
	}
}

func TestPlay_DeviceNotFound(t *testing.T) {
	backend := &fakeBackend{devices: testDevices()}
	m := NewMixer(backend, Options{Loader: clipLoader(map[string]*Clip{"a.wav": ramp(10, 44100)})})

	_, err := m.Play(MixRequest{Device: "Scarlett", Clips: []ClipSpec{{Path: "a.wav", Channel: 1}}})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("Play() error = %v, want ErrDeviceNotFound", err)
	}
	if backend.stops != 0 {
		t.Error("StopAll called for a failed request")
	}
}

func TestPlay_StopsThenStarts(t *testing.T) {
	backend := &fakeBackend{devices: testDevices()}
	m := NewMixer(backend, Options{Loader: clipLoader(map[string]*Clip{"a.wav": ramp(22050, 44100)})})

	d, err := m.Play(MixRequest{Device: "UMC1820", Clips: []ClipSpec{{Path: "a.wav", Channel: 4}}})
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if d != 500*time.Millisecond {
		t.Errorf("duration = %v, want 500ms", d)
	}
	if backend.stops != 1 || backend.plays != 1 || backend.playing == nil {
		t.Errorf("stops=%d plays=%d", backend.stops, backend.plays)
	}
	if backend.lastDev.Name != "Behringer UMC1820 Multichannel" {
		t.Errorf("played on %q", backend.lastDev.Name)
	}
}

func TestPlay_MissingClipFailsWholeRequest(t *testing.T) {
	backend := &fakeBackend{devices: testDevices()}
	m := NewMixer(backend, Options{Loader: clipLoader(map[string]*Clip{"a.wav": ramp(10, 44100)})})

	_, err := m.Play(MixRequest{Device: "UMC1820", Clips: []ClipSpec{
		{Path: "a.wav", Channel: 1},
		{Path: "gone.wav", Channel: 2},
	}})
	if err == nil {
		t.Fatal("Play() error = nil, want load failure")
	}
	if backend.plays != 0 || backend.stops != 0 {
		t.Error("partial request reached the backend")
	}
}

func TestPlay_EmptyRequest(t *testing.T) {
	m := NewMixer(&fakeBackend{devices: testDevices()}, Options{})
	if _, err := m.Play(MixRequest{Device: "UMC1820"}); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("Play() error = %v, want ErrEmptyRequest", err)
	}
}

func TestMix_NormalizesEachClip(t *testing.T) {
	quiet := &Clip{Samples: []float64{0.1, -0.2, 0.05}, SampleRate: 44100}
	loud := &Clip{Samples: []float64{0.5, -0.8, 0.4}, SampleRate: 44100}
	m := NewMixer(&fakeBackend{devices: testDevices()}, Options{
		Normalize: true,
		Loader:    clipLoader(map[string]*Clip{"quiet.wav": quiet, "loud.wav": loud}),
	})

	buf, _, err := m.Mix(MixRequest{Device: "UMC1820", Clips: []ClipSpec{
		{Path: "quiet.wav", Channel: 1},
		{Path: "loud.wav", Channel: 2},
	}})
	if err != nil {
		t.Fatalf("Mix() error = %v", err)
	}

	for col := 0; col < 2; col++ {
		peak := 0.0
		for f := 0; f < 3; f++ {
			peak = math.Max(peak, math.Abs(float64(buf.Data[f*5+col])))
		}
		if math.Abs(peak-DefaultTargetPeak) > 1e-6 {
			t.Errorf("channel %d peak = %v, want %v", col+1, peak, DefaultTargetPeak)
		}
	}
	if quiet.Samples[1] != -0.2 {
		t.Error("normalization modified the cached clip")
	}
}

func TestMix_CachesDecodedClips(t *testing.T) {
	loads := 0
	m := NewMixer(&fakeBackend{devices: testDevices()}, Options{
		Loader: func(string) (*Clip, error) {
			loads++
			return ramp(4, 44100), nil
		},
	})
	req := MixRequest{Device: "UMC1820", Clips: []ClipSpec{{Path: "a.wav", Channel: 1}}}
	for i := 0; i < 3; i++ {
		if _, _, err := m.Mix(req); err != nil {
			t.Fatalf("Mix() error = %v", err)
		}
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
}

func TestResample(t *testing.T) {
	src := []float64{0, 1, 2, 3}
	got := resample(src, 22050, 44100)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	want := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	same := resample(src, 44100, 44100)
	if len(same) != 4 {
		t.Errorf("same-rate resample changed length to %d", len(same))
	}
}

func TestDownmix(t *testing.T) {
	got := downmix([]float64{1, 0, 0.5, 0.5, -1, 1}, 2)
	want := []float64{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPlay_BackendErrors(t *testing.T) {
	clips := clipLoader(map[string]*Clip{"a.wav": ramp(10, 44100)})
	req := MixRequest{Device: "UMC1820", Clips: []ClipSpec{{Path: "a.wav", Channel: 1}}}

	listFails := NewMixer(&fakeBackend{listErr: errors.New("host api gone")}, Options{Loader: clips})
	if _, err := listFails.Play(req); err == nil {
		t.Error("Play() with failing device list: error = nil")
	}

	playFails := NewMixer(&fakeBackend{devices: testDevices(), playErr: errors.New("invalid sample rate")}, Options{Loader: clips})
	if _, err := playFails.Play(req); err == nil {
		t.Error("Play() with failing stream: error = nil")
	}
}
