package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Clip is a decoded sound, already collapsed to one channel. Samples are
// in [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Frames returns the number of samples.
func (c *Clip) Frames() int { return len(c.Samples) }

// LoadClip decodes a WAV or MP3 file, chosen by extension, and averages
// its channels into mono.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening clip %s: %w", path, err)
	}
	defer f.Close()

	var clip *Clip
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		clip, err = decodeWAV(f)
	case ".mp3":
		clip, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// wavFormatPCM is the WAVE_FORMAT_PCM tag. Float and compressed encodings
// use other tags.
const wavFormatPCM = 1

func decodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM wav file", ErrDecode)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav format %d is not integer PCM", ErrUnsupportedFormat, d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrDecode)
	}

	depth := int(d.BitDepth)
	scale := 1.0 / float64(int64(1)<<(depth-1))
	offset := 0
	if depth == 8 {
		// 8-bit PCM is unsigned.
		offset = 128
	}

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v-offset) * scale
	}
	return &Clip{
		Samples:    downmix(samples, channels),
		SampleRate: int(d.SampleRate),
	}, nil
}

// decodeMP3 reads the whole stream. The decoder always emits 16-bit
// little-endian stereo.
func decodeMP3(r io.Reader) (*Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	const bytesPerSample = 2
	samples := make([]float64, len(raw)/bytesPerSample)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*bytesPerSample:]))
		samples[i] = float64(v) / 32768
	}
	return &Clip{
		Samples:    downmix(samples, 2),
		SampleRate: d.SampleRate(),
	}, nil
}
