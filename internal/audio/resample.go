package audio

import (
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
)

// downmix averages interleaved frames into one channel.
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[f*channels+c]
		}
		mono[f] = sum / float64(channels)
	}
	return mono
}

// resample stretches samples from rate src to rate dst by linear
// interpolation over the sample index. The output holds
// round(len·dst/src) samples.
func resample(samples []float64, src, dst int) []float64 {
	if src == dst || len(samples) == 0 || src <= 0 {
		return samples
	}

	n := len(samples)
	m := int(math.Round(float64(n) * float64(dst) / float64(src)))
	out := make([]float64, m)
	step := float64(src) / float64(dst)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= n-1 {
			out[i] = samples[n-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = samples[j] + (samples[j+1]-samples[j])*frac
	}
	return out
}

// normalize scales samples in place so the loudest one reaches peak.
// Silence is left alone.
func normalize(samples []float64, rate int, peak float64) {
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:   samples,
	}
	transforms.NormalizeMax(buf)
	for i := range buf.Data {
		buf.Data[i] *= peak
	}
}
