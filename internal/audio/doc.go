// Package audio mixes prop sound clips onto the channels of one
// multi-channel output device.
//
// Each output channel of the interface feeds a different speaker in the
// attraction, so channels are independent outputs rather than a stereo
// image. A MixRequest places each clip on its own channel:
//
//	req := audio.MixRequest{
//	    Device: "UMC1820",
//	    Clips: []audio.ClipSpec{
//	        {Path: "sounds/witch-laugh.wav", Channel: 4},
//	        {Path: "sounds/thunder.mp3", Channel: 6},
//	    },
//	}
//	duration, err := mixer.Play(req)
//
// Clips are downmixed to mono, resampled up to the highest rate in the
// request by linear interpolation, padded with silence to a common length
// and, optionally, peak-normalized one by one. Starting a new mix stops
// whatever was playing. Any failure before that point leaves the current
// playback alone.
package audio
