package audio

import "errors"

// Domain errors for the audio package.
var (
	// ErrDeviceNotFound is returned when no output device name contains the
	// requested name.
	ErrDeviceNotFound = errors.New("audio: output device not found")

	// ErrChannelOutOfRange is returned when a clip targets a channel outside
	// [1, device output channels]. The whole mix request is rejected.
	ErrChannelOutOfRange = errors.New("audio: channel out of range")

	// ErrUnsupportedFormat is returned for clip files that are neither WAV
	// nor MP3.
	ErrUnsupportedFormat = errors.New("audio: unsupported clip format")

	// ErrDecode is returned when a clip file cannot be decoded.
	ErrDecode = errors.New("audio: decode failed")

	// ErrEmptyRequest is returned for a mix request with no clips.
	ErrEmptyRequest = errors.New("audio: mix request has no clips")
)
