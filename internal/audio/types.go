// Package audio implements the software mixer: voices holding resident or
// streamed PCM, a mixing goroutine that applies volume and playback speed,
// and the output devices the mixed stream is written to.
package audio

import "errors"

const (
	// DefaultFramerate is the device sample rate in frames per second.
	DefaultFramerate = 44100
	// DefaultChunk is the number of frames mixed per iteration at speed 1.
	DefaultChunk = 1024
)

// Format describes a PCM layout.
type Format struct {
	Framerate   int // Frames per second
	Channels    int // Interleaved channels per frame
	SampleWidth int // Bytes per sample
}

// DeviceFormat is the layout the mixer writes: 16-bit little-endian stereo.
var DeviceFormat = Format{Framerate: DefaultFramerate, Channels: 2, SampleWidth: 2}

// FrameSize returns the number of bytes in one frame.
func (f Format) FrameSize() int {
	return f.Channels * f.SampleWidth
}

// Compatible reports whether a voice in format f can be mixed into a stream
// of format dst. Framerates may differ; the mixer resamples.
func (f Format) Compatible(dst Format) bool {
	return f.Channels == dst.Channels && f.SampleWidth == dst.SampleWidth
}

// Player is a sound handle the simulation plays, pauses and stops.
type Player interface {
	Play(loops int)
	Pause()
	Stop()
	Playing() bool
}

// Source hands out sound handles by name.
type Source interface {
	Sound(name string) Player
	Music(name string) Player
}

// SpeedSetter changes the playback speed of the whole output.
type SpeedSetter interface {
	SetSpeed(s float64)
}

// Loop values accepted by Play.
const (
	LoopForever = -1
	LoopOnce    = 1
)

// Sentinel errors
var (
	ErrNoAudioBackend    = errors.New("audio: no compatible audio backend found")
	ErrDeviceClosed      = errors.New("audio: device closed")
	ErrUnsupportedFormat = errors.New("audio: unsupported sample format")
)
