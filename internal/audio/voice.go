package audio

import (
	"github.com/gopxl/beep"
)

// Voice is a playable source with its own cursor, loop count and volume.
// A voice either holds a fully decoded clip shared read-only with other
// voices of the same sound, or streams frames from an open decoder.
//
// Every field below the mixer pointer is guarded by the mixer's mutex,
// since the mixing goroutine reads and advances it.
type Voice struct {
	mixer  *Mixer
	name   string
	format Format
	music  bool

	frames [][2]float64
	stream beep.StreamSeekCloser

	cursor  int
	loops   int
	volume  float64
	playing bool
}

func newVoice(m *Mixer, name string, f Format, music bool) *Voice {
	return &Voice{
		mixer:  m,
		name:   name,
		format: f,
		music:  music,
		volume: 1,
	}
}

// NewClipVoice creates a voice over resident frames. The frames are not copied.
func NewClipVoice(m *Mixer, name string, f Format, frames [][2]float64) *Voice {
	v := newVoice(m, name, f, false)
	v.frames = frames
	return v
}

// NewStreamVoice creates a music voice that reads frames from s on demand.
func NewStreamVoice(m *Mixer, name string, f Format, s beep.StreamSeekCloser) *Voice {
	v := newVoice(m, name, f, true)
	v.stream = s
	return v
}

// Name returns the sound name the voice was created for.
func (v *Voice) Name() string { return v.name }

// Format returns the PCM layout of the voice.
func (v *Voice) Format() Format { return v.format }

// IsMusic reports whether the music volume applies to the voice.
func (v *Voice) IsMusic() bool { return v.music }

func (v *Voice) silent() bool {
	return v.mixer == nil || (v.frames == nil && v.stream == nil)
}

// Play starts or resumes playback. loops is the number of passes over the
// clip; LoopForever repeats until stopped. Zero is treated as LoopOnce.
func (v *Voice) Play(loops int) {
	if v.silent() {
		return
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()

	if loops == 0 {
		loops = LoopOnce
	}
	v.loops = loops
	v.playing = true
	v.mixer.addLocked(v)
}

// Pause stops producing frames without rewinding.
func (v *Voice) Pause() {
	if v.silent() {
		return
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	v.playing = false
}

// Stop halts playback, leaves the mixer and rewinds to the start.
func (v *Voice) Stop() {
	if v.silent() {
		return
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	v.stopLocked()
}

func (v *Voice) stopLocked() {
	v.playing = false
	v.mixer.removeLocked(v)
	v.rewindLocked()
}

// Playing reports whether the voice is producing frames.
func (v *Voice) Playing() bool {
	if v.silent() {
		return false
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	return v.playing
}

// SetVolume sets the per-voice gain in [0, 1].
func (v *Voice) SetVolume(vol float64) {
	if v.mixer == nil {
		v.volume = clampUnit(vol)
		return
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	v.volume = clampUnit(vol)
}

// Volume returns the per-voice gain.
func (v *Voice) Volume() float64 {
	if v.mixer == nil {
		return v.volume
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	return v.volume
}

// Cursor returns the position of the next frame to be read.
func (v *Voice) Cursor() int {
	if v.mixer == nil {
		return v.cursor
	}
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	return v.cursor
}

// Close releases the stream of a music voice.
func (v *Voice) Close() error {
	if v.stream == nil {
		return nil
	}
	v.Stop()
	return v.stream.Close()
}

func (v *Voice) rewindLocked() {
	v.cursor = 0
	if v.stream != nil {
		if err := v.stream.Seek(0); err != nil {
			v.mixer.logger.Warn("cannot rewind stream", "voice", v.name, "error", err)
		}
	}
}

// fill copies as many frames as are left into dst and returns the count.
func (v *Voice) fill(dst [][2]float64) int {
	if v.stream != nil {
		n, ok := v.stream.Stream(dst)
		if !ok {
			return 0
		}
		v.cursor += n
		return n
	}
	if v.cursor >= len(v.frames) {
		return 0
	}
	n := copy(dst, v.frames[v.cursor:])
	v.cursor += n
	return n
}

// update reads the next len(dst) frames at the voice's native framerate.
// Reaching the end consumes one loop; the last loop stops the voice, the
// others rewind and keep filling. Unfilled frames are zeroed.
// Caller holds the mixer lock.
func (v *Voice) update(dst [][2]float64) {
	filled := 0
	rewound := false
	for filled < len(dst) && v.playing {
		n := v.fill(dst[filled:])
		filled += n
		if filled == len(dst) {
			break
		}
		if n == 0 && rewound {
			// Empty clip: nothing more to read on this pass.
			v.playing = false
			break
		}
		rewound = false
		if v.loops > 0 {
			v.loops--
		}
		if v.loops == 0 {
			v.playing = false
			break
		}
		v.rewindLocked()
		rewound = true
	}
	for i := filled; i < len(dst); i++ {
		dst[i] = [2]float64{}
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
