package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Mixer sums playing voices into a single stream and writes it to a device
// from its own goroutine. The device write blocks until the device accepts
// the chunk, which paces the loop.
type Mixer struct {
	device Device
	logger *log.Logger
	format Format
	chunk  int

	// mu guards the voice list, the volumes, the speed and every voice's
	// playback state.
	mu          sync.Mutex
	voices      []*Voice
	soundVolume float64
	musicVolume float64
	speed       float64

	// Accessed only by the mix goroutine
	accum []float64
	in    [][2]float64
	out   []byte

	active  atomic.Bool
	started atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// MixerOption configures a Mixer.
type MixerOption func(*Mixer)

// WithChunk sets the frames mixed per iteration at speed 1.
func WithChunk(frames int) MixerOption {
	return func(m *Mixer) {
		if frames > 0 {
			m.chunk = frames
		}
	}
}

// WithVolumes sets the initial sound and music volumes.
func WithVolumes(sound, music float64) MixerOption {
	return func(m *Mixer) {
		m.soundVolume = clampUnit(sound)
		m.musicVolume = clampUnit(music)
	}
}

// NewMixer creates a mixer writing to dev. A nil logger discards output.
func NewMixer(dev Device, logger *log.Logger, opts ...MixerOption) *Mixer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Mixer{
		device:      dev,
		logger:      logger,
		format:      DeviceFormat,
		chunk:       DefaultChunk,
		soundVolume: 1,
		musicVolume: 1,
		speed:       1,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the mixing goroutine. Calling it twice has no effect.
func (m *Mixer) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.active.Store(true)
	m.wg.Add(1)
	go m.loop()
}

// Stop deactivates the mixer, waits for the in-flight write to drain and
// closes the device. It is safe to call more than once.
func (m *Mixer) Stop() {
	if m.started.Load() && m.active.CompareAndSwap(true, false) {
		close(m.done)
	}
	m.wg.Wait()
	if m.device != nil {
		if err := m.device.Close(); err != nil {
			m.logger.Debug("closing audio device", "error", err)
		}
		m.device = nil
	}
}

// Active reports whether the mixing goroutine is running.
func (m *Mixer) Active() bool {
	return m.active.Load()
}

// Err returns the device error that deactivated the mixer, if any.
func (m *Mixer) Err() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.err
}

// Format returns the output layout.
func (m *Mixer) Format() Format {
	return m.format
}

// SetSpeed changes pitch and tempo together. Values below 0.1 are raised to 0.1.
func (m *Mixer) SetSpeed(s float64) {
	if s < 0.1 {
		s = 0.1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = s
}

// Speed returns the playback speed.
func (m *Mixer) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// EffectiveFramerate returns the output framerate the voices are resampled
// to: the device framerate divided by the speed.
func (m *Mixer) EffectiveFramerate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveFramerateLocked()
}

func (m *Mixer) effectiveFramerateLocked() int {
	return int(math.Round(float64(m.format.Framerate) / m.speed))
}

// SetSoundVolume sets the master gain of sound effects.
func (m *Mixer) SetSoundVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.soundVolume = clampUnit(v)
}

// SoundVolume returns the master gain of sound effects.
func (m *Mixer) SoundVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.soundVolume
}

// SetMusicVolume sets the master gain of music voices.
func (m *Mixer) SetMusicVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicVolume = clampUnit(v)
}

// MusicVolume returns the master gain of music voices.
func (m *Mixer) MusicVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.musicVolume
}

// Len returns the number of voices in the mixer list.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Contains reports whether v is in the mixer list.
func (m *Mixer) Contains(v *Voice) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexLocked(v) >= 0
}

// StopAll stops every voice in the list.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.voices) > 0 {
		m.voices[0].stopLocked()
	}
}

func (m *Mixer) indexLocked(v *Voice) int {
	for i, x := range m.voices {
		if x == v {
			return i
		}
	}
	return -1
}

func (m *Mixer) addLocked(v *Voice) {
	if m.indexLocked(v) < 0 {
		m.voices = append(m.voices, v)
	}
}

func (m *Mixer) removeLocked(v *Voice) {
	if i := m.indexLocked(v); i >= 0 {
		m.voices = append(m.voices[:i], m.voices[i+1:]...)
	}
}

// loop is the mixing goroutine
func (m *Mixer) loop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		default:
		}

		buf := m.mixChunk()
		if _, err := m.device.Write(buf); err != nil {
			m.errMu.Lock()
			m.err = fmt.Errorf("%w: %v", ErrDeviceClosed, err)
			m.errMu.Unlock()
			m.logger.Error("audio device write failed, continuing without sound", "device", m.device.Name(), "error", err)
			m.active.Store(false)
			return
		}
	}
}

// mixChunk produces one chunk of device bytes. Each playing, compatible voice
// contributes chunk*fr_voice/fr_device frames of its own audio, resampled to
// chunk*fr_effective/fr_device output frames and scaled by master*voice
// volume. The lock is released before the result is written.
func (m *Mixer) mixChunk() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	outFrames := m.chunk * m.effectiveFramerateLocked() / m.format.Framerate
	if outFrames < 1 {
		outFrames = 1
	}
	m.accum = resizeFloats(m.accum, outFrames*2)
	for i := range m.accum {
		m.accum[i] = 0
	}

	kept := m.voices[:0]
	var finished []*Voice
	for _, v := range m.voices {
		if !v.playing {
			kept = append(kept, v)
			continue
		}
		if !v.format.Compatible(m.format) {
			kept = append(kept, v)
			continue
		}

		inFrames := m.chunk * v.format.Framerate / m.format.Framerate
		if inFrames < 1 {
			inFrames = 1
		}
		m.in = resizeFrames(m.in, inFrames)
		v.update(m.in)

		gain := m.soundVolume
		if v.music {
			gain = m.musicVolume
		}
		gain *= v.volume
		resampleAdd(m.accum, m.in, gain)

		if v.playing {
			kept = append(kept, v)
		} else {
			finished = append(finished, v)
		}
	}
	for i := len(kept); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = kept
	for _, v := range finished {
		v.rewindLocked()
	}

	m.out = resizeBytes(m.out, outFrames*m.format.FrameSize())
	floatToBytes(m.accum, m.out)
	return m.out
}

// resampleAdd stretches in over len(acc)/2 output frames with linear
// interpolation and adds it into acc scaled by gain.
func resampleAdd(acc []float64, in [][2]float64, gain float64) {
	outFrames := len(acc) / 2
	if outFrames == 0 || len(in) == 0 || gain == 0 {
		return
	}
	if outFrames == len(in) {
		for i, f := range in {
			acc[2*i] += f[0] * gain
			acc[2*i+1] += f[1] * gain
		}
		return
	}

	step := float64(len(in)) / float64(outFrames)
	last := len(in) - 1
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			acc[2*i] += in[last][0] * gain
			acc[2*i+1] += in[last][1] * gain
			continue
		}
		frac := pos - float64(j)
		acc[2*i] += (in[j][0] + (in[j+1][0]-in[j][0])*frac) * gain
		acc[2*i+1] += (in[j][1] + (in[j+1][1]-in[j][1])*frac) * gain
	}
}

// floatToBytes converts interleaved stereo floats to int16 LE bytes.
// Applies soft limiting before hard clip.
func floatToBytes(in []float64, out []byte) {
	for i, v := range in {
		if v > 0.8 {
			v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
		} else if v < -0.8 {
			v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
		}

		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}

		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}
}

func resizeFloats(b []float64, n int) []float64 {
	if cap(b) < n {
		return make([]float64, n)
	}
	return b[:n]
}

func resizeFrames(b [][2]float64, n int) [][2]float64 {
	if cap(b) < n {
		return make([][2]float64, n)
	}
	return b[:n]
}

func resizeBytes(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
