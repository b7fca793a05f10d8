package audio

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordDevice stores every chunk written to it.
type recordDevice struct {
	mu     sync.Mutex
	writes int
	bytes  int
	fail   error
	closed bool
}

func (d *recordDevice) Name() string { return "record" }

func (d *recordDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return 0, d.fail
	}
	d.writes++
	d.bytes += len(p)
	// Pace like a real device so the loop does not spin.
	time.Sleep(time.Millisecond)
	return len(p), nil
}

func (d *recordDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *recordDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

func constantFrames(n int, v float64) [][2]float64 {
	frames := make([][2]float64, n)
	for i := range frames {
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func firstSample(buf []byte) int16 {
	return int16(binary.LittleEndian.Uint16(buf[0:2]))
}

func TestMixChunkFrameCountFollowsSpeed(t *testing.T) {
	m := NewMixer(nil, nil)
	v := NewClipVoice(m, "beep", DeviceFormat, constantFrames(DefaultFramerate, 0.5))
	v.Play(LoopOnce)

	buf := m.mixChunk()
	if len(buf) != DefaultChunk*4 {
		t.Errorf("speed 1: chunk = %d bytes, expected %d", len(buf), DefaultChunk*4)
	}
	if v.Cursor() != DefaultChunk {
		t.Errorf("speed 1: cursor = %d, expected %d", v.Cursor(), DefaultChunk)
	}

	m.SetSpeed(2)
	if fr := m.EffectiveFramerate(); fr != DefaultFramerate/2 {
		t.Errorf("EffectiveFramerate() = %d, expected %d", fr, DefaultFramerate/2)
	}
	buf = m.mixChunk()
	if len(buf) != 512*4 {
		t.Errorf("speed 2: chunk = %d bytes, expected %d", len(buf), 512*4)
	}
	if v.Cursor() != 2*DefaultChunk {
		t.Errorf("speed 2 should still consume a full chunk of input, cursor = %d", v.Cursor())
	}
}

func TestMixChunkResamplesVoiceFramerate(t *testing.T) {
	m := NewMixer(nil, nil)
	f := Format{Framerate: DefaultFramerate / 2, Channels: 2, SampleWidth: 2}
	v := NewClipVoice(m, "low", f, constantFrames(4096, 0.5))
	v.Play(LoopOnce)

	buf := m.mixChunk()
	if len(buf) != DefaultChunk*4 {
		t.Fatalf("chunk = %d bytes, expected %d", len(buf), DefaultChunk*4)
	}
	if v.Cursor() != DefaultChunk/2 {
		t.Errorf("cursor = %d, expected %d", v.Cursor(), DefaultChunk/2)
	}
	if s := firstSample(buf); s == 0 {
		t.Error("resampled output should not be silent")
	}
}

func TestMixChunkAppliesVolumes(t *testing.T) {
	m := NewMixer(nil, nil, WithVolumes(0.5, 1))
	v := NewClipVoice(m, "beep", DeviceFormat, constantFrames(4096, 0.5))
	v.SetVolume(0.5)
	v.Play(LoopOnce)

	buf := m.mixChunk()
	if s := firstSample(buf); s != 4095 {
		t.Errorf("first sample = %d, expected 4095 (0.5*0.5*0.5 full scale)", s)
	}

	music := newVoice(m, "theme", DeviceFormat, true)
	music.frames = constantFrames(4096, 0.5)
	v.Stop()
	music.Play(LoopForever)
	m.SetMusicVolume(0)

	buf = m.mixChunk()
	if s := firstSample(buf); s != 0 {
		t.Errorf("muted music should be silent, got %d", s)
	}
}

func TestMixChunkSkipsIncompatibleVoices(t *testing.T) {
	m := NewMixer(nil, nil)
	mono := Format{Framerate: DefaultFramerate, Channels: 1, SampleWidth: 2}
	v := NewClipVoice(m, "mono", mono, constantFrames(4096, 0.5))
	v.Play(LoopOnce)

	buf := m.mixChunk()
	for i := 0; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatal("incompatible voice should not be mixed")
		}
	}
	if v.Cursor() != 0 {
		t.Errorf("incompatible voice should not advance, cursor = %d", v.Cursor())
	}
	if !m.Contains(v) || !v.Playing() {
		t.Error("incompatible voice is skipped, not removed")
	}
}

func TestVoiceAppearsOnce(t *testing.T) {
	m := NewMixer(nil, nil)
	v := NewClipVoice(m, "beep", DeviceFormat, constantFrames(100, 0.1))

	v.Play(LoopOnce)
	v.Play(LoopForever)
	v.Pause()
	v.Play(LoopOnce)

	if m.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", m.Len())
	}
}

func TestVoiceLoops(t *testing.T) {
	tests := []struct {
		name        string
		loops       int
		wantPlaying bool
		wantCursor  int
	}{
		{"two passes end inside one chunk", 2, false, 0},
		{"forever keeps wrapping", LoopForever, true, DefaultChunk % 100},
		{"enough passes to outlast the chunk", 20, true, DefaultChunk % 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMixer(nil, nil)
			v := NewClipVoice(m, "blip", DeviceFormat, constantFrames(100, 0.1))
			v.Play(tc.loops)

			m.mixChunk()

			if v.Playing() != tc.wantPlaying {
				t.Errorf("Playing() = %v, expected %v", v.Playing(), tc.wantPlaying)
			}
			if m.Contains(v) != tc.wantPlaying {
				t.Errorf("Contains() = %v, expected %v", m.Contains(v), tc.wantPlaying)
			}
			if v.Cursor() != tc.wantCursor {
				t.Errorf("Cursor() = %d, expected %d", v.Cursor(), tc.wantCursor)
			}
		})
	}
}

func TestPauseKeepsCursorStopRewinds(t *testing.T) {
	m := NewMixer(nil, nil)
	v := NewClipVoice(m, "beep", DeviceFormat, constantFrames(4096, 0.1))
	v.Play(LoopOnce)
	m.mixChunk()

	v.Pause()
	m.mixChunk()
	if v.Cursor() != DefaultChunk {
		t.Errorf("paused voice moved: cursor = %d", v.Cursor())
	}
	if !m.Contains(v) {
		t.Error("paused voice should stay in the mixer")
	}

	v.Stop()
	if v.Cursor() != 0 {
		t.Errorf("Stop should rewind, cursor = %d", v.Cursor())
	}
	if m.Contains(v) {
		t.Error("stopped voice should leave the mixer")
	}
}

func TestSilentVoiceIsInert(t *testing.T) {
	var src Source = Silent{}
	p := src.Sound("nothing")
	p.Play(LoopForever)
	if p.Playing() {
		t.Error("silent voice should never play")
	}
	p.Stop()
}

func TestMixerStartStop(t *testing.T) {
	dev := &recordDevice{}
	m := NewMixer(dev, nil)
	m.Start()

	deadline := time.Now().Add(2 * time.Second)
	for dev.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if dev.count() < 3 {
		t.Fatalf("mixer wrote %d chunks, expected at least 3", dev.count())
	}

	m.Stop()
	m.Stop()
	if m.Active() {
		t.Error("mixer should be inactive after Stop")
	}
	if !dev.closed {
		t.Error("Stop should close the device")
	}
}

func TestDeviceErrorDeactivatesMixer(t *testing.T) {
	dev := &recordDevice{fail: errors.New("broken pipe")}
	m := NewMixer(dev, nil)
	m.Start()

	deadline := time.Now().Add(2 * time.Second)
	for m.Active() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if m.Active() {
		t.Fatal("mixer should deactivate after a write error")
	}
	if !errors.Is(m.Err(), ErrDeviceClosed) {
		t.Errorf("Err() = %v, expected ErrDeviceClosed", m.Err())
	}

	// The simulation keeps using voices after the failure.
	v := NewClipVoice(m, "beep", DeviceFormat, constantFrames(10, 0.1))
	v.Play(LoopOnce)
	v.Stop()
	m.Stop()
}

func TestFloatToBytesLimits(t *testing.T) {
	out := make([]byte, 6)
	floatToBytes([]float64{0.5, 3, -3}, out)

	if got := int16(binary.LittleEndian.Uint16(out[0:])); got != 16383 {
		t.Errorf("0.5 -> %d, expected 16383", got)
	}
	hi := int16(binary.LittleEndian.Uint16(out[2:]))
	lo := int16(binary.LittleEndian.Uint16(out[4:]))
	if hi <= 26213 || hi > 32767 {
		t.Errorf("overdriven positive sample should be soft limited, got %d", hi)
	}
	if lo != -hi {
		t.Errorf("limiter should be symmetric, got %d and %d", hi, lo)
	}
}
