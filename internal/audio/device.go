package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Device accepts mixed s16le stereo bytes. Write blocks until the device
// has room for the data.
type Device interface {
	io.WriteCloser
	Name() string
}

// Device kinds accepted by OpenDevice.
const (
	DeviceAuto    = "auto"
	DevicePipe    = "pipe"
	DeviceSpeaker = "speaker"
	DeviceNone    = "none"
)

// OpenDevice opens an output device of the given kind for format f.
// "auto" tries a command-line backend first, then the speaker.
// When nothing can play audio the error wraps ErrNoAudioBackend.
func OpenDevice(kind string, f Format) (Device, error) {
	switch kind {
	case DevicePipe:
		return OpenPipe(f)
	case DeviceSpeaker:
		return OpenSpeaker(f)
	case DeviceNone:
		return NewDiscard(f), nil
	case DeviceAuto, "":
		pipe, pipeErr := OpenPipe(f)
		if pipeErr == nil {
			return pipe, nil
		}
		spk, spkErr := OpenSpeaker(f)
		if spkErr == nil {
			return spk, nil
		}
		return nil, fmt.Errorf("%w: pipe: %v; speaker: %v", ErrNoAudioBackend, pipeErr, spkErr)
	default:
		return nil, fmt.Errorf("audio: unknown device %q", kind)
	}
}

// pipeDevice writes to the standard input of a player process, or straight
// to an OSS device file.
type pipeDevice struct {
	name string
	cmd  *exec.Cmd
	w    io.WriteCloser
	once sync.Once
}

// OpenPipe starts the first available command-line backend.
func OpenPipe(f Format) (Device, error) {
	backend, err := DetectBackend(f.Framerate)
	if err != nil {
		return nil, err
	}

	if backend.Type == BackendOSS {
		file, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("audio: cannot open %s: %w", backend.Path, err)
		}
		return &pipeDevice{name: backend.Name, w: file}, nil
	}

	cmd := exec.Command(backend.Path, backend.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("audio: cannot open backend %s: %w", backend.Name, err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("audio: cannot start backend %s: %w", backend.Name, err)
	}

	return &pipeDevice{name: backend.Name, cmd: cmd, w: stdin}, nil
}

func (d *pipeDevice) Name() string { return d.name }

func (d *pipeDevice) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

// Close closes the pipe and gives the player a moment to drain before
// killing it.
func (d *pipeDevice) Close() error {
	var err error
	d.once.Do(func() {
		err = d.w.Close()
		if d.cmd == nil || d.cmd.Process == nil {
			return
		}
		exited := make(chan struct{})
		go func() {
			_ = d.cmd.Wait()
			close(exited)
		}()
		select {
		case <-exited:
		case <-time.After(500 * time.Millisecond):
			_ = d.cmd.Process.Kill()
			<-exited
		}
	})
	return err
}

// speakerDevice feeds the beep speaker through an in-memory pipe. The
// speaker pulls frames on its own goroutine, so Write blocks until they
// are consumed.
type speakerDevice struct {
	pr   *io.PipeReader
	pw   *io.PipeWriter
	buf  []byte
	once sync.Once
}

// OpenSpeaker initializes the beep speaker at the format's framerate.
func OpenSpeaker(f Format) (Device, error) {
	if f.Channels != 2 || f.SampleWidth != 2 {
		return nil, ErrUnsupportedFormat
	}
	sr := beep.SampleRate(f.Framerate)
	if err := speaker.Init(sr, sr.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("audio: cannot initialize speaker: %w", err)
	}

	pr, pw := io.Pipe()
	d := &speakerDevice{pr: pr, pw: pw}
	speaker.Play(beep.StreamerFunc(d.stream))
	return d, nil
}

func (d *speakerDevice) Name() string { return "speaker" }

func (d *speakerDevice) Write(p []byte) (int, error) {
	return d.pw.Write(p)
}

func (d *speakerDevice) stream(samples [][2]float64) (int, bool) {
	need := len(samples) * 4
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	buf := d.buf[:need]

	n, err := io.ReadFull(d.pr, buf)
	frames := n / 4
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(buf[i*4:]))
		r := int16(binary.LittleEndian.Uint16(buf[i*4+2:]))
		samples[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}
	if err != nil {
		return frames, frames > 0
	}
	return frames, true
}

func (d *speakerDevice) Close() error {
	d.once.Do(func() {
		d.pw.Close()
		speaker.Close()
	})
	return nil
}

// discardDevice drops audio but sleeps for the duration of every chunk,
// so a mixer writing to it runs at real-time pace.
type discardDevice struct {
	format Format
	closed atomic.Bool
	sleep  func(time.Duration)
}

// NewDiscard returns a device that plays silence at real-time pace.
func NewDiscard(f Format) Device {
	return &discardDevice{format: f, sleep: time.Sleep}
}

func (d *discardDevice) Name() string { return "none" }

func (d *discardDevice) Write(p []byte) (int, error) {
	if d.closed.Load() {
		return 0, ErrDeviceClosed
	}
	frames := len(p) / d.format.FrameSize()
	d.sleep(time.Duration(frames) * time.Second / time.Duration(d.format.Framerate))
	return len(p), nil
}

func (d *discardDevice) Close() error {
	d.closed.Store(true)
	return nil
}
