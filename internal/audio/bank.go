package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/wav"
)

type clip struct {
	frames [][2]float64
	format Format
}

// Bank loads sounds and music from an asset directory laid out as
// <dir>/sounds/<name>.wav and <dir>/music/<name>.wav.
//
// Decoded sound clips are cached by name and shared read-only by every
// voice created for them. Sound voices are not retained: each call returns
// a new voice with its own cursor. Music keeps one open stream per track;
// asking for a track again returns the same voice, rewound when stopped.
type Bank struct {
	mixer  *Mixer
	dir    string
	logger *log.Logger

	mu      sync.Mutex
	clips   map[string]*clip
	missing map[string]bool
	streams map[string]*Voice
}

// NewBank creates a bank whose voices play through m.
func NewBank(m *Mixer, dir string, logger *log.Logger) *Bank {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bank{
		mixer:   m,
		dir:     dir,
		logger:  logger,
		clips:   make(map[string]*clip),
		missing: make(map[string]bool),
		streams: make(map[string]*Voice),
	}
}

// GetSound returns a new voice over the named clip. A clip that cannot be
// loaded is reported once and yields a silent voice.
func (b *Bank) GetSound(name string) *Voice {
	c, err := b.clip(name)
	if err != nil {
		b.reportMissing(name, err)
		return &Voice{name: name, volume: 1}
	}
	return NewClipVoice(b.mixer, name, c.format, c.frames)
}

// GetMusic returns the streaming voice of the named track, opening it on
// first use. A track that cannot be opened is reported once and yields a
// silent voice.
func (b *Bank) GetMusic(name string) *Voice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.streams[name]; ok {
		return v
	}

	path := filepath.Join(b.dir, "music", name+".wav")
	f, err := os.Open(path)
	if err != nil {
		b.reportMissingLocked(name, err)
		return &Voice{name: name, volume: 1, music: true}
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		b.reportMissingLocked(name, fmt.Errorf("audio: cannot decode %s: %w", path, err))
		return &Voice{name: name, volume: 1, music: true}
	}

	v := NewStreamVoice(b.mixer, name, Format{
		Framerate:   int(format.SampleRate),
		Channels:    format.NumChannels,
		SampleWidth: format.Precision,
	}, stream)
	b.streams[name] = v
	return v
}

// Sound implements Source.
func (b *Bank) Sound(name string) Player { return b.GetSound(name) }

// Music implements Source.
func (b *Bank) Music(name string) Player { return b.GetMusic(name) }

// Close stops and closes every music stream the bank opened.
func (b *Bank) Close() error {
	b.mu.Lock()
	streams := b.streams
	b.streams = make(map[string]*Voice)
	b.mu.Unlock()

	var first error
	for _, v := range streams {
		if err := v.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Bank) clip(name string) (*clip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.clips[name]; ok {
		return c, nil
	}
	path := filepath.Join(b.dir, "sounds", name+".wav")
	frames, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	c := &clip{frames: frames, format: format}
	b.clips[name] = c
	return c, nil
}

func (b *Bank) reportMissing(name string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reportMissingLocked(name, err)
}

func (b *Bank) reportMissingLocked(name string, err error) {
	seen := b.missing[name]
	b.missing[name] = true
	if !seen {
		b.logger.Warn("missing audio asset, using silence", "name", name, "error", err)
	}
}

// decodeFile reads a whole WAV file into memory at its native framerate.
func decodeFile(path string) ([][2]float64, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Format{}, fmt.Errorf("audio: cannot open %s: %w", path, err)
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, Format{}, fmt.Errorf("audio: cannot decode %s: %w", path, err)
	}
	defer stream.Close()

	frames := make([][2]float64, 0, stream.Len())
	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		frames = append(frames, buf[:n]...)
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, Format{}, fmt.Errorf("audio: cannot read %s: %w", path, err)
	}

	return frames, Format{
		Framerate:   int(format.SampleRate),
		Channels:    format.NumChannels,
		SampleWidth: format.Precision,
	}, nil
}

// Silent is a Source whose players never make a sound.
type Silent struct{}

// Sound implements Source.
func (Silent) Sound(name string) Player { return &Voice{name: name, volume: 1} }

// Music implements Source.
func (Silent) Music(name string) Player { return &Voice{name: name, volume: 1, music: true} }
