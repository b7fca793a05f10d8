// Package config provides YAML-based settings loading, saving and live
// reloading for the game.
package config

import (
	_ "embed"
)

//go:embed defaults/settings.yaml
var defaultSettingsYAML []byte

// Settings is the persisted player configuration.
type Settings struct {
	LastGame    int      `yaml:"last_game"`
	MusicVolume float64  `yaml:"music_volume"`
	SoundVolume float64  `yaml:"sound_volume"`
	Keyboard    Keyboard `yaml:"keyboard"`
	Joystick    Joystick `yaml:"joystick"`
	Audio       Audio    `yaml:"audio"`
	AssetsDir   string   `yaml:"assets_dir"`
	FPS         int      `yaml:"fps"`
}

// Keyboard binds each gameplay action to one or more key names.
type Keyboard struct {
	Left   []string `yaml:"left"`
	Right  []string `yaml:"right"`
	Action []string `yaml:"action"`
	Pause  []string `yaml:"pause"`
}

// Joystick maps gameplay actions to controller buttons.
type Joystick struct {
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
	Action int `yaml:"action"`
	Pause  int `yaml:"pause"`
}

// Audio selects the output device and mixer behavior.
type Audio struct {
	// Backend is one of auto, pipe, speaker or none.
	Backend string `yaml:"backend"`
	// FollowLevelSpeed couples the mixer playback speed to the level speed.
	FollowLevelSpeed bool `yaml:"follow_level_speed"`
	// Chunk is the number of frames mixed per device write.
	Chunk int `yaml:"chunk"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	return Settings{
		LastGame:    0,
		MusicVolume: 0.6,
		SoundVolume: 0.8,
		Keyboard:    DefaultKeyboard(),
		Joystick: Joystick{
			Left:   13,
			Right:  14,
			Action: 0,
			Pause:  7,
		},
		Audio: Audio{
			Backend:          "auto",
			FollowLevelSpeed: false,
			Chunk:            1024,
		},
		AssetsDir: "assets",
		FPS:       60,
	}
}

// DefaultKeyboard returns the default key bindings.
func DefaultKeyboard() Keyboard {
	return Keyboard{
		Left:   []string{"left", "a"},
		Right:  []string{"right", "d"},
		Action: []string{" ", "up", "w"},
		Pause:  []string{"p", "esc"},
	}
}

// Normalize clamps out-of-range values and restores empty bindings.
func (s *Settings) Normalize() {
	def := DefaultSettings()

	s.MusicVolume = clampUnit(s.MusicVolume)
	s.SoundVolume = clampUnit(s.SoundVolume)
	if s.LastGame < 0 || s.LastGame > 1 {
		s.LastGame = 0
	}
	if s.FPS < 10 || s.FPS > 240 {
		s.FPS = def.FPS
	}
	if s.Audio.Chunk <= 0 {
		s.Audio.Chunk = def.Audio.Chunk
	}
	switch s.Audio.Backend {
	case "auto", "pipe", "speaker", "none":
	default:
		s.Audio.Backend = def.Audio.Backend
	}
	if len(s.Keyboard.Left) == 0 {
		s.Keyboard.Left = def.Keyboard.Left
	}
	if len(s.Keyboard.Right) == 0 {
		s.Keyboard.Right = def.Keyboard.Right
	}
	if len(s.Keyboard.Action) == 0 {
		s.Keyboard.Action = def.Keyboard.Action
	}
	if len(s.Keyboard.Pause) == 0 {
		s.Keyboard.Pause = def.Keyboard.Pause
	}
	if s.AssetsDir == "" {
		s.AssetsDir = def.AssetsDir
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

// DefaultYAML returns the embedded default settings file.
func DefaultYAML() []byte {
	return defaultSettingsYAML
}
