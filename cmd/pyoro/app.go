package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/config"
	"github.com/vovakirdan/tui-pyoro/internal/storage"
)

// app holds the services shared by the interactive commands.
type app struct {
	settings     config.Settings
	settingsPath string
	// file is the settings as stored, without command-line overrides.
	file config.Settings

	logger  *log.Logger
	logFile *os.File

	store *storage.Store
	mixer *audio.Mixer
	bank  *audio.Bank

	watcher *config.Watcher
}

// openApp loads settings, opens logging, storage and audio. Failures of
// optional services are logged and the game continues without them.
func openApp(logOut io.Writer) (*app, error) {
	a := &app{}

	settings, path, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	a.settings = settings
	a.file = settings
	a.settingsPath = path
	a.applyFlags()

	if err := a.openLog(logOut); err != nil {
		return nil, err
	}
	a.logger.Debug("settings loaded", "path", a.settingsPath)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		a.logger.Warn("could not open scores database", "error", err)
	} else {
		a.store = store
	}

	a.openAudio()
	a.watch()
	return a, nil
}

func (a *app) applyFlags() {
	if flagFPS > 0 {
		a.settings.FPS = flagFPS
	}
	if flagAudio != "" {
		a.settings.Audio.Backend = flagAudio
	}
	if flagMute {
		a.settings.Audio.Backend = audio.DeviceNone
	}
	if flagAssets != "" {
		a.settings.AssetsDir = flagAssets
	}
}

// openLog sends the log to logOut, or to ~/.pyoro/pyoro.log with --debug.
func (a *app) openLog(logOut io.Writer) error {
	level := log.InfoLevel
	if flagDebug {
		level = log.DebugLevel
		dir := config.UserDir()
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
		f, err := os.OpenFile(filepath.Join(dir, "pyoro.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("cannot open debug log: %w", err)
		}
		a.logFile = f
		logOut = f
	}
	a.logger = log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		Prefix:          "pyoro",
		Level:           level,
	})
	return nil
}

// openAudio starts the mixer, falling back to a silent device.
func (a *app) openAudio() {
	logger := a.logger.WithPrefix("audio")
	dev, err := audio.OpenDevice(a.settings.Audio.Backend, audio.DeviceFormat)
	if err != nil {
		if errors.Is(err, audio.ErrNoAudioBackend) {
			logger.Warn("no audio backend found, running silent", "error", err)
		} else {
			logger.Warn("cannot open audio device, running silent", "error", err)
		}
		dev = audio.NewDiscard(audio.DeviceFormat)
	}
	logger.Debug("audio device", "name", dev.Name())

	a.mixer = audio.NewMixer(dev, logger,
		audio.WithChunk(a.settings.Audio.Chunk),
		audio.WithVolumes(a.settings.SoundVolume, a.settings.MusicVolume),
	)
	a.mixer.Start()
	a.bank = audio.NewBank(a.mixer, a.settings.AssetsDir, logger)
}

// watch follows the settings file for live edits. Without a file on disk
// there is nothing to watch.
func (a *app) watch() {
	if a.settingsPath == "" {
		return
	}
	w, err := config.Watch(a.settingsPath, a.logger.WithPrefix("config"))
	if err != nil {
		a.logger.Warn("cannot watch settings", "path", a.settingsPath, "error", err)
		return
	}
	a.watcher = w
	go func() {
		for err := range w.Errors {
			a.logger.Warn("settings reload failed", "error", err)
		}
	}()
}

// settingsUpdates returns the reload channel, or nil when not watching.
func (a *app) settingsUpdates() <-chan config.Settings {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Updates
}

// applySettings takes over the live-tunable parts of reloaded settings.
func (a *app) applySettings(s config.Settings) {
	a.mixer.SetSoundVolume(s.SoundVolume)
	a.mixer.SetMusicVolume(s.MusicVolume)
	a.settings.SoundVolume = s.SoundVolume
	a.settings.MusicVolume = s.MusicVolume
	a.settings.Keyboard = s.Keyboard
	a.file = s
}

// highScores feeds the variant unlock check.
func (a *app) highScores() [2]int {
	if a.store == nil {
		return [2]int{}
	}
	hs, err := a.store.HighScores()
	if err != nil {
		a.logger.Warn("cannot read high scores", "error", err)
	}
	return hs
}

// saveLastGame remembers the variant for the next start. Settings that
// came from the repo or the embedded defaults are written to a user copy.
func (a *app) saveLastGame(variant int) {
	if a.file.LastGame == variant {
		return
	}
	a.file.LastGame = variant
	path := flagConfigPath
	if path == "" {
		path = config.UserPath()
	}
	if err := config.Save(path, a.file); err != nil {
		a.logger.Warn("cannot save settings", "error", err)
	}
}

func (a *app) close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.bank != nil {
		a.bank.Close()
	}
	if a.mixer != nil {
		a.mixer.Stop()
		if err := a.mixer.Err(); err != nil {
			a.logger.Error("audio device failed", "error", err)
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
