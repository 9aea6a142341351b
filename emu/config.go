package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"nescore/emu/log"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Video     VideoConfig     `toml:"video"`

	TraceOut io.WriteCloser `toml:"-"`
}

type EmulationConfig struct {
	// Stop after that many frames, 0 means no limit.
	MaxFrames int `toml:"max_frames"`

	// Path of the JSON state dump written when emulation stops.
	DumpState string `toml:"dump_state"`
}

type VideoConfig struct {
	// Path of the PNG screenshot of the last frame, written when emulation
	// stops.
	Screenshot string `toml:"screenshot"`
}

// ConfigDir returns the per-user nescore configuration directory, creating
// it if needed.
var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("nescore")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Warnf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the configuration file in the nescore
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration file at path, or returns the
// default configuration if it doesn't exist.
func LoadConfigOrDefault(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.DebugZ("no config file, using defaults").String("path", path).End()
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration at path.
func SaveConfig(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
