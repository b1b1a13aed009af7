// Package config reads and writes the player's TOML configuration file.
//
// The file lives at ~/.sonik/config.toml and is created with defaults on the
// first run. Every path the player touches on disk comes from here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/natefinch/atomic"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// Config holds every setting read from config.toml.
type Config struct {
	// MusicFolder is the root of the music collection to index
	MusicFolder string `toml:"music_folder"`

	// DataFolder holds the persisted library and the log file
	DataFolder string `toml:"data_folder"`

	// DatabasePath is the persisted library file
	DatabasePath string `toml:"database_path"`

	// ArtMapPath is reserved for album artwork; the text UI does not read it
	ArtMapPath string `toml:"art_map_path"`

	// StatsPath is the persisted statistics file
	StatsPath string `toml:"stats_path"`
}

// Dir returns the default configuration directory, ~/.sonik.
func Dir() string {
	return filepath.Join(xdg.Home, ".sonik")
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Default returns the configuration written on first run.
// Data files are placed in dir; the music folder is the user's music directory.
func Default(dir string) Config {
	music := xdg.UserDirs.Music
	if music == "" {
		music = filepath.Join(xdg.Home, "Music")
	}
	return Config{
		MusicFolder:  music,
		DataFolder:   dir,
		DatabasePath: filepath.Join(dir, "library.bin"),
		ArtMapPath:   filepath.Join(dir, "art_map.bin"),
		StatsPath:    filepath.Join(dir, "stats.bin"),
	}
}

// LogPath returns the log file location.
func (c Config) LogPath() string {
	return filepath.Join(c.DataFolder, "sonik.log")
}

// Validate checks that every required key has a value.
func (c Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"music_folder", c.MusicFolder},
		{"data_folder", c.DataFolder},
		{"database_path", c.DatabasePath},
		{"stats_path", c.StatsPath},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.NewValidationError(r.key, r.value, "must not be empty")
		}
	}
	return nil
}

// Load reads dir/config.toml, writing the defaults first if it does not exist.
// Keys missing from the file keep their default values.
func Load(dir string) (Config, error) {
	path := Path(dir)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Save(dir, Default(dir)); err != nil {
			return Config{}, err
		}
	} else if err != nil {
		return Config{}, domain.NewConfigError("read", path, err)
	}

	cfg := Default(dir)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, domain.NewConfigError("decode", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, domain.NewConfigError("decode", path, err)
	}
	return cfg, nil
}

// Save writes cfg to dir/config.toml, creating dir if needed.
// Any failure, including one reported when the file is closed, is a ConfigError.
func Save(dir string, cfg Config) error {
	path := Path(dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewConfigError("write", path, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return domain.NewConfigError("write", path, err)
	}

	// the file is synced and closed before it replaces the old one, so a
	// failed write leaves the previous config in place
	if err := atomic.WriteFile(path, &buf); err != nil {
		return domain.NewConfigError("write", path, err)
	}
	return nil
}

// Create writes a fresh configuration with musicFolder as the music folder.
// The folder must exist; relative paths are made absolute.
func Create(dir, musicFolder string) (Config, error) {
	abs, err := filepath.Abs(musicFolder)
	if err != nil {
		return Config{}, domain.NewValidationError("music_folder", musicFolder, err.Error())
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Config{}, domain.NewValidationError("music_folder", abs, "folder does not exist")
	}
	if !info.IsDir() {
		return Config{}, domain.NewValidationError("music_folder", abs, "not a directory")
	}

	cfg := Default(dir)
	cfg.MusicFolder = abs
	if err := Save(dir, cfg); err != nil {
		return Config{}, fmt.Errorf("create config: %w", err)
	}
	return cfg, nil
}
