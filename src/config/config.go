// Package config loads the savevault settings file with Viper. A
// missing config.yaml is not an error; first run writes a commented
// default so users have something to edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	KeyBackupDir   = "backup_dir"
	KeyMaxBackups  = "max_backups"
	KeyCompression = "compression"
	KeyQuality     = "quality"
	KeyThreads     = "threads"

	DefaultMaxBackups = 10
	DefaultQuality    = 60
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# savevault configuration

# Where backups are written when no destination is given on the
# command line.
# backup_dir: ~/savevault

# How many backups to keep per game (1..100).
max_backups: 10

# Whether zip output is compressed, and how hard (1..100).
compression: true
quality: 60

# Copy worker count. 0 picks a value from the disk type.
threads: 0
`

// Settings is the resolved configuration the commands consume.
type Settings struct {
	BackupDir   string
	MaxBackups  int
	Compression bool
	Quality     int
	Threads     int
}

// Dir returns the savevault config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "savevault"), nil
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run.
func Load(configDir string) (Settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return Settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyMaxBackups, DefaultMaxBackups)
	v.SetDefault(KeyCompression, true)
	v.SetDefault(KeyQuality, DefaultQuality)
	v.SetDefault(KeyThreads, 0)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	s := Settings{
		BackupDir:   v.GetString(KeyBackupDir),
		MaxBackups:  v.GetInt(KeyMaxBackups),
		Compression: v.GetBool(KeyCompression),
		Quality:     v.GetInt(KeyQuality),
		Threads:     v.GetInt(KeyThreads),
	}
	if s.BackupDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("resolve home dir: %w", err)
		}
		s.BackupDir = filepath.Join(home, "savevault")
	}
	return s, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
