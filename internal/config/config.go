// Package config loads the Rays configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const FileName = "config.yaml"

// Config holds all Rays configuration.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Server  ServerConfig  `yaml:"server"`
	Search  SearchConfig  `yaml:"search"`
	Lists   ListsConfig   `yaml:"lists"`
	Export  ExportConfig  `yaml:"export"`
	ADB     ADBConfig     `yaml:"adb"`
	OCR     OCRConfig     `yaml:"ocr"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

// ListsConfig sizes the home screen lists (recent, most shared, tags).
type ListsConfig struct {
	Count        int `yaml:"count"`
	PopularCount int `yaml:"popular_count"`
}

type ExportConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ADBConfig configures the Android device used for sharing.
type ADBConfig struct {
	Path      string `yaml:"path"`
	Serial    string `yaml:"serial"`
	RemoteDir string `yaml:"remote_dir"`
}

type OCRConfig struct {
	Command   string `yaml:"command"`
	Languages string `yaml:"languages"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".rays"),
		Server:  ServerConfig{Port: 7438},
		Search:  SearchConfig{MaxResults: 200},
		Lists:   ListsConfig{Count: 10, PopularCount: 50},
		Export:  ExportConfig{Concurrency: 4},
		ADB: ADBConfig{
			Path:      "adb",
			RemoteDir: "/sdcard/Pictures/Rays",
		},
		OCR: OCRConfig{
			Command:   "tesseract",
			Languages: "eng+chi_sim",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads the config file and applies env overrides. The file is
// $RAYS_CONFIG when set, else <data dir>/config.yaml; a missing file means
// defaults.
func Load() (Config, error) {
	cfg := Default()
	if dir := os.Getenv("RAYS_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	path := os.Getenv("RAYS_CONFIG")
	if path == "" {
		path = filepath.Join(cfg.DataDir, FileName)
	}
	if err := cfg.loadFile(path); err != nil {
		return cfg, err
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("RAYS_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if p := os.Getenv("RAYS_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			c.Server.Port = n
		}
	}
	if lvl := os.Getenv("RAYS_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if serial := os.Getenv("ANDROID_SERIAL"); serial != "" && c.ADB.Serial == "" {
		c.ADB.Serial = serial
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = d.Search.MaxResults
	}
	if c.Lists.Count <= 0 {
		c.Lists.Count = d.Lists.Count
	}
	if c.Lists.PopularCount <= 0 {
		c.Lists.PopularCount = d.Lists.PopularCount
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = d.Export.Concurrency
	}
	if c.ADB.Path == "" {
		c.ADB.Path = d.ADB.Path
	}
	if c.ADB.RemoteDir == "" {
		c.ADB.RemoteDir = d.ADB.RemoteDir
	}
	if c.OCR.Command == "" {
		c.OCR.Command = d.OCR.Command
	}
}

// StickerDir is where imported sticker files are kept.
func (c Config) StickerDir() string {
	return filepath.Join(c.DataDir, "stickers")
}
