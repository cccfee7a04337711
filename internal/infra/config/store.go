package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const AppName = "metascrub"

type Config struct {
	FFmpeg       string        `yaml:"ffmpeg"`
	FFprobe      string        `yaml:"ffprobe"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	DumpTimeout  time.Duration `yaml:"dump_timeout"`
	JPEGQuality  int           `yaml:"jpeg_quality"`
	Cache        bool          `yaml:"cache"`
	CachePath    string        `yaml:"cache_path"`
	Whitelist    []string      `yaml:"whitelist"`
}

func Defaults() Config {
	return Config{
		ProbeTimeout: 3 * time.Second,
		DumpTimeout:  5 * time.Second,
		JPEGQuality:  95,
	}
}

type Store struct {
	path string
}

// NewStore returns a store reading path, or the default config file when
// path is empty.
func NewStore(path string) Store { return Store{path: path} }

func (s Store) Path() (string, error) {
	if s.path != "" {
		return expandHome(s.path), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file. A missing file yields defaults. Environment
// variables override the tool paths.
func (s Store) Load(ctx context.Context) (Config, error) {
	_ = ctx
	cfg := Defaults()
	path, err := s.Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}

	if v := strings.TrimSpace(os.Getenv("METASCRUB_FFMPEG")); v != "" {
		cfg.FFmpeg = v
	}
	if v := strings.TrimSpace(os.Getenv("METASCRUB_FFPROBE")); v != "" {
		cfg.FFprobe = v
	}
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	d := Defaults()
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = d.ProbeTimeout
	}
	if cfg.DumpTimeout <= 0 {
		cfg.DumpTimeout = d.DumpTimeout
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = d.JPEGQuality
	}
	cfg.FFmpeg = expandHome(cfg.FFmpeg)
	cfg.FFprobe = expandHome(cfg.FFprobe)
	if cfg.CachePath == "" {
		cfg.CachePath = defaultCachePath()
	}
	cfg.CachePath = expandHome(cfg.CachePath)

	out := cfg.Whitelist[:0]
	for _, line := range cfg.Whitelist {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = filepath.Clean(expandHome(line))
		if abs, err := filepath.Abs(line); err == nil {
			line = abs
		}
		out = append(out, line)
	}
	cfg.Whitelist = out
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Dir is the per-user configuration directory of the application.
func Dir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName), nil
}

func defaultCachePath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), AppName, "summary.db")
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, AppName, "summary.db")
}
