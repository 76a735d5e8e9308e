package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Server holds relay settings.
type Server struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
	MDNS   bool   `toml:"mdns"`
}

// Client holds drawing client settings.
type Client struct {
	ServerURL string `toml:"server_url"`
	CanvasID  string `toml:"canvas_id"`
	Name      string `toml:"name"`
	// Autosave is a cron schedule such as "@every 30s". Empty disables it.
	Autosave string `toml:"autosave"`
	Tool     string `toml:"tool"`
}

// History holds undo settings.
type History struct {
	// Limit caps kept snapshots per canvas; 0 keeps everything. Every
	// snapshot is a full copy of the canvas, so saved histories grow fast
	// without it.
	Limit int `toml:"limit"`
}

// Config holds the application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Client  Client  `toml:"client"`
	History History `toml:"history"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Server: Server{
			Addr:   ":8888",
			DBPath: filepath.Join(dataDir(), "sketchboard.db"),
		},
		Client: Client{
			ServerURL: "http://localhost:8888",
			Name:      "Untitled",
			Autosave:  "@every 1m",
			Tool:      "line",
		},
		History: History{Limit: 100},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sketchboard.toml"
	}
	return filepath.Join(dir, "sketchboard", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	if cfg.History.Limit < 0 {
		return nil, fmt.Errorf("config %s: history.limit must not be negative", path)
	}
	return cfg, nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("# encode config: %v\n", err)
	}
	return sb.String()
}

func dataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "sketchboard")
	}
	return "."
}
