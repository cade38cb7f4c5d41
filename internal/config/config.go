package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is used for the XDG config, state and log locations
const AppName = "hyprecorder"

// Recorder describes how the external capture process is launched
type Recorder struct {
	// Binary is the capture program, looked up on PATH
	Binary string `yaml:"binary"`

	// Audio is the device passed as --audio=<device>; empty captures the default input
	Audio string `yaml:"audio"`

	// Muxer is the output container passed to --muxer
	Muxer string `yaml:"muxer"`

	// FPS is the fixed frame rate passed to --muxer-raw-fps
	FPS int `yaml:"fps"`

	// Extension is the output file extension, defaults to the muxer name
	Extension string `yaml:"extension"`

	// ExtraArgs are appended before --file
	ExtraArgs []string `yaml:"extra_args"`
}

// Config holds the application configuration
type Config struct {
	// Theme is the color theme to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	// OutputDir is where recordings are written, relative to the working directory unless absolute
	OutputDir string `yaml:"output_dir"`

	// TickInterval is how often the elapsed time readout refreshes
	TickInterval time.Duration `yaml:"tick_interval"`

	// Notify sends desktop notifications over D-Bus in addition to the status line
	Notify bool `yaml:"notify"`

	// LogFile overrides the default log location
	LogFile string `yaml:"log_file"`

	Recorder Recorder `yaml:"recorder"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme:        "mocha",
		OutputDir:    "output",
		TickInterval: time.Second,
		Notify:       false,
		Recorder: Recorder{
			Binary:    "wf-recorder",
			Muxer:     "mp4",
			FPS:       60,
			Extension: "mp4",
		},
	}
}

// Load reads the config from a YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	// Extension follows the muxer unless the file sets one
	cfg.Recorder.Extension = ""

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // config path from known locations or --config
	if err != nil {
		if os.IsNotExist(err) {
			cfg.normalize()
			cfg.applyEnvOverrides()
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadFromDefaultPath attempts to load config from standard locations
func LoadFromDefaultPath() (*Config, error) {
	// Check in order: current dir, XDG_CONFIG_HOME/hyprecorder/
	paths := []string{
		"config.yaml",
		filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
	}

	for _, path := range paths {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil {
			return Load(cleanPath)
		}
	}

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LogPath returns the configured log file or the XDG state default
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return expandTilde(c.LogFile)
	}
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// normalize fills zero values left by a partial config file
func (c *Config) normalize() {
	def := DefaultConfig()

	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	c.OutputDir = expandTilde(c.OutputDir)

	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.Recorder.Binary == "" {
		c.Recorder.Binary = def.Recorder.Binary
	}
	if c.Recorder.Muxer == "" {
		c.Recorder.Muxer = def.Recorder.Muxer
	}
	if c.Recorder.FPS <= 0 {
		c.Recorder.FPS = def.Recorder.FPS
	}
	c.Recorder.Extension = strings.TrimPrefix(c.Recorder.Extension, ".")
	if c.Recorder.Extension == "" {
		c.Recorder.Extension = ExtensionForMuxer(c.Recorder.Muxer)
	}
}

// muxerExtensions maps ffmpeg muxer names to their usual file extension
var muxerExtensions = map[string]string{
	"matroska": "mkv",
	"mpegts":   "ts",
	"ogg":      "ogv",
}

// ExtensionForMuxer returns the file extension for a muxer. Muxers named
// after their container, like mp4 or webm, use the name itself.
func ExtensionForMuxer(muxer string) string {
	if ext, ok := muxerExtensions[muxer]; ok {
		return ext
	}
	return muxer
}

// SetOutputDir overrides the output directory, expanding a leading ~/
func (c *Config) SetOutputDir(dir string) {
	c.OutputDir = expandTilde(dir)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HYPRECORDER_OUTPUT_DIR"); v != "" {
		c.OutputDir = expandTilde(v)
	}
	if v := os.Getenv("HYPRECORDER_RECORDER"); v != "" {
		c.Recorder.Binary = v
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
