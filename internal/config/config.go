package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	OutputDir string `yaml:"output_dir"`
	TempDir   string `yaml:"temp_dir"`
	Workers   int    `yaml:"workers"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Export settings
	Export ExportConfig `yaml:"export"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

type ExportConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	CRF        int    `yaml:"crf"`
	Preset     string `yaml:"preset"`
	// PadColor fills letterbox bars, ffmpeg color syntax
	PadColor string `yaml:"pad_color"`
	// SkipThreshold is the fraction of a job's frames that may fail to
	// decode before the whole job is failed and its output discarded
	SkipThreshold float64 `yaml:"skip_threshold"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Workers)
	}
	if c.Export.SkipThreshold < 0 || c.Export.SkipThreshold >= 1 {
		return fmt.Errorf("skip_threshold must be in [0, 1): %g", c.Export.SkipThreshold)
	}
	if c.Export.CRF < 0 || c.Export.CRF > 51 {
		return fmt.Errorf("crf must be between 0 and 51: %d", c.Export.CRF)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		OutputDir: "./clips",
		TempDir:   os.TempDir(),
		Workers:   0, // 0 means derive from CPU count
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Export: ExportConfig{
			VideoCodec:    "libx264",
			AudioCodec:    "aac",
			CRF:           23,
			Preset:        "medium",
			PadColor:      "black",
			SkipThreshold: 0.5,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".frameforge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
