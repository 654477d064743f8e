// Package config provides configuration management for signscribe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/commit"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/pipeline"
	"github.com/ayusman/signscribe/internal/resolve"
	"github.com/ayusman/signscribe/internal/skeleton"
	"github.com/ayusman/signscribe/internal/speech"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SIGNSCRIBE_SERVER_ADDR.
const EnvPrefix = "SIGNSCRIBE"

// Config holds all application configuration
type Config struct {
	Camera     CameraConfig     `mapstructure:"camera" yaml:"camera"`
	Motion     MotionConfig     `mapstructure:"motion" yaml:"motion"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Detector   DetectorConfig   `mapstructure:"detector" yaml:"detector"`
	Dictionary DictionaryConfig `mapstructure:"dictionary" yaml:"dictionary"`
	Speech     SpeechConfig     `mapstructure:"speech" yaml:"speech"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// CameraConfig configures frame capture
type CameraConfig struct {
	Device int  `mapstructure:"device" yaml:"device"`
	FPS    int  `mapstructure:"fps" yaml:"fps"`
	Width  int  `mapstructure:"width" yaml:"width"`
	Height int  `mapstructure:"height" yaml:"height"`
	Mirror bool `mapstructure:"mirror" yaml:"mirror"`
}

// MotionConfig configures the motion gate in front of hand detection
type MotionConfig struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"` // percent of changed pixels
	MaxSkip   int     `mapstructure:"max_skip" yaml:"max_skip"`
}

// PipelineConfig configures the recognition loop
type PipelineConfig struct {
	Tick            time.Duration `mapstructure:"tick" yaml:"tick"`
	StableFrames    int           `mapstructure:"stable_frames" yaml:"stable_frames"`
	IdleResetFrames int           `mapstructure:"idle_reset_frames" yaml:"idle_reset_frames"`
	CanvasSize      int           `mapstructure:"canvas_size" yaml:"canvas_size"`
	Margin          int           `mapstructure:"margin" yaml:"margin"`
	CropPad         int           `mapstructure:"crop_pad" yaml:"crop_pad"`
	HighConfidence  float64       `mapstructure:"high_confidence" yaml:"high_confidence"`
	Closeness       float64       `mapstructure:"closeness" yaml:"closeness"`
}

// ClassifierConfig configures the gesture classifier service
type ClassifierConfig struct {
	Script     string `mapstructure:"script" yaml:"script"`
	Python     string `mapstructure:"python" yaml:"python"`
	LabelsFile string `mapstructure:"labels_file" yaml:"labels_file"`
}

// DetectorConfig configures the hand landmark service
type DetectorConfig struct {
	Script        string  `mapstructure:"script" yaml:"script"`
	Python        string  `mapstructure:"python" yaml:"python"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
}

// DictionaryConfig configures spelling suggestions
type DictionaryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// SpeechConfig configures text-to-speech
type SpeechConfig struct {
	Engine  string        `mapstructure:"engine" yaml:"engine"` // say or espeak
	Voice   string        `mapstructure:"voice" yaml:"voice"`
	Rate    int           `mapstructure:"rate" yaml:"rate"` // words per minute
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig configures the display server
type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
}

// StoreConfig configures the SQLite database
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	cam := capture.DefaultConfig()
	gate := capture.DefaultGateConfig()
	canvas := skeleton.DefaultCanvas()
	res := resolve.DefaultConfig()
	com := commit.DefaultConfig()
	sp := speech.DefaultConfig()

	return &Config{
		Camera: CameraConfig{
			Device: cam.Device,
			FPS:    cam.FPS,
			Width:  cam.Width,
			Height: cam.Height,
			Mirror: cam.Mirror,
		},
		Motion: MotionConfig{
			Enabled:   true,
			Threshold: gate.Threshold,
			MaxSkip:   gate.MaxSkip,
		},
		Pipeline: PipelineConfig{
			Tick:            30 * time.Millisecond,
			StableFrames:    com.StableFrames,
			IdleResetFrames: com.IdleResetFrames,
			CanvasSize:      canvas.Size,
			Margin:          canvas.Margin,
			CropPad:         canvas.CropPad,
			HighConfidence:  res.HighConfidence,
			Closeness:       res.Closeness,
		},
		Detector: DetectorConfig{
			MinConfidence: detector.DefaultConfig().MinConfidence,
		},
		Dictionary: DictionaryConfig{
			Enabled: true,
		},
		Speech: SpeechConfig{
			Engine:  sp.Engine,
			Rate:    sp.Rate,
			Timeout: sp.Timeout,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Store: StoreConfig{
			Path: filepath.Join(Dir(), "signscribe.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Dir returns the per-user data directory, ~/.signscribe.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".signscribe"
	}
	return filepath.Join(home, ".signscribe")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads configuration from path, if it exists, and from SIGNSCRIBE_*
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path as YAML.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	p := c.Pipeline
	switch {
	case p.Tick <= 0:
		return fmt.Errorf("pipeline.tick must be positive")
	case p.StableFrames <= 0:
		return fmt.Errorf("pipeline.stable_frames must be positive")
	case p.CanvasSize <= 0:
		return fmt.Errorf("pipeline.canvas_size must be positive")
	case p.HighConfidence <= 0 || p.HighConfidence > 1:
		return fmt.Errorf("pipeline.high_confidence must be in (0, 1]")
	case p.Closeness < 0 || p.Closeness > 1:
		return fmt.Errorf("pipeline.closeness must be in [0, 1]")
	}
	return nil
}

// setDefaults registers every key so environment overrides are picked up
// by Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("camera.device", cfg.Camera.Device)
	v.SetDefault("camera.fps", cfg.Camera.FPS)
	v.SetDefault("camera.width", cfg.Camera.Width)
	v.SetDefault("camera.height", cfg.Camera.Height)
	v.SetDefault("camera.mirror", cfg.Camera.Mirror)

	v.SetDefault("motion.enabled", cfg.Motion.Enabled)
	v.SetDefault("motion.threshold", cfg.Motion.Threshold)
	v.SetDefault("motion.max_skip", cfg.Motion.MaxSkip)

	v.SetDefault("pipeline.tick", cfg.Pipeline.Tick)
	v.SetDefault("pipeline.stable_frames", cfg.Pipeline.StableFrames)
	v.SetDefault("pipeline.idle_reset_frames", cfg.Pipeline.IdleResetFrames)
	v.SetDefault("pipeline.canvas_size", cfg.Pipeline.CanvasSize)
	v.SetDefault("pipeline.margin", cfg.Pipeline.Margin)
	v.SetDefault("pipeline.crop_pad", cfg.Pipeline.CropPad)
	v.SetDefault("pipeline.high_confidence", cfg.Pipeline.HighConfidence)
	v.SetDefault("pipeline.closeness", cfg.Pipeline.Closeness)

	v.SetDefault("classifier.script", cfg.Classifier.Script)
	v.SetDefault("classifier.python", cfg.Classifier.Python)
	v.SetDefault("classifier.labels_file", cfg.Classifier.LabelsFile)

	v.SetDefault("detector.script", cfg.Detector.Script)
	v.SetDefault("detector.python", cfg.Detector.Python)
	v.SetDefault("detector.min_confidence", cfg.Detector.MinConfidence)

	v.SetDefault("dictionary.enabled", cfg.Dictionary.Enabled)

	v.SetDefault("speech.engine", cfg.Speech.Engine)
	v.SetDefault("speech.voice", cfg.Speech.Voice)
	v.SetDefault("speech.rate", cfg.Speech.Rate)
	v.SetDefault("speech.timeout", cfg.Speech.Timeout)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.static_dir", cfg.Server.StaticDir)

	v.SetDefault("store.path", cfg.Store.Path)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// CaptureConfig converts the camera section.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		Device: c.Camera.Device,
		FPS:    c.Camera.FPS,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
		Mirror: c.Camera.Mirror,
	}
}

// GateConfig converts the motion section.
func (c *Config) GateConfig() capture.GateConfig {
	return capture.GateConfig{
		Threshold: c.Motion.Threshold,
		MaxSkip:   c.Motion.MaxSkip,
	}
}

// PipelineConfig converts the pipeline section.
func (c *Config) PipelineConfig() pipeline.Config {
	p := c.Pipeline
	return pipeline.Config{
		Canvas: skeleton.Canvas{
			Size:    p.CanvasSize,
			Margin:  p.Margin,
			CropPad: p.CropPad,
		},
		Resolver: resolve.Config{
			HighConfidence: p.HighConfidence,
			Closeness:      p.Closeness,
		},
		Commit: commit.Config{
			StableFrames:    p.StableFrames,
			IdleResetFrames: p.IdleResetFrames,
		},
	}
}

// SpeechConfig converts the speech section.
func (c *Config) SpeechConfig() speech.Config {
	return speech.Config{
		Engine:  c.Speech.Engine,
		Voice:   c.Speech.Voice,
		Rate:    c.Speech.Rate,
		Timeout: c.Speech.Timeout,
	}
}

// DetectorConfig converts the detector section.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		Script:        c.Detector.Script,
		Python:        c.Detector.Python,
		MinConfidence: c.Detector.MinConfidence,
	}
}

// KerasConfig converts the classifier section.
func (c *Config) KerasConfig() classify.KerasConfig {
	return classify.KerasConfig{
		Script: c.Classifier.Script,
		Python: c.Classifier.Python,
	}
}
