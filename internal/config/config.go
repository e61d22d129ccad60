// Package config holds the runtime configuration for the countdown toy.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Renderer names.
const (
	RendererEbiten   = "ebiten"
	RendererTerminal = "terminal"
)

// Default asset locations.
const (
	DefaultModelURL    = "https://storage.googleapis.com/mediapipe-models/hand_landmarker/hand_landmarker/float16/1/hand_landmarker.task"
	DefaultCelebration = "Happy\n 2026"
)

// Config is the full application configuration.
type Config struct {
	Renderer  string          `yaml:"renderer"`
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	Detector  DetectorConfig  `yaml:"detector"`
	Font      FontConfig      `yaml:"font"`
	Glyph     GlyphConfig     `yaml:"glyph"`
	Particles ParticlesConfig `yaml:"particles"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Effects   EffectsConfig   `yaml:"effects"`
	Audio     AudioConfig     `yaml:"audio"`
	Tray      TrayConfig      `yaml:"tray"`
	Log       LogConfig       `yaml:"log"`
}

// WindowConfig controls the ebiten window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// CameraConfig selects and sizes the capture device.
type CameraConfig struct {
	Device int `yaml:"device"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// DetectorConfig configures the hand landmarker sidecar.
type DetectorConfig struct {
	// Python is the interpreter; empty means autodetect a venv, then python3.
	Python string `yaml:"python"`
	// Script is the sidecar path; empty means search the usual locations.
	Script string `yaml:"script"`
	// ModelURL is fetched once at startup unless ModelPath is set.
	ModelURL  string `yaml:"model_url"`
	ModelPath string `yaml:"model_path"`

	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
}

// FontConfig selects the glyph font. Both empty means the embedded Go Bold.
type FontConfig struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

// GlyphConfig controls text geometry and sampling.
type GlyphConfig struct {
	Size          float64 `yaml:"size"`
	Depth         float64 `yaml:"depth"`
	CurveSegments int     `yaml:"curve_segments"`
	Celebration   string  `yaml:"celebration"`
}

// ParticlesConfig controls the particle field.
type ParticlesConfig struct {
	Count     int     `yaml:"count"`
	Workers   int     `yaml:"workers"`
	Damping   float64 `yaml:"damping"`
	Noise     float64 `yaml:"noise"`
	Implosion float64 `yaml:"implosion"`
}

// GestureConfig controls fist classification and debounce.
type GestureConfig struct {
	FistRatio  float64       `yaml:"fist_ratio"`
	Cooldown   time.Duration `yaml:"cooldown"`
	IdleAfter  time.Duration `yaml:"idle_after"`  // slow the camera after this long without a hand
	WakeMotion float64       `yaml:"wake_motion"` // percent of changed pixels that wakes an idle tracker
}

// EffectsConfig controls the presentation layer.
type EffectsConfig struct {
	Bloom          bool    `yaml:"bloom"`
	BloomThreshold float64 `yaml:"bloom_threshold"`
	BloomIntensity float64 `yaml:"bloom_intensity"`
	Vignette       bool    `yaml:"vignette"`
	Stars          int     `yaml:"stars"`
	Sparkles       int     `yaml:"sparkles"`
}

// AudioConfig controls the transition chime.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// TrayConfig toggles the system tray menu.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Renderer: RendererEbiten,
		Window: WindowConfig{
			Title:  "Chronos 2026",
			Width:  1280,
			Height: 720,
		},
		Camera: CameraConfig{
			Device: 0,
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Detector: DetectorConfig{
			ModelURL:        DefaultModelURL,
			MaxHands:        1,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
		},
		Glyph: GlyphConfig{
			Size:          8,
			Depth:         0.01,
			CurveSegments: 6,
			Celebration:   DefaultCelebration,
		},
		Particles: ParticlesConfig{
			Count:     9000,
			Damping:   0.90,
			Noise:     0.02,
			Implosion: 0.1,
		},
		Gesture: GestureConfig{
			FistRatio:  1.8,
			Cooldown:   1500 * time.Millisecond,
			IdleAfter:  2 * time.Second,
			WakeMotion: 1.0,
		},
		Effects: EffectsConfig{
			Bloom:          true,
			BloomThreshold: 0.5,
			BloomIntensity: 1.2,
			Vignette:       true,
			Stars:          5000,
			Sparkles:       500,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise break the simulation.
func (c *Config) Validate() error {
	switch c.Renderer {
	case RendererEbiten, RendererTerminal:
	default:
		return fmt.Errorf("%w: renderer %q", ErrInvalid, c.Renderer)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	}
	if c.Detector.ModelURL == "" && c.Detector.ModelPath == "" {
		return fmt.Errorf("%w: detector needs model_url or model_path", ErrInvalid)
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("%w: detector.max_hands must be at least 1", ErrInvalid)
	}
	if c.Glyph.Size <= 0 {
		return fmt.Errorf("%w: glyph.size must be positive", ErrInvalid)
	}
	if c.Glyph.Depth < 0 {
		return fmt.Errorf("%w: glyph.depth must not be negative", ErrInvalid)
	}
	if c.Glyph.CurveSegments < 1 {
		return fmt.Errorf("%w: glyph.curve_segments must be at least 1", ErrInvalid)
	}
	if c.Glyph.Celebration == "" {
		return fmt.Errorf("%w: glyph.celebration must not be empty", ErrInvalid)
	}
	if c.Particles.Count < 1 {
		return fmt.Errorf("%w: particles.count must be at least 1", ErrInvalid)
	}
	if c.Particles.Workers < 0 {
		return fmt.Errorf("%w: particles.workers must not be negative", ErrInvalid)
	}
	if c.Particles.Damping <= 0 || c.Particles.Damping >= 1 {
		return fmt.Errorf("%w: particles.damping must be in (0,1), got %g", ErrInvalid, c.Particles.Damping)
	}
	if c.Gesture.FistRatio <= 0 {
		return fmt.Errorf("%w: gesture.fist_ratio must be positive", ErrInvalid)
	}
	if c.Gesture.Cooldown < 0 {
		return fmt.Errorf("%w: gesture.cooldown must not be negative", ErrInvalid)
	}
	if c.Gesture.IdleAfter < 0 || c.Gesture.WakeMotion < 0 || c.Gesture.WakeMotion > 100 {
		return fmt.Errorf("%w: gesture.idle_after must not be negative and gesture.wake_motion must be in [0,100]", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume must be in [0,1]", ErrInvalid)
	}

	return nil
}
