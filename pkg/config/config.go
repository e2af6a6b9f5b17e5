// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/user/reelcut/pkg/orchestrator"
	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/timecode"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for reelcut.
type Config struct {
	// Input/Output
	Source  string `yaml:"source"`
	Output  string `yaml:"output"`
	WorkDir string `yaml:"work_dir"`

	// Segments
	FPS      float64         `yaml:"fps"` // 0 = probe the source
	Segments []SegmentConfig `yaml:"segments"`

	// Scaling
	Scale         float64 `yaml:"scale"`
	Interpolation string  `yaml:"interpolation"`

	// Encoding
	Encoder EncoderConfig `yaml:"encoder"`
	Audio   AudioConfig   `yaml:"audio"`

	// Behavior
	ContinueOnError    bool   `yaml:"continue_on_error"`
	CleanIntermediates bool   `yaml:"clean_intermediates"`
	ContactSheet       string `yaml:"contact_sheet"`
	Summary            string `yaml:"summary"`

	// Tools
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	LogLevel    string `yaml:"log_level"`
}

// SegmentConfig is one segment, given either as frames or as timestamps.
type SegmentConfig struct {
	Start     *int   `yaml:"start,omitempty"`
	End       *int   `yaml:"end,omitempty"`
	StartTime string `yaml:"start_time,omitempty"`
	EndTime   string `yaml:"end_time,omitempty"`
}

// EncoderConfig represents video encoding settings.
type EncoderConfig struct {
	Codec   string `yaml:"codec"`
	Preset  string `yaml:"preset"`
	Quality int    `yaml:"quality"`
	Bitrate int    `yaml:"bitrate"` // kbps
}

// AudioConfig represents audio handling settings.
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Mode           string  `yaml:"mode"`
	Codec          string  `yaml:"codec"`
	Bitrate        string  `yaml:"bitrate"`
	Extension      string  `yaml:"extension"`
	MaxDriftSec    float64 `yaml:"max_drift_sec"`
	StrictDuration bool    `yaml:"strict_duration"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	enc := ports.DefaultEncoderOptions()
	return Config{
		// Scaling
		Scale:         pipeline.DefaultScaleFactor,
		Interpolation: ports.InterpolationCubic.String(),

		// Encoding
		Encoder: EncoderConfig{
			Codec:   enc.Codec,
			Preset:  enc.Preset,
			Quality: enc.Quality,
		},
		Audio: AudioConfig{
			Enabled:     true,
			Mode:        string(pipeline.AudioModeCopy),
			Codec:       "aac",
			Bitrate:     "192k",
			Extension:   "m4a",
			MaxDriftSec: 0.1,
		},

		LogLevel: ports.LevelInfo.String(),
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that do not depend on the source file.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if len(c.Segments) == 0 {
		return fmt.Errorf("%w: no segments configured", ports.ErrEmptyInput)
	}
	for i, s := range c.Segments {
		if err := s.validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
	}
	if c.FPS < 0 {
		return fmt.Errorf("%w: %v", ports.ErrInvalidFPS, c.FPS)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("%w: %v", ports.ErrInvalidScale, c.Scale)
	}
	if _, err := ports.ParseInterpolation(c.Interpolation); err != nil {
		return err
	}
	if c.Encoder.Quality < 0 || c.Encoder.Quality > 51 {
		return fmt.Errorf("encoder quality must be between 0 and 51, got %d", c.Encoder.Quality)
	}
	if c.Encoder.Bitrate < 0 {
		return fmt.Errorf("encoder bitrate must not be negative, got %d", c.Encoder.Bitrate)
	}
	switch pipeline.AudioMode(c.Audio.Mode) {
	case pipeline.AudioModeCopy, pipeline.AudioModeEncode:
	default:
		return fmt.Errorf("audio mode must be %q or %q, got %q",
			pipeline.AudioModeCopy, pipeline.AudioModeEncode, c.Audio.Mode)
	}
	if c.Audio.MaxDriftSec < 0 {
		return fmt.Errorf("max_drift_sec must not be negative, got %v", c.Audio.MaxDriftSec)
	}
	if c.LogLevel != "" {
		if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// NeedsFPS reports whether any segment is given as timestamps.
func (c Config) NeedsFPS() bool {
	for _, s := range c.Segments {
		if s.timed() {
			return true
		}
	}
	return false
}

// ResolveSegments converts every segment to frames. fps is only used for
// timestamp segments; a timestamp maps to the frame displayed at that time.
func (c Config) ResolveSegments(fps float64) ([]pipeline.Segment, error) {
	segments := make([]pipeline.Segment, 0, len(c.Segments))
	for i, s := range c.Segments {
		seg, err := s.resolve(fps)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func (s SegmentConfig) timed() bool {
	return s.StartTime != "" || s.EndTime != ""
}

func (s SegmentConfig) validate() error {
	framed := s.Start != nil || s.End != nil
	switch {
	case framed && s.timed():
		return fmt.Errorf("use either start/end or start_time/end_time")
	case framed && (s.Start == nil || s.End == nil):
		return fmt.Errorf("both start and end are required")
	case s.timed() && (s.StartTime == "" || s.EndTime == ""):
		return fmt.Errorf("both start_time and end_time are required")
	case !framed && !s.timed():
		return fmt.Errorf("segment is empty")
	}
	return nil
}

func (s SegmentConfig) resolve(fps float64) (pipeline.Segment, error) {
	if err := s.validate(); err != nil {
		return pipeline.Segment{}, err
	}
	if !s.timed() {
		return pipeline.Segment{Start: *s.Start, End: *s.End}, nil
	}
	if fps <= 0 {
		return pipeline.Segment{}, fmt.Errorf("%w: timestamps need a frame rate", ports.ErrInvalidFPS)
	}
	start, err := timecode.ParseTimestamp(s.StartTime)
	if err != nil {
		return pipeline.Segment{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := timecode.ParseTimestamp(s.EndTime)
	if err != nil {
		return pipeline.Segment{}, fmt.Errorf("end_time: %w", err)
	}
	return pipeline.Segment{Start: timecode.ToFrame(start, fps), End: timecode.ToFrame(end, fps)}, nil
}

// EncoderOptions returns the encoder settings as port options.
func (c Config) EncoderOptions() ports.EncoderOptions {
	return ports.EncoderOptions{
		Codec:   c.Encoder.Codec,
		Preset:  c.Encoder.Preset,
		Quality: c.Encoder.Quality,
		Bitrate: c.Encoder.Bitrate,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
// fps resolves timestamp segments; pass the source frame rate when c.FPS is 0.
func (c Config) ToOrchestratorConfig(fps float64) (orchestrator.Config, error) {
	if c.FPS > 0 {
		fps = c.FPS
	}
	segments, err := c.ResolveSegments(fps)
	if err != nil {
		return orchestrator.Config{}, err
	}
	interp, err := ports.ParseInterpolation(c.Interpolation)
	if err != nil {
		return orchestrator.Config{}, err
	}

	return orchestrator.Config{
		SourcePath: c.Source,
		Segments:   segments,
		FPS:        c.FPS,

		OutputPath: c.Output,
		WorkDir:    c.WorkDir,

		Scale:         c.Scale,
		Interpolation: interp,

		Encoder: c.EncoderOptions(),
		Audio: orchestrator.AudioConfig{
			Enabled:        c.Audio.Enabled,
			Mode:           pipeline.AudioMode(c.Audio.Mode),
			Codec:          c.Audio.Codec,
			Bitrate:        c.Audio.Bitrate,
			Extension:      c.Audio.Extension,
			MaxDriftSec:    c.Audio.MaxDriftSec,
			StrictDuration: c.Audio.StrictDuration,
		},

		ContinueOnError:    c.ContinueOnError,
		CleanIntermediates: c.CleanIntermediates,
		ContactSheet:       c.ContactSheet,
	}, nil
}
