package config

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for video encoding.
type QualitySettings struct {
	CRF    int    // x264 CRF value (0-51, lower is better)
	Preset string // x264 speed preset
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{CRF: 28, Preset: "veryfast"}
	case QualityHigh:
		return QualitySettings{CRF: 18, Preset: "slow"}
	default: // medium
		return QualitySettings{CRF: 23, Preset: "fast"}
	}
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: Defaults()}
}

// NewConfigBuilderFrom creates a ConfigBuilder that starts from cfg,
// typically loaded with LoadFromFile.
func NewConfigBuilderFrom(cfg Config) *ConfigBuilder {
	cfg.Segments = append([]SegmentConfig(nil), cfg.Segments...)
	return &ConfigBuilder{config: cfg}
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config
	cfg.Segments = append([]SegmentConfig(nil), b.config.Segments...)

	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Encoder.Quality > 51 {
		cfg.Encoder.Quality = 51
	}

	return cfg
}

// WithSource sets the source video.
func (b *ConfigBuilder) WithSource(path string) *ConfigBuilder {
	b.config.Source = path
	return b
}

// WithOutput sets the final output path.
func (b *ConfigBuilder) WithOutput(path string) *ConfigBuilder {
	b.config.Output = path
	return b
}

// WithWorkDir sets the directory for intermediates.
func (b *ConfigBuilder) WithWorkDir(dir string) *ConfigBuilder {
	b.config.WorkDir = dir
	return b
}

// WithoutSegments drops all configured segments.
func (b *ConfigBuilder) WithoutSegments() *ConfigBuilder {
	b.config.Segments = nil
	return b
}

// WithSegment appends an inclusive frame range.
func (b *ConfigBuilder) WithSegment(start, end int) *ConfigBuilder {
	b.config.Segments = append(b.config.Segments, SegmentConfig{Start: &start, End: &end})
	return b
}

// WithTimeSegment appends a range given as timestamps (HH:MM:SS[.fff]).
func (b *ConfigBuilder) WithTimeSegment(start, end string) *ConfigBuilder {
	b.config.Segments = append(b.config.Segments, SegmentConfig{StartTime: start, EndTime: end})
	return b
}

// WithFPS sets the frame rate used for timecodes. 0 uses the source rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithScale sets the upscale factor. Values <= 0 will be forced to 1.
func (b *ConfigBuilder) WithScale(factor float64) *ConfigBuilder {
	b.config.Scale = factor
	return b
}

// WithInterpolation sets the resize kernel name.
func (b *ConfigBuilder) WithInterpolation(name string) *ConfigBuilder {
	b.config.Interpolation = name
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.Encoder.Quality = settings.CRF
	b.config.Encoder.Preset = settings.Preset
	return b
}

// WithVideoCodec sets the ffmpeg video encoder.
func (b *ConfigBuilder) WithVideoCodec(codec string) *ConfigBuilder {
	b.config.Encoder.Codec = codec
	return b
}

// WithVideoBitrate sets a target bitrate in kbps instead of CRF.
func (b *ConfigBuilder) WithVideoBitrate(kbps int) *ConfigBuilder {
	b.config.Encoder.Bitrate = kbps
	return b
}

// WithAudio enables or disables the audio path.
func (b *ConfigBuilder) WithAudio(enabled bool) *ConfigBuilder {
	b.config.Audio.Enabled = enabled
	return b
}

// WithAudioEncoding re-encodes sliced audio with codec at bitrate.
func (b *ConfigBuilder) WithAudioEncoding(codec, bitrate string) *ConfigBuilder {
	b.config.Audio.Mode = "encode"
	b.config.Audio.Codec = codec
	b.config.Audio.Bitrate = bitrate
	return b
}

// WithStrictDuration rejects segments whose audio drifts from the video.
func (b *ConfigBuilder) WithStrictDuration(maxDriftSec float64) *ConfigBuilder {
	b.config.Audio.StrictDuration = true
	b.config.Audio.MaxDriftSec = maxDriftSec
	return b
}

// WithContinueOnError skips failed cuts instead of aborting.
func (b *ConfigBuilder) WithContinueOnError(enabled bool) *ConfigBuilder {
	b.config.ContinueOnError = enabled
	return b
}

// WithCleanIntermediates removes the work directory after a successful run.
func (b *ConfigBuilder) WithCleanIntermediates(enabled bool) *ConfigBuilder {
	b.config.CleanIntermediates = enabled
	return b
}

// WithContactSheet writes a PNG overview of the clips to path.
func (b *ConfigBuilder) WithContactSheet(path string) *ConfigBuilder {
	b.config.ContactSheet = path
	return b
}

// WithTools sets explicit ffmpeg and ffprobe paths. Empty values are ignored.
func (b *ConfigBuilder) WithTools(ffmpegPath, ffprobePath string) *ConfigBuilder {
	if ffmpegPath != "" {
		b.config.FFmpegPath = ffmpegPath
	}
	if ffprobePath != "" {
		b.config.FFprobePath = ffprobePath
	}
	return b
}

// WithLogLevel sets the log level name.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.config.LogLevel = level
	return b
}

// WithSummary writes a Markdown run report to path.
func (b *ConfigBuilder) WithSummary(path string) *ConfigBuilder {
	b.config.Summary = path
	return b
}
