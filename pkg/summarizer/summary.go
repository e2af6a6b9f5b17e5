// Package summarizer provides summary generation for pipeline runs.
package summarizer

import "time"

// Summary contains all data collected during a pipeline run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Input
	Source SourceInfo

	// Per-segment outcome in configured order
	Segments []SegmentInfo

	// Run settings
	Settings Settings

	// Final file
	Output OutputInfo

	// Wall time per stage
	Stages        []StageInfo
	TotalDuration time.Duration
}

// SourceInfo describes the source recording.
type SourceInfo struct {
	Path        string
	Width       int
	Height      int
	FPS         float64
	FrameCount  int
	DurationSec float64
	HasAudio    bool
}

// SegmentInfo describes one configured segment.
type SegmentInfo struct {
	Index     int
	Start     int
	End       int
	Frames    int
	Truncated bool
	Skipped   bool   // No frame of the range exists in the source
	Error     string // Cut failure when errors were tolerated
	DriftSec  float64
}

// Settings contains the run configuration.
type Settings struct {
	Scale         float64
	Interpolation string
	Codec         string
	Quality       int
	Bitrate       int // kbps, 0 = quality based
	AudioMode     string
}

// OutputInfo contains information about the final video.
type OutputInfo struct {
	Path         string
	Width        int
	Height       int
	FPS          float64
	FrameCount   int
	FileSize     int64
	AudioMuxed   bool
	ContactSheet string
	MergeSkipped []string
}

// StageInfo is the wall time of one stage.
type StageInfo struct {
	Name     string
	Duration time.Duration
}

// DurationSec returns the playback length of the output.
func (o OutputInfo) DurationSec() float64 {
	if o.FPS <= 0 {
		return 0
	}
	return float64(o.FrameCount) / o.FPS
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRunID sets the run identifier.
func (b *Builder) WithRunID(id string) *Builder {
	b.summary.RunID = id
	return b
}

// WithSource sets source information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// AddSegment appends a segment outcome.
func (b *Builder) AddSegment(segment SegmentInfo) *Builder {
	b.summary.Segments = append(b.summary.Segments, segment)
	return b
}

// WithSettings sets run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets final output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// AddStage appends a stage timing.
func (b *Builder) AddStage(name string, d time.Duration) *Builder {
	b.summary.Stages = append(b.summary.Stages, StageInfo{Name: name, Duration: d})
	return b
}

// WithTotalDuration sets the wall time of the whole run.
func (b *Builder) WithTotalDuration(d time.Duration) *Builder {
	b.summary.TotalDuration = d
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
