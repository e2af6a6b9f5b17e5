package pipeline

import (
	"fmt"

	"github.com/user/reelcut/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Segment is an inclusive frame range [Start, End] of a source video.
type Segment struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Validate checks 0 <= Start <= End.
func (s Segment) Validate() error {
	if s.Start < 0 || s.End < s.Start {
		return fmt.Errorf("%w: [%d, %d]", ports.ErrInvalidSegment, s.Start, s.End)
	}
	return nil
}

// Len returns the number of frames in the segment.
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

func (s Segment) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// SegmentPair binds the cut video and the sliced audio of one segment.
type SegmentPair struct {
	Index     int // 1-based segment number
	VideoPath string
	AudioPath string
}

// =============================================================================
// Cut Stage Types
// =============================================================================

// CutInput contains parameters for extracting one frame range.
type CutInput struct {
	SourcePath string
	OutputPath string
	Segment    Segment
	Encoder    ports.EncoderOptions
}

// CutResult describes an extracted segment.
type CutResult struct {
	// OutputPath is empty when no frames were written.
	OutputPath    string
	FramesWritten int
	// Truncated is set when the source ended before Segment.End.
	Truncated bool
	Profile   ports.Profile
}

// =============================================================================
// Merge Stage Types
// =============================================================================

// MergeInput contains parameters for concatenating videos.
type MergeInput struct {
	InputPaths []string
	OutputPath string
	Encoder    ports.EncoderOptions
}

// MergeResult describes a concatenated video.
type MergeResult struct {
	OutputPath    string
	FramesWritten int
	Inputs        []InputStat
	Skipped       []string // Inputs that could not be reopened for copying
	Profile       ports.Profile
}

// InputStat records how many frames one merge input contributed.
type InputStat struct {
	Path   string
	Frames int
}

// =============================================================================
// Audio Stage Types
// =============================================================================

// AudioMode selects whether sliced audio is stream-copied or re-encoded.
type AudioMode string

const (
	AudioModeCopy   AudioMode = "copy"
	AudioModeEncode AudioMode = "encode"
)

// AudioInput contains parameters for slicing audio by segment.
type AudioInput struct {
	SourcePath string
	Segments   []Segment
	Numbers    []int   // Optional 1-based file numbers parallel to Segments
	FPS        float64 // Frame rate used to convert segment bounds; 0 = probe source
	OutputDir  string
	Mode       AudioMode
	Codec      string // Used in encode mode (default: aac)
	Bitrate    string // Used in encode mode (default: 192k)
	Extension  string // Output file extension without dot (default: m4a)
}

// AudioFile is one sliced audio segment.
type AudioFile struct {
	Index    int // 1-based, matches the segment order
	Path     string
	Segment  Segment
	StartSec float64
	EndSec   float64
}

// AudioResult lists the sliced audio files in segment order.
type AudioResult struct {
	Files []AudioFile
}

// =============================================================================
// Remux Stage Types
// =============================================================================

// RemuxInput contains parameters for combining cut video with cut audio.
type RemuxInput struct {
	Pairs          []SegmentPair
	OutputDir      string
	AudioCodec     string  // default: aac
	AudioBitrate   string  // default: 192k
	MaxDriftSec    float64 // Allowed audio/video duration difference
	StrictDuration bool    // Reject pairs that drift more than MaxDriftSec
}

// RemuxResult lists the combined files in pair order.
type RemuxResult struct {
	Files  []string
	Drifts []float64 // Absolute duration difference per pair in seconds
}

// =============================================================================
// Upscale Stage Types
// =============================================================================

// UpscaleInput contains parameters for resizing every frame of a video.
type UpscaleInput struct {
	SourcePath    string
	OutputPath    string
	Factor        float64
	Interpolation ports.Interpolation
	Encoder       ports.EncoderOptions
}

// DefaultScaleFactor is the upscale factor used when none is configured.
const DefaultScaleFactor = 2.0

// UpscaleResult describes the resized video.
type UpscaleResult struct {
	OutputPath    string
	FramesWritten int
	Source        ports.Profile
	Profile       ports.Profile
}

// =============================================================================
// Soundtrack Stage Types
// =============================================================================

// SoundtrackInput contains parameters for joining segment audio and muxing it
// onto the final video.
type SoundtrackInput struct {
	VideoPath    string
	AudioPaths   []string
	OutputPath   string
	WorkDir      string // Holds the concat list and the joined track
	AudioCodec   string
	AudioBitrate string
}

// SoundtrackResult describes the final muxed file.
type SoundtrackResult struct {
	OutputPath string
	AudioPath  string // Joined audio track
	ListPath   string // Concat list written to WorkDir
}

// =============================================================================
// Sheet Stage Types
// =============================================================================

// SheetClip is one cut clip shown on the contact sheet.
type SheetClip struct {
	Index   int // 1-based segment number
	Path    string
	Segment Segment
}

// SheetInput contains parameters for rendering a contact sheet of clips.
type SheetInput struct {
	Clips      []SheetClip
	OutputPath string // PNG file
	Title      string
	Columns    int
	TileWidth  int
}

// SheetResult describes the written contact sheet.
type SheetResult struct {
	OutputPath string
	Tiles      int
	Skipped    []string
	Width      int
	Height     int
}
