package ports

import (
	"context"
	"image"
)

// FrameWriter is an open, encodable sink with a fixed profile.
// The creator owns it and must either Close or Abort it.
type FrameWriter interface {
	// WriteFrame encodes one frame. Frames whose size differs from the
	// profile are rejected with ErrFrameSizeMismatch.
	WriteFrame(img image.Image) error

	// Close finalizes the output file.
	Close() error

	// Abort discards the output. It is a no-op after Close.
	Abort()
}

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Create opens a new output file at path for frames of the given profile.
	Create(ctx context.Context, path string, profile Profile, opts EncoderOptions) (FrameWriter, error)
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Codec   string // ffmpeg encoder name (default: libx264)
	Preset  string // Encoder preset (default: fast)
	Bitrate int    // Target bitrate in kbps (0 = quality based)
	Quality int    // CRF value: 0-51 (0 = encoder default)
}

// DefaultEncoderOptions returns the encoder settings used for cut, merge and
// upscale outputs.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		Codec:   "libx264",
		Preset:  "fast",
		Quality: 18,
	}
}
