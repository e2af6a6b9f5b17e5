// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"fmt"
	"image"
	"math"
)

// fpsTolerance absorbs rounding differences between probes
// (e.g. 30000/1001 reported as 29.97 by one prober and 29.97003 by another).
const fpsTolerance = 1e-3

// MediaInfo describes the streams of a media file.
type MediaInfo struct {
	Width       int
	Height      int
	FPS         float64
	FrameCount  int     // 0 when the container does not report it
	DurationSec float64 // Container or stream duration in seconds
	VideoCodec  string
	HasVideo    bool
	HasAudio    bool
}

// Profile returns the container/codec profile of the video stream.
func (m MediaInfo) Profile() Profile {
	return Profile{
		Width:  m.Width,
		Height: m.Height,
		FPS:    m.FPS,
		Codec:  m.VideoCodec,
	}
}

// VideoDurationSec returns the video stream duration, preferring the frame
// count over the container duration when both are known.
func (m MediaInfo) VideoDurationSec() float64 {
	if m.FrameCount > 0 && m.FPS > 0 {
		return float64(m.FrameCount) / m.FPS
	}
	return m.DurationSec
}

// Profile is the (frame rate, width, height, codec) set that every frame
// written to one output stream must share.
type Profile struct {
	Width  int
	Height int
	FPS    float64
	Codec  string
}

// Matches reports whether two profiles agree on frame rate and dimensions.
// The codec is not compared: frames are decoded before they are re-encoded.
func (p Profile) Matches(other Profile) bool {
	return p.Width == other.Width &&
		p.Height == other.Height &&
		math.Abs(p.FPS-other.FPS) < fpsTolerance
}

// Bounds returns the frame rectangle for this profile.
func (p Profile) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

func (p Profile) String() string {
	return fmt.Sprintf("%dx%d@%.3ffps", p.Width, p.Height, p.FPS)
}

// MediaProber reads stream metadata without decoding frames.
type MediaProber interface {
	// Probe returns the stream information of the file at path.
	Probe(ctx context.Context, path string) (MediaInfo, error)
}

// FrameReader is an open, decodable video stream positioned at a frame.
// The opener owns it and must Close it on every exit path.
type FrameReader interface {
	// Info returns the stream information of the source.
	Info() MediaInfo

	// ReadFrame decodes the next frame. It returns io.EOF at end of stream.
	ReadFrame() (image.Image, error)

	// Close releases the stream. It is safe to call before end of stream.
	Close() error
}

// VideoDecoder abstracts video decoding operations.
type VideoDecoder interface {
	MediaProber

	// Open opens path for reading with the cursor at startFrame.
	// Seek accuracy is up to the underlying decoder.
	Open(ctx context.Context, path string, startFrame int) (FrameReader, error)
}
