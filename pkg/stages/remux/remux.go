// Package remux implements the audio/video re-mux stage.
package remux

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

const (
	defaultCodec       = "aac"
	defaultBitrate     = "192k"
	defaultMaxDriftSec = 0.1
)

// Stage combines each cut video with its sliced audio.
type Stage struct {
	tool   ports.MediaTool
	prober ports.MediaProber
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new remux stage.
func NewStage(tool ports.MediaTool, prober ports.MediaProber, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		tool:   tool,
		prober: prober,
		fs:     fs,
		logger: logger.WithComponent("remux"),
	}
}

// FileName returns the output name for segment number n (1-based).
func FileName(n int) string {
	return fmt.Sprintf("segment_%03d.mp4", n)
}

// BuildArgs builds the ffmpeg arguments that put the first video stream of
// video and the first audio stream of audio into out.
// The video stream is copied without re-encoding.
func BuildArgs(video, audio, out, codec, bitrate string) []string {
	return []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
		"-b:a", bitrate,
		out,
	}
}

// Execute writes one combined file per pair into input.OutputDir.
func (s *Stage) Execute(ctx context.Context, input pipeline.RemuxInput) (pipeline.RemuxResult, error) {
	result := pipeline.RemuxResult{}

	if len(input.Pairs) == 0 {
		return result, ports.ErrEmptyInput
	}
	codec := input.AudioCodec
	if codec == "" {
		codec = defaultCodec
	}
	bitrate := input.AudioBitrate
	if bitrate == "" {
		bitrate = defaultBitrate
	}
	maxDrift := input.MaxDriftSec
	if maxDrift <= 0 {
		maxDrift = defaultMaxDriftSec
	}

	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	for i, pair := range input.Pairs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		n := pair.Index
		if n <= 0 {
			n = i + 1
		}

		drift, err := s.drift(ctx, pair)
		if err != nil {
			return result, fmt.Errorf("segment %d: %w", n, err)
		}
		if drift > maxDrift {
			if input.StrictDuration {
				s.logger.Error("Segment %d audio and video differ by %.3fs", n, drift)
				return result, fmt.Errorf("segment %d: %w: %.3fs exceeds %.3fs",
					n, ports.ErrDurationMismatch, drift, maxDrift)
			}
			s.logger.Warn("Segment %d audio and video differ by %.3fs", n, drift)
		}

		out := filepath.Join(input.OutputDir, FileName(n))
		s.logger.Debug("Muxing %s and %s into %s", pair.VideoPath, pair.AudioPath, out)

		if _, err := s.tool.Run(ctx, BuildArgs(pair.VideoPath, pair.AudioPath, out, codec, bitrate)); err != nil {
			s.logger.Error("Mux failed for segment %d: %v", n, err)
			return result, fmt.Errorf("segment %d: %w", n, err)
		}

		result.Files = append(result.Files, out)
		result.Drifts = append(result.Drifts, drift)
	}
	return result, nil
}

// drift returns the absolute difference between the video and audio durations.
func (s *Stage) drift(ctx context.Context, pair pipeline.SegmentPair) (float64, error) {
	video, err := s.prober.Probe(ctx, pair.VideoPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, pair.VideoPath, err)
	}
	audio, err := s.prober.Probe(ctx, pair.AudioPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, pair.AudioPath, err)
	}
	return math.Abs(video.VideoDurationSec() - audio.DurationSec), nil
}
