// Package audio implements the audio range extraction stage.
package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/timecode"
)

const (
	defaultCodec     = "aac"
	defaultBitrate   = "192k"
	defaultExtension = "m4a"
)

// Stage slices the audio track of a source into one file per segment.
type Stage struct {
	tool   ports.MediaTool
	prober ports.MediaProber
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new audio stage.
func NewStage(tool ports.MediaTool, prober ports.MediaProber, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		tool:   tool,
		prober: prober,
		fs:     fs,
		logger: logger.WithComponent("audio"),
	}
}

// FileName returns the numbered output name for segment number n (1-based).
func FileName(n int, ext string) string {
	return fmt.Sprintf("audio_%03d.%s", n, strings.TrimPrefix(ext, "."))
}

// Bounds converts an inclusive frame segment to the [start, end) time span
// covered by its frames.
func Bounds(seg pipeline.Segment, fps float64) (float64, float64) {
	return timecode.ToSeconds(seg.Start, fps), timecode.ToSeconds(seg.End+1, fps)
}

// BuildArgs builds the ffmpeg arguments that slice [startSec, endSec) of src
// into out.
func BuildArgs(src, out string, startSec, endSec float64, mode pipeline.AudioMode, codec, bitrate string) []string {
	args := []string{
		"-y",
		"-i", src,
		"-ss", timecode.FormatFFmpeg(startSec),
		"-to", timecode.FormatFFmpeg(endSec),
		"-vn",
		"-map", "0:a:0?",
	}
	if mode == pipeline.AudioModeCopy {
		return append(args, "-c:a", "copy", out)
	}
	return append(args, "-c:a", codec, "-b:a", bitrate, out)
}

func withDefaults(in pipeline.AudioInput) pipeline.AudioInput {
	if in.Mode == "" {
		in.Mode = pipeline.AudioModeCopy
	}
	if in.Codec == "" {
		in.Codec = defaultCodec
	}
	if in.Bitrate == "" {
		in.Bitrate = defaultBitrate
	}
	if in.Extension == "" {
		in.Extension = defaultExtension
	}
	return in
}

// Execute writes one audio file per segment into input.OutputDir.
// A failing tool invocation stops the stage and is returned as *ports.ToolError.
func (s *Stage) Execute(ctx context.Context, input pipeline.AudioInput) (pipeline.AudioResult, error) {
	result := pipeline.AudioResult{}
	input = withDefaults(input)

	if len(input.Segments) == 0 {
		return result, ports.ErrEmptyInput
	}
	if input.Numbers != nil && len(input.Numbers) != len(input.Segments) {
		return result, fmt.Errorf("got %d file numbers for %d segments", len(input.Numbers), len(input.Segments))
	}
	if input.Mode != pipeline.AudioModeCopy && input.Mode != pipeline.AudioModeEncode {
		return result, fmt.Errorf("unknown audio mode %q", input.Mode)
	}
	for _, seg := range input.Segments {
		if err := seg.Validate(); err != nil {
			return result, err
		}
	}

	fps := input.FPS
	if fps <= 0 {
		info, err := s.prober.Probe(ctx, input.SourcePath)
		if err != nil {
			return result, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, input.SourcePath, err)
		}
		fps = info.FPS
	}
	if fps <= 0 {
		return result, fmt.Errorf("%w: cannot determine frame rate of %s", ports.ErrInvalidFPS, input.SourcePath)
	}

	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	for i, seg := range input.Segments {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		n := i + 1
		if input.Numbers != nil {
			n = input.Numbers[i]
		}
		start, end := Bounds(seg, fps)
		out := filepath.Join(input.OutputDir, FileName(n, input.Extension))

		s.logger.Debug("Extracting audio %s-%s into %s",
			timecode.FormatFFmpeg(start), timecode.FormatFFmpeg(end), out)

		args := BuildArgs(input.SourcePath, out, start, end, input.Mode, input.Codec, input.Bitrate)
		if _, err := s.tool.Run(ctx, args); err != nil {
			s.logger.Error("Audio extraction failed for segment %d: %v", n, err)
			return result, fmt.Errorf("segment %d: %w", n, err)
		}

		result.Files = append(result.Files, pipeline.AudioFile{
			Index:    n,
			Path:     out,
			Segment:  seg,
			StartSec: start,
			EndSec:   end,
		})
	}
	return result, nil
}
