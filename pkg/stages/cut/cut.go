// Package cut implements the frame range extraction stage.
package cut

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

// Stage copies one inclusive frame range of a source video into a new file.
type Stage struct {
	decoder  ports.VideoDecoder
	encoder  ports.VideoEncoder
	progress ports.ProgressReporter
	logger   ports.Logger
}

// NewStage creates a new cut stage.
func NewStage(decoder ports.VideoDecoder, encoder ports.VideoEncoder, progress ports.ProgressReporter, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		encoder:  encoder,
		progress: progress,
		logger:   logger.WithComponent("cut"),
	}
}

// Execute extracts input.Segment from input.SourcePath.
//
// Copying stops at the first of: Segment.End reached, the source's reported
// frame count reached, or end of stream. The last two mark the result as
// truncated and are not errors. When no frame lies inside the range the
// result has an empty OutputPath and no file is written.
func (s *Stage) Execute(ctx context.Context, input pipeline.CutInput) (pipeline.CutResult, error) {
	result := pipeline.CutResult{}
	seg := input.Segment

	if err := seg.Validate(); err != nil {
		return result, err
	}

	src, err := s.decoder.Open(ctx, input.SourcePath, seg.Start)
	if err != nil {
		s.logger.Error("Cannot open %s: %v", input.SourcePath, err)
		return result, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info := src.Info()
	result.Profile = info.Profile()

	limit := seg.Len()
	if info.FrameCount > 0 {
		if seg.Start >= info.FrameCount {
			s.logger.Warn("Segment %s starts after the last frame (%d frames)", seg, info.FrameCount)
			result.Truncated = true
			return result, nil
		}
		if avail := info.FrameCount - seg.Start; avail < limit {
			limit = avail
			result.Truncated = true
		}
	}

	s.logger.Debug("Cutting frames %s of %s", seg, input.SourcePath)

	first, err := src.ReadFrame()
	if errors.Is(err, io.EOF) {
		s.logger.Warn("Segment %s starts after the last frame", seg)
		result.Truncated = true
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("read frame %d: %w", seg.Start, err)
	}

	// Frame bounds are authoritative over probed dimensions.
	b := first.Bounds()
	result.Profile.Width, result.Profile.Height = b.Dx(), b.Dy()

	dst, err := s.encoder.Create(ctx, input.OutputPath, result.Profile, input.Encoder)
	if err != nil {
		return result, fmt.Errorf("create output: %w", err)
	}

	task := s.progress.Start(fmt.Sprintf("cut %s", seg), limit)
	defer task.Done()

	if err := dst.WriteFrame(first); err != nil {
		dst.Abort()
		return result, fmt.Errorf("write frame %d: %w", seg.Start, err)
	}
	task.Add(1)

	n, eof, err := pipeline.CopyFrames(ctx, src, dst, pipeline.CopyOptions{
		Limit:    limit - 1,
		Progress: task,
	})
	if err != nil {
		dst.Abort()
		return result, err
	}
	if err := dst.Close(); err != nil {
		return result, fmt.Errorf("finalize output: %w", err)
	}

	result.OutputPath = input.OutputPath
	result.FramesWritten = n + 1
	if eof {
		result.Truncated = true
	}

	if result.Truncated {
		s.logger.Warn("Segment %s truncated: source ended after %d frames", seg, result.FramesWritten)
	}
	s.logger.Debug("Wrote %d frames to %s", result.FramesWritten, result.OutputPath)
	return result, nil
}
