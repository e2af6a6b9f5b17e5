// Package merge implements the frame-level concatenation stage.
package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

// Stage concatenates videos that share one profile into a single output.
type Stage struct {
	decoder  ports.VideoDecoder
	encoder  ports.VideoEncoder
	progress ports.ProgressReporter
	logger   ports.Logger
}

// NewStage creates a new merge stage.
func NewStage(decoder ports.VideoDecoder, encoder ports.VideoEncoder, progress ports.ProgressReporter, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		encoder:  encoder,
		progress: progress,
		logger:   logger.WithComponent("merge"),
	}
}

// Execute validates every input against the first one's profile and then
// appends their frames in list order.
//
// Validation finishes before the output is created, so a rejected merge
// leaves nothing on disk. During the copy pass an input that can no longer
// be opened is skipped and reported in MergeResult.Skipped.
func (s *Stage) Execute(ctx context.Context, input pipeline.MergeInput) (pipeline.MergeResult, error) {
	result := pipeline.MergeResult{}

	if len(input.InputPaths) == 0 {
		return result, ports.ErrEmptyInput
	}

	profile, total, err := s.validate(ctx, input.InputPaths)
	if err != nil {
		return result, err
	}
	result.Profile = profile

	dst, err := s.encoder.Create(ctx, input.OutputPath, profile, input.Encoder)
	if err != nil {
		return result, fmt.Errorf("create output: %w", err)
	}

	task := s.progress.Start(fmt.Sprintf("merge %d clips", len(input.InputPaths)), total)
	defer task.Done()

	for i, path := range input.InputPaths {
		n, err := s.appendInput(ctx, path, dst, task)
		if errors.Is(err, errSkipped) {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		if err != nil {
			dst.Abort()
			return result, fmt.Errorf("input %d (%s): %w", i+1, filepath.Base(path), err)
		}
		result.Inputs = append(result.Inputs, pipeline.InputStat{Path: path, Frames: n})
		result.FramesWritten += n
	}

	if err := dst.Close(); err != nil {
		return result, fmt.Errorf("finalize output: %w", err)
	}
	result.OutputPath = input.OutputPath

	s.logger.Debug("Merged %d frames from %d inputs into %s", result.FramesWritten, len(result.Inputs), result.OutputPath)
	return result, nil
}

// validate probes every input and returns the shared profile and the sum of
// the reported frame counts (-1 when any is unknown).
func (s *Stage) validate(ctx context.Context, paths []string) (ports.Profile, int, error) {
	var profile ports.Profile
	total := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return profile, 0, err
		}

		info, err := s.decoder.Probe(ctx, path)
		if err != nil {
			s.logger.Error("Cannot open %s: %v", path, err)
			return profile, 0, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, path, err)
		}
		if !info.HasVideo {
			return profile, 0, fmt.Errorf("%w: %s has no video stream", ports.ErrSourceUnavailable, path)
		}

		if i == 0 {
			profile = info.Profile()
		} else if !profile.Matches(info.Profile()) {
			s.logger.Error("Profile mismatch: %s is %s, expected %s", path, info.Profile(), profile)
			return profile, 0, fmt.Errorf("%w: %s is %s, expected %s",
				ports.ErrProfileMismatch, path, info.Profile(), profile)
		}

		if total >= 0 && info.FrameCount > 0 {
			total += info.FrameCount
		} else {
			total = -1
		}
	}
	return profile, total, nil
}

// errSkipped marks an input that could not be reopened for copying.
var errSkipped = errors.New("input skipped")

func (s *Stage) appendInput(ctx context.Context, path string, dst ports.FrameWriter, task ports.ProgressTask) (int, error) {
	src, err := s.decoder.Open(ctx, path, 0)
	if err != nil {
		s.logger.Warn("Skipping %s: %v", path, err)
		return 0, errSkipped
	}
	defer src.Close()

	n, _, err := pipeline.CopyFrames(ctx, src, dst, pipeline.CopyOptions{
		Limit:    -1,
		Progress: task,
	})
	var readErr *pipeline.ReadError
	if errors.As(err, &readErr) {
		s.logger.Warn("Stopped reading %s after %d frames: %v", path, n, readErr.Err)
		return n, nil
	}
	return n, err
}
