// Package upscale implements the resolution upscaling stage.
package upscale

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

// Stage resizes every frame of a video by a constant factor.
type Stage struct {
	decoder  ports.VideoDecoder
	encoder  ports.VideoEncoder
	scaler   ports.Scaler
	progress ports.ProgressReporter
	logger   ports.Logger
}

// NewStage creates a new upscale stage.
func NewStage(decoder ports.VideoDecoder, encoder ports.VideoEncoder, scaler ports.Scaler, progress ports.ProgressReporter, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		encoder:  encoder,
		scaler:   scaler,
		progress: progress,
		logger:   logger.WithComponent("upscale"),
	}
}

// ScaledSize returns floor(width*factor) x floor(height*factor).
func ScaledSize(width, height int, factor float64) (int, int) {
	return int(math.Floor(float64(width) * factor)), int(math.Floor(float64(height) * factor))
}

// Execute writes input.SourcePath resized by input.Factor to input.OutputPath.
func (s *Stage) Execute(ctx context.Context, input pipeline.UpscaleInput) (pipeline.UpscaleResult, error) {
	result := pipeline.UpscaleResult{}

	factor := input.Factor
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return result, fmt.Errorf("%w: %v", ports.ErrInvalidScale, input.Factor)
	}

	src, err := s.decoder.Open(ctx, input.SourcePath, 0)
	if err != nil {
		s.logger.Error("Cannot open %s: %v", input.SourcePath, err)
		return result, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info := src.Info()
	result.Source = info.Profile()

	width, height := ScaledSize(info.Width, info.Height, factor)
	if width <= 0 || height <= 0 {
		return result, fmt.Errorf("%w: %v turns %dx%d into %dx%d",
			ports.ErrInvalidScale, factor, info.Width, info.Height, width, height)
	}
	result.Profile = ports.Profile{Width: width, Height: height, FPS: info.FPS, Codec: input.Encoder.Codec}

	dst, err := s.encoder.Create(ctx, input.OutputPath, result.Profile, input.Encoder)
	if err != nil {
		return result, fmt.Errorf("create output: %w", err)
	}

	s.logger.Debug("Scaling %s from %s to %s", input.SourcePath, result.Source, result.Profile)

	total := info.FrameCount
	if total <= 0 {
		total = -1
	}
	task := s.progress.Start(fmt.Sprintf("upscale x%g", factor), total)
	defer task.Done()

	n, _, err := pipeline.CopyFrames(ctx, src, dst, pipeline.CopyOptions{
		Limit: -1,
		Transform: func(img image.Image) image.Image {
			return s.scaler.Resize(img, width, height, input.Interpolation)
		},
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
	result.FramesWritten = n
	s.logger.Debug("Wrote %d frames to %s", n, result.OutputPath)
	return result, nil
}
