// Package sheet renders a contact sheet with one thumbnail per cut clip.
package sheet

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

// Stage renders a PNG overview of the clips of a run.
type Stage struct {
	decoder  ports.VideoDecoder
	renderer ports.SheetRenderer
	fs       ports.FileSystem
	logger   ports.Logger
}

// NewStage creates a new sheet stage.
func NewStage(decoder ports.VideoDecoder, renderer ports.SheetRenderer, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("sheet"),
	}
}

// Label returns the caption of a clip tile.
func Label(clip pipeline.SheetClip) string {
	return fmt.Sprintf("%03d  %s", clip.Index, clip.Segment)
}

// Execute writes the contact sheet. Clips that cannot be read are skipped.
func (s *Stage) Execute(ctx context.Context, input pipeline.SheetInput) (pipeline.SheetResult, error) {
	result := pipeline.SheetResult{}

	if len(input.Clips) == 0 {
		return result, ports.ErrEmptyInput
	}

	var tiles []ports.SheetTile
	for _, clip := range input.Clips {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		img, err := s.thumbnail(ctx, clip.Path)
		if err != nil {
			s.logger.Warn("Skipping %s on contact sheet: %v", clip.Path, err)
			result.Skipped = append(result.Skipped, clip.Path)
			continue
		}
		tiles = append(tiles, ports.SheetTile{Image: img, Label: Label(clip)})
	}
	if len(tiles) == 0 {
		return result, fmt.Errorf("%w: no readable clips", ports.ErrSourceUnavailable)
	}

	img := s.renderer.RenderSheet(tiles, ports.SheetOptions{
		Title:     input.Title,
		Columns:   input.Columns,
		TileWidth: input.TileWidth,
	})
	data, err := s.renderer.EncodePNG(img)
	if err != nil {
		return result, fmt.Errorf("encode contact sheet: %w", err)
	}

	if dir := filepath.Dir(input.OutputPath); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return result, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
		return result, fmt.Errorf("write contact sheet: %w", err)
	}

	b := img.Bounds()
	result.OutputPath = input.OutputPath
	result.Tiles = len(tiles)
	result.Width, result.Height = b.Dx(), b.Dy()
	s.logger.Debug("Wrote contact sheet %s (%dx%d)", result.OutputPath, result.Width, result.Height)
	return result, nil
}

// thumbnail decodes the middle frame of path.
func (s *Stage) thumbnail(ctx context.Context, path string) (image.Image, error) {
	info, err := s.decoder.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	src, err := s.decoder.Open(ctx, path, info.FrameCount/2)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.ReadFrame()
}
