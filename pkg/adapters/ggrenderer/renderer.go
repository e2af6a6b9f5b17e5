// Package ggrenderer resizes frames and draws contact sheets using gg and x/image.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/reelcut/pkg/ports"
)

const (
	defaultColumns   = 4
	defaultTileWidth = 320
	defaultMargin    = 16
	labelHeight      = 20
	titleHeight      = 32
)

// Renderer implements ports.Scaler and ports.SheetRenderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

func kernel(interp ports.Interpolation) draw.Interpolator {
	switch interp {
	case ports.InterpolationBilinear:
		return draw.BiLinear
	case ports.InterpolationApproxBilinear:
		return draw.ApproxBiLinear
	case ports.InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize scales img to width x height. draw.Src keeps alpha from the source
// instead of compositing over black.
func (r *Renderer) Resize(img image.Image, width, height int, interp ports.Interpolation) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	kernel(interp).Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// RenderSheet draws tiles scaled to opts.TileWidth in a grid.
func (r *Renderer) RenderSheet(tiles []ports.SheetTile, opts ports.SheetOptions) image.Image {
	if opts.Columns <= 0 {
		opts.Columns = defaultColumns
	}
	if opts.TileWidth <= 0 {
		opts.TileWidth = defaultTileWidth
	}
	if opts.Margin <= 0 {
		opts.Margin = defaultMargin
	}
	if opts.Background == nil {
		opts.Background = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	}
	if opts.Foreground == nil {
		opts.Foreground = color.White
	}

	tileHeight := opts.TileWidth * 9 / 16
	if len(tiles) > 0 && tiles[0].Image != nil {
		b := tiles[0].Image.Bounds()
		if b.Dx() > 0 {
			tileHeight = opts.TileWidth * b.Dy() / b.Dx()
		}
	}

	cols := opts.Columns
	if len(tiles) < cols {
		cols = max(len(tiles), 1)
	}
	rows := (len(tiles) + cols - 1) / cols

	top := opts.Margin
	if opts.Title != "" {
		top += titleHeight
	}
	cellH := tileHeight + labelHeight
	width := opts.Margin + cols*(opts.TileWidth+opts.Margin)
	height := top + rows*(cellH+opts.Margin)

	dc := gg.NewContext(width, height)
	dc.SetColor(opts.Background)
	dc.Clear()

	if opts.Title != "" {
		dc.SetColor(opts.Foreground)
		dc.DrawStringAnchored(opts.Title, float64(opts.Margin), float64(opts.Margin+titleHeight/2), 0, 0.5)
	}

	for i, tile := range tiles {
		x := opts.Margin + (i%cols)*(opts.TileWidth+opts.Margin)
		y := top + (i/cols)*(cellH+opts.Margin)

		if tile.Image != nil {
			thumb := r.fit(tile.Image, opts.TileWidth, tileHeight)
			dc.DrawImage(thumb, x, y)
		} else {
			dc.SetColor(color.Gray{Y: 64})
			dc.DrawRectangle(float64(x), float64(y), float64(opts.TileWidth), float64(tileHeight))
			dc.Fill()
		}

		dc.SetColor(opts.Foreground)
		dc.DrawStringAnchored(tile.Label, float64(x+opts.TileWidth/2), float64(y+tileHeight+labelHeight/2), 0.5, 0.5)
	}

	return dc.Image()
}

// fit scales img into a w x h box, preserving aspect ratio and centering it.
func (r *Renderer) fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	sw, sh := max(int(float64(b.Dx())*scale), 1), max(int(float64(b.Dy())*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	offset := image.Pt((w-sw)/2, (h-sh)/2)
	draw.ApproxBiLinear.Scale(dst, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(sw, sh))}, img, b, draw.Src, nil)
	return dst
}

// EncodePNG encodes img as PNG.
func (r *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	_ ports.Scaler        = (*Renderer)(nil)
	_ ports.SheetRenderer = (*Renderer)(nil)
)
