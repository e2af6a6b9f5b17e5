package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/reelcut/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderer_Resize(t *testing.T) {
	r := New()
	src := solid(4, 3, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	for _, interp := range []ports.Interpolation{
		ports.InterpolationCubic,
		ports.InterpolationBilinear,
		ports.InterpolationApproxBilinear,
		ports.InterpolationNearest,
	} {
		t.Run(interp.String(), func(t *testing.T) {
			dst := r.Resize(src, 8, 6, interp)
			if b := dst.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
				t.Fatalf("bounds = %v, want 8x6", b)
			}
			got := color.RGBAModel.Convert(dst.At(4, 3)).(color.RGBA)
			if got != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
				t.Errorf("solid color changed to %v", got)
			}
		})
	}
}

func TestRenderer_ResizeOffsetSource(t *testing.T) {
	r := New()
	full := solid(10, 10, color.RGBA{G: 255, A: 255})
	sub := full.SubImage(image.Rect(5, 5, 9, 9))

	dst := r.Resize(sub, 2, 2, ports.InterpolationNearest)
	if b := dst.Bounds(); b.Min != (image.Point{}) || b.Dx() != 2 {
		t.Errorf("expected zero-origin 2x2, got %v", b)
	}
}

func TestRenderer_RenderSheet(t *testing.T) {
	r := New()
	tiles := []ports.SheetTile{
		{Image: solid(64, 36, color.RGBA{R: 255, A: 255}), Label: "001  4050-4650"},
		{Image: solid(64, 36, color.RGBA{G: 255, A: 255}), Label: "002"},
		{Image: nil, Label: "003 (missing)"},
	}

	img := r.RenderSheet(tiles, ports.SheetOptions{Title: "highlights", Columns: 2, TileWidth: 64, Margin: 8})

	// 2 columns: 8 + 2*(64+8) = 152; 2 rows of (36+20) plus margins and title.
	b := img.Bounds()
	if b.Dx() != 152 {
		t.Errorf("width = %d, want 152", b.Dx())
	}
	wantH := 8 + titleHeight + 2*(36+labelHeight+8)
	if b.Dy() != wantH {
		t.Errorf("height = %d, want %d", b.Dy(), wantH)
	}

	// Center of the first thumbnail keeps its color.
	c := color.RGBAModel.Convert(img.At(8+32, 8+titleHeight+18)).(color.RGBA)
	if c.R < 200 || c.G > 50 {
		t.Errorf("first tile color = %v", c)
	}
}

func TestRenderer_RenderSheetEmpty(t *testing.T) {
	img := New().RenderSheet(nil, ports.SheetOptions{})
	if img.Bounds().Empty() {
		t.Error("expected a non-empty canvas")
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	data, err := r.EncodePNG(solid(5, 5, color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 5 {
		t.Errorf("decoded width = %d", decoded.Bounds().Dx())
	}
}
