package ports

import (
	"image"
	"image/color"
)

// SheetTile is one thumbnail of a contact sheet.
type SheetTile struct {
	Image image.Image
	Label string
}

// SheetOptions controls contact sheet layout.
type SheetOptions struct {
	Title      string
	Columns    int // default: 4
	TileWidth  int // Thumbnail width in pixels (default: 320)
	Margin     int // Space around and between tiles (default: 16)
	Background color.Color
	Foreground color.Color
}

// SheetRenderer draws contact sheets and encodes them as images.
type SheetRenderer interface {
	// RenderSheet lays tiles out in a grid below an optional title.
	RenderSheet(tiles []SheetTile, opts SheetOptions) image.Image

	// EncodePNG encodes img as PNG.
	EncodePNG(img image.Image) ([]byte, error)
}
