package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/user/reelcut/pkg/ports"
)

// ReadError reports a frame that could not be decoded.
type ReadError struct {
	Frame int // Index relative to the first frame read
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read frame %d: %v", e.Frame, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// CopyOptions controls CopyFrames.
type CopyOptions struct {
	// Limit is the maximum number of frames to copy; negative copies until EOF.
	Limit int
	// Transform is applied to every frame before it is written.
	Transform func(image.Image) image.Image
	// Progress is advanced once per written frame. May be nil.
	Progress ports.ProgressTask
}

// CopyFrames moves frames from src to dst one at a time.
// It returns the number of frames written and whether src reached end of stream.
// Neither handle is closed.
func CopyFrames(ctx context.Context, src ports.FrameReader, dst ports.FrameWriter, opts CopyOptions) (int, bool, error) {
	n := 0
	for opts.Limit < 0 || n < opts.Limit {
		if err := ctx.Err(); err != nil {
			return n, false, err
		}

		img, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			return n, true, nil
		}
		if err != nil {
			return n, false, &ReadError{Frame: n, Err: err}
		}

		if opts.Transform != nil {
			img = opts.Transform(img)
		}

		if err := dst.WriteFrame(img); err != nil {
			return n, false, fmt.Errorf("write frame %d: %w", n, err)
		}
		n++

		if opts.Progress != nil {
			opts.Progress.Add(1)
		}
	}
	return n, false, nil
}
