// Package ffmpegencoder encodes RGBA frames by piping them into an ffmpeg subprocess.
package ffmpegencoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/user/reelcut/pkg/ports"
)

// ErrClosed is returned when a frame is written after Close or Abort.
var ErrClosed = errors.New("ffmpegencoder: writer closed")

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	ffmpegPath string
}

// New creates an Encoder that runs ffmpeg at ffmpegPath.
func New(ffmpegPath string) *Encoder {
	return &Encoder{ffmpegPath: ffmpegPath}
}

// PartialPath returns the temporary file an output is encoded into before
// it is renamed to path.
func PartialPath(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}

// Args builds the ffmpeg arguments that encode raw RGBA frames from stdin.
func Args(output string, p ports.Profile, opts ports.EncoderOptions) []string {
	defaults := ports.DefaultEncoderOptions()
	if opts.Codec == "" {
		opts.Codec = defaults.Codec
	}
	if opts.Preset == "" {
		opts.Preset = defaults.Preset
	}

	// 4:2:0 subsampling needs even dimensions
	pixFmt := "yuv420p"
	if p.Width%2 != 0 || p.Height%2 != 0 {
		pixFmt = "yuv444p"
	}

	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-r", strconv.FormatFloat(p.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-c:v", opts.Codec,
		"-preset", opts.Preset,
		"-pix_fmt", pixFmt,
	}

	switch {
	case opts.Bitrate > 0:
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	case opts.Quality > 0:
		q := opts.Quality
		if q > 51 {
			q = 51
		}
		args = append(args, "-crf", strconv.Itoa(q))
	}

	return append(args, "-movflags", "+faststart", output)
}

// Create starts ffmpeg writing to a partial file next to path.
func (e *Encoder) Create(ctx context.Context, path string, profile ports.Profile, opts ports.EncoderOptions) (ports.FrameWriter, error) {
	if profile.Width <= 0 || profile.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrFrameSizeMismatch, profile)
	}
	if profile.FPS <= 0 {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidFPS, profile.FPS)
	}

	w := &writer{
		path:     path,
		tempPath: PartialPath(path),
		profile:  profile,
	}

	w.cmd = exec.CommandContext(ctx, e.ffmpegPath, Args(w.tempPath, profile, opts)...)
	w.cmd.Stderr = &w.stderr
	w.cmd.WaitDelay = waitDelay

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return w, nil
}

type writer struct {
	path     string
	tempPath string
	profile  ports.Profile

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	buf    *image.RGBA
	frames int
	closed bool
}

func (w *writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	b := img.Bounds()
	if b.Dx() != w.profile.Width || b.Dy() != w.profile.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ports.ErrFrameSizeMismatch, b.Dx(), b.Dy(), w.profile.Width, w.profile.Height)
	}

	pix := rgbaPixels(img)
	if pix == nil {
		if w.buf == nil {
			w.buf = image.NewRGBA(w.profile.Bounds())
		}
		draw.Draw(w.buf, w.buf.Bounds(), img, b.Min, draw.Src)
		pix = w.buf.Pix
	}

	if _, err := w.stdin.Write(pix); err != nil {
		return fmt.Errorf("failed to write frame: %w: %s", err, strings.TrimSpace(w.stderr.String()))
	}
	w.frames++
	return nil
}

// rgbaPixels returns img's pixel buffer when it can be piped without copying.
func rgbaPixels(img image.Image) []byte {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*rgba.Rect.Dx() {
		return nil
	}
	return rgba.Pix[:4*rgba.Rect.Dx()*rgba.Rect.Dy()]
}

// Close waits for ffmpeg and moves the partial file into place.
func (w *writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		os.Remove(w.tempPath)
		return fmt.Errorf("ffmpeg encoding failed: %w: %s", err, strings.TrimSpace(w.stderr.String()))
	}
	if err := os.Rename(w.tempPath, w.path); err != nil {
		os.Remove(w.tempPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Abort stops ffmpeg and removes the partial file.
func (w *writer) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true

	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	w.cmd.Wait()
	os.Remove(w.tempPath)
}

// waitDelay bounds the wait for ffmpeg's pipes once the process is killed.
const waitDelay = 5 * time.Second

var _ ports.VideoEncoder = (*Encoder)(nil)
