// Package ffmpegdecoder streams decoded RGBA frames out of an ffmpeg subprocess.
package ffmpegdecoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/timecode"
)

// Decoder implements ports.VideoDecoder.
type Decoder struct {
	ffmpegPath string
	prober     ports.MediaProber
}

// New creates a Decoder that runs ffmpeg at ffmpegPath and describes
// sources with prober.
func New(ffmpegPath string, prober ports.MediaProber) *Decoder {
	return &Decoder{ffmpegPath: ffmpegPath, prober: prober}
}

func (d *Decoder) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	return d.prober.Probe(ctx, path)
}

// Args builds the ffmpeg arguments that decode path from startSec onwards.
// Placing -ss before -i makes ffmpeg decode from the preceding keyframe and
// drop frames until startSec. -noautorotate keeps frames at the coded size
// the probers report.
func Args(path string, startSec float64) []string {
	args := []string{"-v", "error", "-nostdin", "-noautorotate"}
	if startSec > 0 {
		args = append(args, "-ss", timecode.FormatFFmpeg(startSec))
	}
	return append(args,
		"-i", path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
}

// Open starts decoding path at startFrame.
func (d *Decoder) Open(ctx context.Context, path string, startFrame int) (ports.FrameReader, error) {
	info, err := d.prober.Probe(ctx, path)
	if err != nil {
		if errors.Is(err, ports.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, path, err)
	}
	if !info.HasVideo || info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return nil, fmt.Errorf("%w: %s has no decodable video stream", ports.ErrSourceUnavailable, path)
	}
	if startFrame < 0 {
		startFrame = 0
	}

	r := &reader{info: info, stderr: &bytes.Buffer{}}
	r.cmd = exec.CommandContext(ctx, d.ffmpegPath, Args(path, timecode.ToSeconds(startFrame, info.FPS))...)
	r.cmd.Stderr = r.stderr
	r.cmd.WaitDelay = waitDelay

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	r.stdout = stdout

	if err := r.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ports.ErrSourceUnavailable, err)
	}
	return r, nil
}

// reader reads fixed-size RGBA frames from ffmpeg's stdout.
type reader struct {
	info   ports.MediaInfo
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	done   bool
}

func (r *reader) Info() ports.MediaInfo {
	return r.info
}

func (r *reader) ReadFrame() (image.Image, error) {
	if r.done {
		return nil, io.EOF
	}

	img := image.NewRGBA(r.info.Profile().Bounds())
	_, err := io.ReadFull(r.stdout, img.Pix)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, io.EOF):
		if werr := r.wait(); werr != nil {
			return nil, werr
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		werr := r.wait()
		if werr != nil {
			return nil, werr
		}
		return nil, fmt.Errorf("truncated frame from ffmpeg")
	default:
		r.wait()
		return nil, fmt.Errorf("read frame: %w", err)
	}
}

func (r *reader) wait() error {
	r.done = true
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decoding failed: %w: %s", err, strings.TrimSpace(r.stderr.String()))
	}
	return nil
}

// Close stops ffmpeg if it is still producing frames.
func (r *reader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	r.stdout.Close()
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.cmd.Wait()
	return nil
}

// waitDelay bounds the wait for ffmpeg's pipes once the process is killed.
const waitDelay = 5 * time.Second

var _ ports.VideoDecoder = (*Decoder)(nil)
